package jobo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jobo-ai/jobo-go/pager"
)

// Job represents a job listing returned by the feed and search endpoints
type Job struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	Company         Company          `json:"company"`
	Description     string           `json:"description"`
	ListingURL      string           `json:"listing_url"`
	ApplyURL        string           `json:"apply_url"`
	Locations       []JobLocation    `json:"locations"`
	Compensation    *JobCompensation `json:"compensation,omitempty"`
	EmploymentType  string           `json:"employment_type,omitempty"`
	WorkplaceType   string           `json:"workplace_type,omitempty"`
	ExperienceLevel string           `json:"experience_level,omitempty"`
	Source          string           `json:"source"`
	SourceID        string           `json:"source_id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DatePosted      *time.Time       `json:"date_posted,omitempty"`
	ValidThrough    *time.Time       `json:"valid_through,omitempty"`
	IsRemote        bool             `json:"is_remote"`
}

// UnmarshalJSON decodes a job, accepting timestamps without a zone offset
func (j *Job) UnmarshalJSON(data []byte) error {
	type plain Job
	aux := struct {
		*plain
		CreatedAt    timestamp  `json:"created_at"`
		UpdatedAt    timestamp  `json:"updated_at"`
		DatePosted   *timestamp `json:"date_posted"`
		ValidThrough *timestamp `json:"valid_through"`
	}{plain: (*plain)(j)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	j.CreatedAt = aux.CreatedAt.Time
	j.UpdatedAt = aux.UpdatedAt.Time
	j.DatePosted = aux.DatePosted.ptr()
	j.ValidThrough = aux.ValidThrough.ptr()
	return nil
}

// PostedAt returns the best known publication time of the job
func (j *Job) PostedAt() time.Time {
	if j.DatePosted != nil {
		return *j.DatePosted
	}
	return j.CreatedAt
}

// Company is the employer of a job listing
type Company struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// JobLocation is one geographic location of a job
type JobLocation struct {
	Location  string   `json:"location,omitempty"`
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// JobCompensation holds the advertised pay range of a job
type JobCompensation struct {
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Period      string   `json:"period,omitempty"`
	RawText     string   `json:"raw_text,omitempty"`
	IsEstimated bool     `json:"is_estimated"`
}

// LocationFilter narrows the feed to a structured location
type LocationFilter struct {
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
}

// JobFeedRequest is the body of POST /api/feed/jobs
type JobFeedRequest struct {
	Locations   []LocationFilter `json:"locations,omitempty"`
	Sources     []string         `json:"sources,omitempty"`
	IsRemote    *bool            `json:"is_remote,omitempty"`
	PostedAfter *time.Time       `json:"posted_after,omitempty"`
	// Cursor is the opaque token from a previous response; empty for the
	// first batch.
	Cursor string `json:"cursor,omitempty"`
	// BatchSize defaults to DefaultBatchSize when zero.
	BatchSize int `json:"batch_size"`
}

// JobFeedResponse is one batch of the job feed
type JobFeedResponse struct {
	Jobs       []Job  `json:"jobs"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// CursorPage adapts the response for cursor pagination
func (r *JobFeedResponse) CursorPage() pager.CursorPage[Job] {
	return pager.CursorPage[Job]{Items: r.Jobs, NextCursor: r.NextCursor, HasMore: r.HasMore}
}

// ExpiredJobIDsRequest selects expired job ids for GET /api/feed/jobs/expired
type ExpiredJobIDsRequest struct {
	// ExpiredSince may be at most seven days in the past.
	ExpiredSince time.Time
	Cursor       string
	// BatchSize is between 1 and 10000; zero means DefaultBatchSize.
	BatchSize int
}

// ExpiredJobIDsResponse is one batch of expired job ids
type ExpiredJobIDsResponse struct {
	JobIDs     []uuid.UUID `json:"job_ids"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

// CursorPage adapts the response for cursor pagination
func (r *ExpiredJobIDsResponse) CursorPage() pager.CursorPage[uuid.UUID] {
	return pager.CursorPage[uuid.UUID]{Items: r.JobIDs, NextCursor: r.NextCursor, HasMore: r.HasMore}
}

// SearchParams are the query parameters of GET /api/jobs
type SearchParams struct {
	Query    string
	Location string
	// Sources is a comma separated list of source names.
	Sources     string
	Remote      *bool
	PostedAfter *time.Time
	Page        int
	PageSize    int
}

// JobSearchRequest is the body of POST /api/jobs/search
type JobSearchRequest struct {
	Queries     []string   `json:"queries,omitempty"`
	Locations   []string   `json:"locations,omitempty"`
	Sources     []string   `json:"sources,omitempty"`
	IsRemote    *bool      `json:"is_remote,omitempty"`
	PostedAfter *time.Time `json:"posted_after,omitempty"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
}

// JobSearchResponse is one page of search results
type JobSearchResponse struct {
	Jobs       []Job `json:"jobs"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// PagedResult adapts the response for page-number pagination
func (r *JobSearchResponse) PagedResult() pager.PagedResult[Job] {
	return pager.PagedResult[Job]{
		Items:      r.Jobs,
		TotalItems: r.Total,
		Page:       r.Page,
		PageSize:   r.PageSize,
		TotalPages: r.TotalPages,
	}
}

// GeocodeMethod describes how a location string was resolved
type GeocodeMethod string

const (
	GeocodeMethodCache         GeocodeMethod = "cache"
	GeocodeMethodPatternParse  GeocodeMethod = "pattern_parse"
	GeocodeMethodGeocoder      GeocodeMethod = "geocoder"
	GeocodeMethodLLM           GeocodeMethod = "llm"
	GeocodeMethodRemoteKeyword GeocodeMethod = "remote_keyword"
)

// GeocodeResult is the response of GET /api/locations/geocode
type GeocodeResult struct {
	Input     string             `json:"input"`
	Succeeded bool               `json:"succeeded"`
	Locations []GeocodedLocation `json:"locations"`
	Method    GeocodeMethod      `json:"method,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// GeocodedLocation is one resolved location
type GeocodedLocation struct {
	DisplayName string   `json:"display_name"`
	City        string   `json:"city,omitempty"`
	Region      string   `json:"region,omitempty"`
	Country     string   `json:"country,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

type startSessionRequest struct {
	ApplyURL string `json:"apply_url"`
}

type setAnswersRequest struct {
	SessionID uuid.UUID     `json:"session_id"`
	Answers   []FieldAnswer `json:"answers"`
}

// FieldAnswer answers one form field of an auto-apply session
type FieldAnswer struct {
	FieldID string            `json:"field_id"`
	Value   *string           `json:"value,omitempty"`
	Values  []string          `json:"values,omitempty"`
	Files   []FieldAnswerFile `json:"files,omitempty"`
}

// FieldAnswerFile is a file upload answer
type FieldAnswerFile struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	// Data is the base64 encoded file content.
	Data string `json:"data"`
}

// AutoApplySession is the state of an auto-apply session
type AutoApplySession struct {
	SessionID           uuid.UUID         `json:"session_id"`
	ProviderID          string            `json:"provider_id"`
	ProviderDisplayName string            `json:"provider_display_name"`
	Success             bool              `json:"success"`
	Status              string            `json:"status"`
	Error               string            `json:"error,omitempty"`
	CurrentURL          string            `json:"current_url,omitempty"`
	IsTerminal          bool              `json:"is_terminal"`
	ValidationErrors    []ValidationError `json:"validation_errors"`
	Fields              []FormField       `json:"fields"`
}

// ValidationError reports a rejected field answer
type ValidationError struct {
	FieldID string `json:"field_id"`
	Message string `json:"message"`
}

// FormField describes a form field the session needs answered
type FormField struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Label       string            `json:"label,omitempty"`
	Required    bool              `json:"required"`
	Placeholder string            `json:"placeholder,omitempty"`
	Options     []FieldOption     `json:"options,omitempty"`
	Validations *FieldValidations `json:"validations,omitempty"`
}

// FieldOption is one choice of a select or radio field
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// FieldValidations are the client-side constraints of a form field
type FieldValidations struct {
	MinLength *int   `json:"min_length,omitempty"`
	MaxLength *int   `json:"max_length,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}
