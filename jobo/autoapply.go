package jobo

import (
	"context"
	"net/url"

	"github.com/google/uuid"
)

// AutoApplyClient drives auto-apply sessions (/api/auto-apply/*)
type AutoApplyClient struct {
	client *Client
}

// StartSession opens an auto-apply session for the apply URL of a job
func (a *AutoApplyClient) StartSession(ctx context.Context, applyURL string) (*AutoApplySession, error) {
	var session AutoApplySession
	if err := a.client.post(ctx, "/api/auto-apply/start", startSessionRequest{ApplyURL: applyURL}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SetAnswers submits field answers to an open session
func (a *AutoApplyClient) SetAnswers(ctx context.Context, sessionID uuid.UUID, answers []FieldAnswer) (*AutoApplySession, error) {
	if answers == nil {
		answers = []FieldAnswer{}
	}

	req := setAnswersRequest{SessionID: sessionID, Answers: answers}
	var session AutoApplySession
	if err := a.client.post(ctx, "/api/auto-apply/set-answers", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// EndSession closes a session. It reports false when the session does not
// exist.
func (a *AutoApplyClient) EndSession(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	return a.client.delete(ctx, "/api/auto-apply/sessions/"+url.PathEscape(sessionID.String()))
}

// TextAnswer builds a single-value field answer
func TextAnswer(fieldID, value string) FieldAnswer {
	return FieldAnswer{FieldID: fieldID, Value: &value}
}
