// Package jobo provides a client for the Jobo Enterprise job listings API.
//
// The client builds requests, decodes responses and maps failed responses
// onto typed errors. It performs no retries, caching or batching: every
// method issues at most one request at a time and returns the outcome to the
// caller.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client: owns the HTTP transport and the fixed request headers
//   - FeedClient: bulk job feed and expired job ids, cursor paginated
//   - SearchClient: simple and advanced search, page paginated
//   - LocationsClient: geocoding of free-form location strings
//   - AutoApplyClient: automated application form sessions
//   - Errors: APIError and the kind sentinels
//
// # Usage
//
//	client, err := jobo.NewClient(
//		os.Getenv("JOBO_API_KEY"),
//		jobo.WithTimeout(30*time.Second),
//		jobo.WithLogger(logger),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Stream the whole feed; pages are fetched lazily
//	for job, err := range client.Feed.EnumerateJobs(ctx, jobo.JobFeedRequest{BatchSize: 500}) {
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(job.Title)
//	}
//
// # Error Handling
//
// Every non-2xx response becomes an *APIError whose Kind is derived from the
// status code: 401 Authentication, 429 RateLimit, 400 Validation, 5xx Server
// and Generic otherwise. Match kinds with errors.Is:
//
//	if errors.Is(err, jobo.ErrRateLimit) {
//		var apiErr *jobo.APIError
//		if errors.As(err, &apiErr) {
//			if secs, ok := apiErr.RetryAfter(); ok {
//				time.Sleep(time.Duration(secs) * time.Second)
//			}
//		}
//	}
//
// Network failures and context cancellation are returned wrapped, not
// converted into APIError.
package jobo
