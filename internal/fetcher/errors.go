package fetcher

import "fmt"

// FetchError describes a failed page fetch: a non-2xx response, a connection
// failure, or a timeout. The monitor records its message in the site's status
// entry, so the text is written for operators reading status.json.
type FetchError struct {
	// URL is the fetched URL.
	URL string

	// StatusCode is the HTTP status code for non-2xx responses, zero when
	// the failure happened before a response arrived.
	StatusCode int

	// Status is the full status line ("404 Not Found") for non-2xx
	// responses.
	Status string

	// Err is the underlying cause for transport-level failures.
	Err error
}

// Error returns a human-readable description of the failure.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %s", e.URL, e.Status)
}

// Unwrap returns the underlying transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}
