package socrata

import (
	"fmt"
	"net/http"
)

// QueryError is a non-2xx answer from one upstream endpoint.
type QueryError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s endpoint returned status %d: %s", e.Endpoint, e.Status, e.Message)
}

// AuthFailure reports whether the upstream rejected the request for lack of
// (or bad) credentials. This is the only failure class the client is allowed
// to retry via the legacy dialect.
func (e *QueryError) AuthFailure() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// ExhaustedError means both query dialects were attempted and both failed.
type ExhaustedError struct {
	Primary  *QueryError
	Fallback *QueryError
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("both query dialects failed: primary status %d (%s); fallback status %d (%s)",
		e.Primary.Status, e.Primary.Message, e.Fallback.Status, e.Fallback.Message)
}
