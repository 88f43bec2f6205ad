package forumsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 1 << 20

var (
	// ErrRateLimited matches any *APIError with status 429.
	ErrRateLimited = errors.New("forumsdk: rate limited")

	// ErrUnauthorized matches any *APIError with status 401 that the
	// gateway did not turn into a renewal: a request that was already
	// retried once with a renewed token, or a login/registration call.
	ErrUnauthorized = errors.New("forumsdk: unauthorized")

	// ErrSessionExpired is returned when the session could not be renewed.
	// The stored session has been cleared and the login redirect issued.
	ErrSessionExpired = errors.New("forumsdk: session expired")

	// ErrIncompleteTokens reports a refresh response missing either token.
	ErrIncompleteTokens = errors.New("forumsdk: refresh response missing tokens")

	// ErrBodyNotReplayable is returned when a request must be re-sent after
	// renewal but its body cannot be rewound (no GetBody).
	ErrBodyNotReplayable = errors.New("forumsdk: request body cannot be replayed")
)

// APIError carries a non-2xx backend response verbatim.
type APIError struct {
	StatusCode int
	// Message is the backend's error text when it sent one, otherwise the
	// HTTP status text.
	Message string
	// Body is the raw response payload.
	Body []byte
	// RetryAfter is the parsed Retry-After header, zero when absent.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("forum api: HTTP %d: %s", e.StatusCode, e.Message)
}

// Is lets callers use errors.Is with ErrRateLimited and ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	default:
		return false
	}
}

// SessionExpiredError is the concrete error behind ErrSessionExpired.
// Cause is what ended the session (the 401, or the failed refresh). It is
// deliberately not unwrapped so a 401 cause does not also match
// ErrUnauthorized.
type SessionExpiredError struct {
	Cause error
}

func (e *SessionExpiredError) Error() string {
	if e.Cause == nil {
		return ErrSessionExpired.Error()
	}
	return fmt.Sprintf("%s: %v", ErrSessionExpired, e.Cause)
}

func (e *SessionExpiredError) Is(target error) bool { return target == ErrSessionExpired }

// StatusCode returns the HTTP status behind err, or 0 when err did not
// come from a backend response.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// readAPIError consumes and closes resp.Body.
func readAPIError(resp *http.Response) *APIError {
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return parseErrorResponse(resp, body)
}

// parseErrorResponse builds an *APIError from a response and its body.
// The forum backend uses {"error": "..."} and sometimes {"message": "..."}.
func parseErrorResponse(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Body:       body,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			apiErr.Message = payload.Error
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.Msg != "":
			apiErr.Message = payload.Msg
		}
	}
	if apiErr.Message == "" {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "{") {
			apiErr.Message = text
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}

	return apiErr
}

// parseRetryAfter understands the delta-seconds and HTTP-date forms.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
