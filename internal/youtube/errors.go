package youtube

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

var (
	// ErrTokenExpired means the upstream rejected the bearer token. The
	// service never refreshes tokens, so the user has to log in again.
	ErrTokenExpired = errors.New("youtube: access token rejected")
	// ErrNoChannel means the account has no YouTube channel.
	ErrNoChannel = errors.New("youtube: no channel found")
	// ErrWatchHistoryUnavailable means the channel exposes no watch-history
	// playlist, usually because of privacy settings.
	ErrWatchHistoryUnavailable = errors.New("youtube: watch history not available")
	// ErrMalformedResponse means a 2xx body that is not JSON.
	ErrMalformedResponse = errors.New("youtube: malformed response")
	// ErrMissingToken means the client was used without ForToken.
	ErrMissingToken = errors.New("youtube: no access token bound to client")
)

// APIError is a non-2xx answer from the Data API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Reason     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube %s: %d %s: %s", e.Endpoint, e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube %s: %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrTokenExpired) match a 401.
func (e *APIError) Is(target error) bool {
	return target == ErrTokenExpired && e.StatusCode == http.StatusUnauthorized
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

func newAPIError(endpoint string, status int, body []byte) *APIError {
	e := &APIError{Endpoint: endpoint, StatusCode: status, Message: http.StatusText(status)}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Error.Message != "" {
			e.Message = env.Error.Message
		}
		if len(env.Error.Errors) > 0 {
			e.Reason = env.Error.Errors[0].Reason
		} else {
			e.Reason = env.Error.Status
		}
	}
	return e
}
