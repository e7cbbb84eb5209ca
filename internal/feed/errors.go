package feed

import (
	"encoding/json"
	"fmt"
)

// APIError is returned when the upstream feed rejects a request with an error
// payload, most commonly a bad credential or a bad target id. Any other
// failure from the client is a transport-level error.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feed API error (%d): %s", e.Status, e.Message)
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := "unknown error"
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		message = payload.Error.Message
	}
	return &APIError{Status: status, Message: message}
}
