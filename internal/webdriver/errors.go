package webdriver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// W3C error codes the client inspects.
const (
	CodeSessionNotCreated    = "session not created"
	CodeInvalidArgument      = "invalid argument"
	CodeUnsupportedOperation = "unsupported operation"
	CodeTimeout              = "timeout"
	CodeJavascriptError      = "javascript error"
)

// Error is an error response from the remote end.
type Error struct {
	Status     int
	Code       string
	Message    string
	Stacktrace string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("webdriver: %s (http %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("webdriver: %s: %s", e.Code, e.Message)
}

// IsInvalidConfiguration reports whether err means the driver refused the
// requested browser or capabilities, as opposed to failing while running.
func IsInvalidConfiguration(err error) bool {
	var we *Error
	if !errors.As(err, &we) {
		return false
	}
	switch we.Code {
	case CodeSessionNotCreated, CodeInvalidArgument, CodeUnsupportedOperation:
		return true
	}
	return false
}

func decodeError(status int, data []byte) error {
	var envelope struct {
		Value struct {
			Error      string `json:"error"`
			Message    string `json:"message"`
			Stacktrace string `json:"stacktrace"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Value.Error == "" {
		return &Error{
			Status:  status,
			Code:    strings.ToLower(http.StatusText(status)),
			Message: strings.TrimSpace(string(data)),
		}
	}
	return &Error{
		Status:     status,
		Code:       envelope.Value.Error,
		Message:    envelope.Value.Message,
		Stacktrace: envelope.Value.Stacktrace,
	}
}
