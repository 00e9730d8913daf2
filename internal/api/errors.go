package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RemoteError is any failure originating outside this process: a non-2xx
// backend response (StatusCode > 0) or a network fault (StatusCode == 0).
type RemoteError struct {
	StatusCode     int
	BackendMessage string
	cause          error
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("backend unreachable: %s", e.BackendMessage)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.BackendMessage)
}

func (e *RemoteError) Unwrap() error { return e.cause }

func (e *RemoteError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// AsRemote unwraps err into a *RemoteError when it carries one.
func AsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// backendErrorBody covers the message shapes the backend is known to emit.
type backendErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func newRemoteError(resp *http.Response) *RemoteError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	msg := ""
	var body backendErrorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Error != "":
			msg = body.Error
		case body.Message != "":
			msg = body.Message
		case body.Detail != "":
			msg = body.Detail
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &RemoteError{StatusCode: resp.StatusCode, BackendMessage: msg}
}
