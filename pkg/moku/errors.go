package moku

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedEnvelope is returned when a response body is not a valid envelope.
	ErrMalformedEnvelope = errors.New("malformed response envelope")
	// ErrNoClientKey is returned when a claim succeeds but carries no client key.
	ErrNoClientKey = errors.New("claim response carried no client key")
)

// APIError is an application-level failure reported through the envelope (success=false).
type APIError struct {
	Code     string
	Messages []string
}

func (e *APIError) Error() string {
	msg := strings.Join(e.Messages, "; ")
	switch {
	case e.Code == "" && msg == "":
		return "moku api error"
	case e.Code == "":
		return "moku api error: " + msg
	case msg == "":
		return "moku api error " + e.Code
	}
	return fmt.Sprintf("moku api error %s: %s", e.Code, msg)
}

// StatusError reports a non-2xx HTTP status. Code and Messages are filled
// when the body still decoded as an envelope.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Code       string
	Messages   []string
	Body       string
}

func (e *StatusError) Error() string {
	base := fmt.Sprintf("%s %s returned status %d", e.Method, e.URL, e.StatusCode)
	if e.Code != "" || len(e.Messages) > 0 {
		return fmt.Sprintf("%s: %s %s", base, e.Code, strings.Join(e.Messages, "; "))
	}
	if e.Body != "" {
		return base + " body: " + e.Body
	}
	return base
}

// TransportError wraps failures below HTTP: refused connections, DNS, timeouts.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
