package moku

import (
	"encoding/json"
	"fmt"
)

// Envelope is the standard response wrapper used by every Moku endpoint.
type Envelope struct {
	Success  *bool           `json:"success"`
	Code     string          `json:"code,omitempty"`
	Messages []string        `json:"messages,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// UnwrapEnvelope decodes raw and returns its data field untouched when success
// is true, or an *APIError carrying the code and messages otherwise.
func UnwrapEnvelope(raw []byte) (json.RawMessage, error) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if !*env.Success {
		return nil, &APIError{Code: env.Code, Messages: env.Messages}
	}
	return env.Data, nil
}

func decodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Success == nil {
		return Envelope{}, fmt.Errorf("%w: missing success field", ErrMalformedEnvelope)
	}
	return env, nil
}
