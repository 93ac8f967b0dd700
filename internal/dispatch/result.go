package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "studylog/internal/platform/errors"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusInfo    Status = "info"
	StatusError   Status = "error"
)

type ErrorBody struct {
	Kind    apperrors.Kind `json:"kind"`
	Message string         `json:"message"`
}

// Result is what every action returns. On success the payload's fields are
// inlined next to "status"; a payload that is not a JSON object goes under
// "data".
type Result struct {
	Status  Status
	Message string
	Payload any
	Error   *ErrorBody
}

func success(payload any) Result {
	return Result{Status: StatusSuccess, Payload: payload}
}

func successMessage(message string, payload any) Result {
	return Result{Status: StatusSuccess, Message: message, Payload: payload}
}

func info(message string) Result {
	return Result{Status: StatusInfo, Message: message}
}

func failure(err error) Result {
	return Result{Status: StatusError, Error: &ErrorBody{Kind: apperrors.KindOf(err), Message: err.Error()}}
}

func (r Result) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if r.Payload != nil {
		raw, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
			if err := json.Unmarshal(trimmed, &fields); err != nil {
				return nil, fmt.Errorf("inline payload: %w", err)
			}
		} else {
			fields["data"] = raw
		}
	}
	if err := put(fields, "status", r.Status); err != nil {
		return nil, err
	}
	if r.Message != "" {
		if err := put(fields, "message", r.Message); err != nil {
			return nil, err
		}
	}
	if r.Error != nil {
		if err := put(fields, "error", r.Error); err != nil {
			return nil, err
		}
	}
	return json.Marshal(fields)
}

func put(fields map[string]json.RawMessage, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	fields[key] = raw
	return nil
}
