// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package validation

import (
	"strconv"

	"github.com/goccy/go-json"
)

// Payload is a decoded flat JSON object: every value reduced to its text
// form, the way the transport consumes it. Nested containers never make it
// into a Payload; DecodePayload rejects them up front.
type Payload map[string]string

// DecodePayload parses a JSON object and enforces the closed-record shape:
// exactly expectedFields top-level fields, all of them scalars. A count
// mismatch or a nested container fails before any field rule runs.
func DecodePayload(data []byte, expectedFields int) (Payload, error) {
	if len(data) == 0 {
		return nil, Errorf("received empty JSON payload")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, Errorf("malformed JSON payload: %v", err)
	}

	if len(raw) != expectedFields {
		return nil, Errorf("received JSON payload with wrong field count [%d], [%d] is expected",
			len(raw), expectedFields)
	}

	payload := make(Payload, len(raw))
	for name, value := range raw {
		text, err := scalarText(name, value)
		if err != nil {
			return nil, err
		}
		payload[name] = text
	}
	return payload, nil
}

// Field returns the named field, failing when it is missing.
func (p Payload) Field(name string) (string, error) {
	value, ok := p[name]
	if !ok {
		return "", Errorf("JSON field [%s] is missing", name)
	}
	return value, nil
}

// scalarText converts a raw JSON value to its text form, rejecting objects
// and arrays.
func scalarText(name string, raw json.RawMessage) (string, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", Errorf("JSON field [%s] has malformed value", name)
	}

	switch value := v.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	case bool:
		return strconv.FormatBool(value), nil
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), nil
	default:
		return "", Errorf("JSON field [%s] cannot be a container", name)
	}
}
