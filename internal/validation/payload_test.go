// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package validation

import (
	"strings"
	"testing"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected int
		valid    bool
		errPart  string
	}{
		{
			name:     "person payload",
			data:     `{"mail":"a@b.com","age":"30","gender":"male"}`,
			expected: 3,
			valid:    true,
		},
		{
			name:     "numeric scalar tolerated",
			data:     `{"mail":"a@b.com","age":30,"gender":"male"}`,
			expected: 3,
			valid:    true,
		},
		{
			name:     "too few fields",
			data:     `{"mail":"a@b.com"}`,
			expected: 3,
			errPart:  "wrong field count [1], [3]",
		},
		{
			name:     "too many fields",
			data:     `{"mail":"a@b.com","age":"30","gender":"male","extra":"x"}`,
			expected: 3,
			errPart:  "wrong field count [4], [3]",
		},
		{
			name:     "nested object",
			data:     `{"mail":{"value":"a@b.com"},"age":"30","gender":"male"}`,
			expected: 3,
			errPart:  "cannot be a container",
		},
		{
			name:     "nested array",
			data:     `{"mail":["a@b.com"],"age":"30","gender":"male"}`,
			expected: 3,
			errPart:  "cannot be a container",
		},
		{
			name:     "empty body",
			data:     ``,
			expected: 3,
			errPart:  "empty JSON payload",
		},
		{
			name:     "not an object",
			data:     `[1,2,3]`,
			expected: 3,
			errPart:  "malformed JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := DecodePayload([]byte(tt.data), tt.expected)
			if tt.valid {
				if err != nil {
					t.Fatalf("DecodePayload unexpected error: %v", err)
				}
				if len(payload) != tt.expected {
					t.Errorf("payload has %d fields, want %d", len(payload), tt.expected)
				}
				return
			}
			if err == nil {
				t.Fatal("DecodePayload accepted, want rejection")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errPart)
			}
		})
	}
}

func TestPayload_Field(t *testing.T) {
	payload, err := DecodePayload([]byte(`{"mail":"a@b.com","title":"Foo"}`), 2)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}

	mail, err := payload.Field("mail")
	if err != nil || mail != "a@b.com" {
		t.Errorf("Field(mail) = %q, %v", mail, err)
	}

	if _, err := payload.Field("missing"); err == nil {
		t.Error("Field(missing) accepted, want error")
	}
}

func TestPayload_ScalarConversion(t *testing.T) {
	payload, err := DecodePayload([]byte(`{"n":30,"b":true,"s":"x","z":null}`), 4)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}

	want := map[string]string{"n": "30", "b": "true", "s": "x", "z": ""}
	for k, v := range want {
		if payload[k] != v {
			t.Errorf("payload[%q] = %q, want %q", k, payload[k], v)
		}
	}
}
