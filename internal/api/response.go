// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/skazis/showgraph/internal/logging"
)

// Response is the wire envelope every endpoint returns. Message holds
// either a plain string or a JSON object, mirroring a legacy format
// consumers already parse. StatusCode repeats the HTTP status so
// clients reading only the body see the same outcome.
type Response struct {
	StatusOk   bool        `json:"statusOk"`
	StatusCode int         `json:"statusCode"`
	Message    interface{} `json:"message"`
}

// respondJSON writes the envelope with the given HTTP status.
func respondJSON(w http.ResponseWriter, status int, resp *Response) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondOK writes a success envelope. message may be a string or an
// object.
func respondOK(w http.ResponseWriter, message interface{}) {
	respondJSON(w, http.StatusOK, &Response{
		StatusOk:   true,
		StatusCode: http.StatusOK,
		Message:    message,
	})
}

// respondFail writes a statusOk=false envelope with a real HTTP status.
func respondFail(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, &Response{
		StatusOk:   false,
		StatusCode: status,
		Message:    message,
	})
}
