// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skazis/showgraph/internal/domain"
	"github.com/skazis/showgraph/internal/logging"
	"github.com/skazis/showgraph/internal/recommend"
	"github.com/skazis/showgraph/internal/validation"
)

// maxBodyBytes caps request bodies. Every payload here is a handful of
// short scalar fields.
const maxBodyBytes = 1 << 20

// Handler serves the people, shows, likes and recommendation
// endpoints.
type Handler struct {
	svc *domain.Service

	defaultLimit int
	maxLimit     int
}

// NewHandler wires a domain service into HTTP handlers.
func NewHandler(svc *domain.Service, defaultLimit, maxLimit int) *Handler {
	if defaultLimit <= 0 {
		defaultLimit = recommend.DefaultLimit
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &Handler{svc: svc, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// readPayload reads and decodes a closed-record JSON body.
func readPayload(w http.ResponseWriter, r *http.Request, fields int) (validation.Payload, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, validation.Errorf("failed to read request body: %v", err)
	}
	return validation.DecodePayload(body, fields)
}

// respondFromError maps domain and validation failures to HTTP
// statuses. Anything unrecognized is a 500 with a generic body.
func respondFromError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		respondFail(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondFail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		respondFail(w, http.StatusConflict, err.Error())
	default:
		logging.Error().Err(err).Msg("request failed")
		respondFail(w, http.StatusInternalServerError, "internal server error")
	}
}

// CreatePerson handles POST /api/v1/people. The payload carries
// exactly mail, age and gender.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(w, r, 3)
	if err != nil {
		respondFromError(w, err)
		return
	}

	mail, err := payload.Field("mail")
	if err != nil {
		respondFromError(w, err)
		return
	}
	age, err := payload.Field("age")
	if err != nil {
		respondFromError(w, err)
		return
	}
	gender, err := payload.Field("gender")
	if err != nil {
		respondFromError(w, err)
		return
	}

	if err := h.svc.CreatePerson(r.Context(), mail, age, gender); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			respondFail(w, http.StatusConflict,
				fmt.Sprintf("Person with mail [%s] (mail must be unique) is already in the database", mail))
			return
		}
		respondFromError(w, err)
		return
	}
	respondOK(w, "Person created")
}

// CreateShow handles POST /api/v1/shows. The payload carries exactly
// title, releaseDate and endDate; an empty endDate means the show is
// still airing.
func (h *Handler) CreateShow(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(w, r, 3)
	if err != nil {
		respondFromError(w, err)
		return
	}

	title, err := payload.Field("title")
	if err != nil {
		respondFromError(w, err)
		return
	}
	releaseDate, err := payload.Field("releaseDate")
	if err != nil {
		respondFromError(w, err)
		return
	}
	endDate, err := payload.Field("endDate")
	if err != nil {
		respondFromError(w, err)
		return
	}

	if err := h.svc.CreateShow(r.Context(), title, releaseDate, endDate); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			respondFail(w, http.StatusConflict,
				fmt.Sprintf("Show with title [%s] (title must be unique) is already in the database", title))
			return
		}
		respondFromError(w, err)
		return
	}
	respondOK(w, "TV show added")
}

// LikeShow handles POST /api/v1/likes. A repeated like is not an
// error: the envelope flags it with statusOk=false on a 200.
func (h *Handler) LikeShow(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(w, r, 2)
	if err != nil {
		respondFromError(w, err)
		return
	}

	mail, err := payload.Field("mail")
	if err != nil {
		respondFromError(w, err)
		return
	}
	title, err := payload.Field("title")
	if err != nil {
		respondFromError(w, err)
		return
	}

	created, err := h.svc.LikeShow(r.Context(), mail, title)
	if err != nil {
		respondFromError(w, err)
		return
	}
	if !created {
		respondJSON(w, http.StatusOK, &Response{
			StatusOk:   false,
			StatusCode: http.StatusOK,
			Message:    "Already liked",
		})
		return
	}
	respondOK(w, "Person now likes this TV show")
}

// LikedShows handles GET /api/v1/people/{mail}/likes.
func (h *Handler) LikedShows(w http.ResponseWriter, r *http.Request) {
	mail, err := validation.Mail(chi.URLParam(r, "mail"))
	if err != nil {
		respondFromError(w, err)
		return
	}

	titles, err := h.svc.LikedShows(r.Context(), mail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondFail(w, http.StatusNotFound,
				fmt.Sprintf("No such person in the database with mail: %s", mail))
			return
		}
		respondFromError(w, err)
		return
	}

	if titles == nil {
		titles = []string{}
	}
	respondOK(w, map[string]interface{}{"tvshows": titles})
}

// ShowsAiredOn handles GET /api/v1/shows/aired/{date}.
func (h *Handler) ShowsAiredOn(w http.ResponseWriter, r *http.Request) {
	titles, err := h.svc.ShowsAiredOn(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		respondFromError(w, err)
		return
	}

	if titles == nil {
		titles = []string{}
	}
	respondOK(w, map[string]interface{}{"tvshows": titles})
}

// Recommendations handles GET /api/v1/people/{mail}/recommendations.
// The optional limit query parameter caps the result rows.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	mail, err := validation.Mail(chi.URLParam(r, "mail"))
	if err != nil {
		respondFromError(w, err)
		return
	}

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondFail(w, http.StatusBadRequest, fmt.Sprintf("illegal limit value: %s", raw))
			return
		}
		if limit > h.maxLimit {
			limit = h.maxLimit
		}
	}

	exists, err := h.svc.PersonExists(r.Context(), mail)
	if err != nil {
		respondFromError(w, err)
		return
	}
	if !exists {
		respondFail(w, http.StatusNotFound,
			fmt.Sprintf("No such person in the database with mail: %s", mail))
		return
	}

	result, err := recommend.Recommend(r.Context(), h.svc, mail, limit)
	if err != nil {
		respondFromError(w, err)
		return
	}

	rows := make([]map[string]interface{}, 0, len(result.Shows))
	for _, rec := range result.Shows {
		rows = append(rows, map[string]interface{}{
			"show":  rec.Title,
			"likes": rec.Likes,
		})
	}
	respondOK(w, map[string]interface{}{
		"tvshows":  rows,
		"strategy": string(result.Strategy),
		"ageDelta": result.AgeDelta,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondOK(w, "healthy")
}
