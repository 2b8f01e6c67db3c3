// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package domain

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/skazis/showgraph/internal/graph/badgerstore"
	"github.com/skazis/showgraph/internal/logging"
	"github.com/skazis/showgraph/internal/validation"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := badgerstore.Open(badgerstore.Options{InMemory: true, Logger: logging.NewTestLogger(io.Discard)})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	svc := NewService(store)
	// Fixed clock keeps date-ordering checks stable.
	svc.now = func() time.Time {
		return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return svc
}

func mustCreatePerson(t *testing.T, svc *Service, mail, age, gender string) {
	t.Helper()
	if err := svc.CreatePerson(context.Background(), mail, age, gender); err != nil {
		t.Fatalf("create person %s: %v", mail, err)
	}
}

func mustCreateShow(t *testing.T, svc *Service, title string) {
	t.Helper()
	if err := svc.CreateShow(context.Background(), title, "01-01-2020", ""); err != nil {
		t.Fatalf("create show %s: %v", title, err)
	}
}

func mustLike(t *testing.T, svc *Service, mail, title string) {
	t.Helper()
	if _, err := svc.LikeShow(context.Background(), mail, title); err != nil {
		t.Fatalf("like %s -> %s: %v", mail, title, err)
	}
}

func TestCreatePerson(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.CreatePerson(ctx, "a@b.com", "30", "male"); err != nil {
		t.Fatalf("create: %v", err)
	}

	exists, err := svc.PersonExists(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("person not found after create")
	}

	exists, err = svc.PersonExists(ctx, "other@b.com")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Error("unknown person reported as existing")
	}
}

func TestCreatePersonDuplicate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustCreatePerson(t, svc, "a@b.com", "30", "male")

	err := svc.CreatePerson(ctx, "a@b.com", "44", "female")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
}

func TestCreatePersonRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mail   string
		age    string
		gender string
	}{
		{"bad mail", "not-a-mail", "30", "male"},
		{"age zero", "a@b.com", "0", "male"},
		{"age over max", "a@b.com", "101", "male"},
		{"age not a number", "a@b.com", "thirty", "male"},
		{"unknown gender", "a@b.com", "30", "Male"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CreatePerson(ctx, tt.mail, tt.age, tt.gender)
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
}

func TestCreateShow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.CreateShow(ctx, "Foo", "01-01-2020", "01-01-2021"); err != nil {
		t.Fatalf("create: %v", err)
	}
	exists, err := svc.ShowExists(ctx, "Foo")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("show not found after create")
	}
}

func TestCreateShowDuplicateTitle(t *testing.T) {
	svc := newTestService(t)
	mustCreateShow(t, svc, "Foo")

	err := svc.CreateShow(context.Background(), "Foo", "02-02-2021", "")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
}

func TestCreateShowRejectsInvalidDates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		release string
		end     string
	}{
		{"iso release date", "2020-01-01", ""},
		{"unpadded release date", "1-2-2020", ""},
		{"impossible release date", "31-02-2020", ""},
		{"future release date", "01-01-2030", ""},
		{"end before release", "01-01-2020", "01-01-2019"},
		{"future end date", "01-01-2020", "01-01-2030"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CreateShow(ctx, "Show "+tt.name, tt.release, tt.end)
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
}

func TestCreateShowRejectsInvalidTitles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Titles carrying the store's key separator must never reach the
	// store: an accepted "a\x1fb" show would collide with the index
	// and edge key prefixes of a show titled "a".
	tests := []struct {
		name  string
		title string
	}{
		{"unit separator", "a\x1fb"},
		{"embedded newline", "Foo\nBar"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CreateShow(ctx, tt.title, "01-01-2020", "")
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
}

func TestLikeShowIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustCreatePerson(t, svc, "a@b.com", "30", "male")
	mustCreateShow(t, svc, "Foo")

	created, err := svc.LikeShow(ctx, "a@b.com", "Foo")
	if err != nil {
		t.Fatalf("first like: %v", err)
	}
	if !created {
		t.Error("first like reported as repeat")
	}

	created, err = svc.LikeShow(ctx, "a@b.com", "Foo")
	if err != nil {
		t.Fatalf("second like: %v", err)
	}
	if created {
		t.Error("repeat like reported as new")
	}

	titles, err := svc.LikedShows(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("liked shows: %v", err)
	}
	if len(titles) != 1 || titles[0] != "Foo" {
		t.Errorf("liked shows = %v, want [Foo]", titles)
	}
}

func TestLikeShowUnknownEndpoints(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustCreatePerson(t, svc, "a@b.com", "30", "male")
	mustCreateShow(t, svc, "Foo")

	if _, err := svc.LikeShow(ctx, "ghost@b.com", "Foo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown person: want ErrNotFound, got %v", err)
	}
	if _, err := svc.LikeShow(ctx, "a@b.com", "Ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown show: want ErrNotFound, got %v", err)
	}
}

func TestLikedShowsUnknownPerson(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.LikedShows(context.Background(), "ghost@b.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestShowsAiredOn(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if err := svc.CreateShow(ctx, "Foo", "01-01-2020", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.CreateShow(ctx, "Bar", "01-01-2020", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.CreateShow(ctx, "Baz", "02-01-2020", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	titles, err := svc.ShowsAiredOn(ctx, "01-01-2020")
	if err != nil {
		t.Fatalf("aired on: %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("got %v, want two titles", titles)
	}

	titles, err = svc.ShowsAiredOn(ctx, "03-01-2020")
	if err != nil {
		t.Fatalf("aired on: %v", err)
	}
	if len(titles) != 0 {
		t.Errorf("got %v, want none", titles)
	}

	if _, err := svc.ShowsAiredOn(ctx, "2020-01-01"); err == nil {
		t.Error("ISO date accepted")
	}
}

func TestCoLikeRecommendation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	// X and Y both like Foo; Y also likes Bar. Bar has exactly one
	// co-liker, so X gets {Bar 1}.
	mustCreatePerson(t, svc, "x@b.com", "30", "male")
	mustCreatePerson(t, svc, "y@b.com", "40", "female")
	mustCreateShow(t, svc, "Foo")
	mustCreateShow(t, svc, "Bar")
	mustLike(t, svc, "x@b.com", "Foo")
	mustLike(t, svc, "y@b.com", "Foo")
	mustLike(t, svc, "y@b.com", "Bar")

	recs, err := svc.CoLike(ctx, "x@b.com", 10)
	if err != nil {
		t.Fatalf("co-like: %v", err)
	}
	if len(recs) != 1 || recs[0] != (Recommendation{Title: "Bar", Likes: 1}) {
		t.Fatalf("got %+v, want [{Bar 1}]", recs)
	}
}

func TestAgeBandRecommendation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustCreatePerson(t, svc, "x@b.com", "30", "male")
	mustCreatePerson(t, svc, "y@b.com", "32", "female")
	mustCreateShow(t, svc, "Foo")
	mustLike(t, svc, "y@b.com", "Foo")

	recs, err := svc.AgeBand(ctx, "x@b.com", 10, 2)
	if err != nil {
		t.Fatalf("age band: %v", err)
	}
	if len(recs) != 1 || recs[0].Title != "Foo" {
		t.Fatalf("got %+v, want [{Foo 1}]", recs)
	}

	recs, err = svc.AgeBand(ctx, "x@b.com", 10, 1)
	if err != nil {
		t.Fatalf("age band: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("got %+v, want none outside band", recs)
	}
}

func TestRecommendationUnknownPerson(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.CoLike(context.Background(), "ghost@b.com", 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
