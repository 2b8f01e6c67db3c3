// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

// Package domain holds the people-and-shows model: creating uniquely
// keyed person and show records, recording likes, and reading the
// aggregations the recommendation engine consumes. All storage access
// goes through the graph.Store contract, so the service works the same
// against Badger and Neo4j.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skazis/showgraph/internal/graph"
	"github.com/skazis/showgraph/internal/validation"
)

var (
	// ErrNotFound reports a person or show that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists reports a natural-key collision on create.
	ErrAlreadyExists = errors.New("already exists")
)

// Recommendation is one ranked show suggestion.
type Recommendation struct {
	Title string
	Likes int64
}

// Service implements the domain operations on a graph store.
type Service struct {
	store graph.Store

	// now is replaceable in tests that validate date ordering.
	now func() time.Time
}

// NewService wraps a graph store.
func NewService(store graph.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreatePerson validates and stores a person keyed by mail address.
// Age arrives and is stored as a decimal string; gender is normalized
// to its canonical spelling.
func (s *Service) CreatePerson(ctx context.Context, mail, age, gender string) error {
	mail, err := validation.Mail(mail)
	if err != nil {
		return err
	}
	if _, err := validation.Age(age); err != nil {
		return err
	}
	gender, err = validation.Gender(gender)
	if err != nil {
		return err
	}

	err = s.store.Update(ctx, func(tx graph.Txn) error {
		_, err := tx.CreateNode(graph.LabelPerson, mail, map[string]string{
			graph.PropMail:   mail,
			graph.PropAge:    age,
			graph.PropGender: gender,
		})
		return err
	})
	if errors.Is(err, graph.ErrDuplicateKey) {
		return fmt.Errorf("person %q: %w", mail, ErrAlreadyExists)
	}
	return err
}

// PersonExists reports whether a person with the given mail is stored.
func (s *Service) PersonExists(ctx context.Context, mail string) (bool, error) {
	return s.exists(ctx, graph.LabelPerson, graph.PropMail, mail)
}

// CreateShow validates and stores a show keyed by title. endDate may
// be empty for shows still airing.
func (s *Service) CreateShow(ctx context.Context, title, releaseDate, endDate string) error {
	title, err := validation.Title(title)
	if err != nil {
		return err
	}
	release, err := validation.Date(releaseDate)
	if err != nil {
		return err
	}
	now := s.now()
	if err := validation.ReleaseDate(release, now); err != nil {
		return err
	}

	props := map[string]string{
		graph.PropTitle:       title,
		graph.PropReleaseDate: releaseDate,
	}
	if endDate != "" {
		end, err := validation.Date(endDate)
		if err != nil {
			return err
		}
		if err := validation.EndDate(end, release, now); err != nil {
			return err
		}
		props[graph.PropEndDate] = endDate
	}

	err = s.store.Update(ctx, func(tx graph.Txn) error {
		_, err := tx.CreateNode(graph.LabelShow, title, props)
		return err
	})
	if errors.Is(err, graph.ErrDuplicateKey) {
		return fmt.Errorf("show %q: %w", title, ErrAlreadyExists)
	}
	return err
}

// ShowExists reports whether a show with the given title is stored.
func (s *Service) ShowExists(ctx context.Context, title string) (bool, error) {
	return s.exists(ctx, graph.LabelShow, graph.PropTitle, title)
}

func (s *Service) exists(ctx context.Context, label graph.Label, prop, value string) (bool, error) {
	found := false
	err := s.store.View(ctx, func(tx graph.Txn) error {
		_, err := tx.FindNode(label, prop, value)
		if errors.Is(err, graph.ErrNotFound) {
			return nil
		}
		if err == nil {
			found = true
		}
		return err
	})
	return found, err
}

// LikeShow records that a person likes a show. The first call creates
// the edge and returns true; repeats are no-ops returning false, so
// each like counts once in aggregations.
func (s *Service) LikeShow(ctx context.Context, mail, title string) (bool, error) {
	created := false
	err := s.store.Update(ctx, func(tx graph.Txn) error {
		person, err := tx.FindNode(graph.LabelPerson, graph.PropMail, mail)
		if err != nil {
			return err
		}
		show, err := tx.FindNode(graph.LabelShow, graph.PropTitle, title)
		if err != nil {
			return err
		}

		liked := false
		err = tx.Outgoing(graph.EdgeLikes, person.Ref, func(other *graph.Node) error {
			if other.Ref == show.Ref {
				liked = true
			}
			return nil
		})
		if err != nil {
			return err
		}
		if liked {
			return nil
		}
		if err := tx.CreateEdge(graph.EdgeLikes, person.Ref, show.Ref); err != nil {
			return err
		}
		created = true
		return nil
	})
	if errors.Is(err, graph.ErrNotFound) {
		return false, fmt.Errorf("like %s -> %s: %w", mail, title, ErrNotFound)
	}
	return created, err
}

// LikedShows lists the titles a person likes, in title order.
func (s *Service) LikedShows(ctx context.Context, mail string) ([]string, error) {
	var titles []string
	err := s.store.View(ctx, func(tx graph.Txn) error {
		person, err := tx.FindNode(graph.LabelPerson, graph.PropMail, mail)
		if err != nil {
			return err
		}
		return tx.Outgoing(graph.EdgeLikes, person.Ref, func(show *graph.Node) error {
			titles = append(titles, show.Ref.Key)
			return nil
		})
	})
	if errors.Is(err, graph.ErrNotFound) {
		return nil, fmt.Errorf("person %q: %w", mail, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return titles, nil
}

// ShowsAiredOn lists titles of shows first aired on the given date.
func (s *Service) ShowsAiredOn(ctx context.Context, date string) ([]string, error) {
	if _, err := validation.Date(date); err != nil {
		return nil, err
	}

	var titles []string
	err := s.store.View(ctx, func(tx graph.Txn) error {
		shows, err := tx.FindNodes(graph.LabelShow, graph.PropReleaseDate, date)
		if err != nil {
			return err
		}
		for _, show := range shows {
			titles = append(titles, show.Ref.Key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return titles, nil
}

// CoLike ranks shows liked by people who share a like with the target,
// excluding shows the target already likes.
func (s *Service) CoLike(ctx context.Context, mail string, limit int) ([]Recommendation, error) {
	return s.aggregate(ctx, mail, graph.CoLikeQuery{Mail: mail, Limit: limit})
}

// AgeBand ranks shows liked by people whose age is within delta years
// of the target, excluding shows the target already likes.
func (s *Service) AgeBand(ctx context.Context, mail string, limit, delta int) ([]Recommendation, error) {
	return s.aggregate(ctx, mail, graph.AgeBandQuery{Mail: mail, Limit: limit, Delta: delta})
}

func (s *Service) aggregate(ctx context.Context, mail string, q graph.Query) ([]Recommendation, error) {
	var recs []Recommendation
	err := s.store.Aggregate(ctx, q, func(row graph.Row) error {
		recs = append(recs, Recommendation{Title: row.Title, Likes: row.Likes})
		return nil
	})
	if errors.Is(err, graph.ErrNotFound) {
		return nil, fmt.Errorf("person %q: %w", mail, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return recs, nil
}
