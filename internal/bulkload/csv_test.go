// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package bulkload

import (
	"strings"
	"testing"
)

func TestReadShows(t *testing.T) {
	input := "title;aired;ended\n" +
		"Foo;01-01-2020;01-01-2021\n" +
		"Bar;05-05-2019;N/A\n"

	shows, err := ReadShows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read shows: %v", err)
	}
	if len(shows) != 2 {
		t.Fatalf("got %d shows, want 2", len(shows))
	}
	if shows[0] != (ShowRecord{Title: "Foo", ReleaseDate: "01-01-2020", EndDate: "01-01-2021"}) {
		t.Errorf("shows[0] = %+v", shows[0])
	}
	// N/A maps to an empty end date.
	if shows[1] != (ShowRecord{Title: "Bar", ReleaseDate: "05-05-2019", EndDate: ""}) {
		t.Errorf("shows[1] = %+v", shows[1])
	}
}

func TestReadPeople(t *testing.T) {
	input := "email;age;gender\n" +
		"a@b.com;30;male\n" +
		"c@d.com;25;f\n"

	people, err := ReadPeople(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read people: %v", err)
	}
	if len(people) != 2 {
		t.Fatalf("got %d people, want 2", len(people))
	}
	if people[0] != (PersonRecord{Mail: "a@b.com", Age: "30", Gender: "male"}) {
		t.Errorf("people[0] = %+v", people[0])
	}
	// Gender stays as read; the server normalizes short forms.
	if people[1].Gender != "f" {
		t.Errorf("people[1].Gender = %q, want f", people[1].Gender)
	}
}

func TestReadLikes(t *testing.T) {
	input := "email;title\na@b.com;Foo\n"

	likes, err := ReadLikes(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read likes: %v", err)
	}
	if len(likes) != 1 || likes[0] != (LikeRecord{Mail: "a@b.com", Title: "Foo"}) {
		t.Errorf("likes = %+v", likes)
	}
}

func TestReadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		read  func(input string) error
	}{
		{"empty shows file", "", func(in string) error {
			_, err := ReadShows(strings.NewReader(in))
			return err
		}},
		{"wrong column count", "title;aired;ended\nFoo;01-01-2020\n", func(in string) error {
			_, err := ReadShows(strings.NewReader(in))
			return err
		}},
		{"likes with extra column", "email;title\na@b.com;Foo;extra\n", func(in string) error {
			_, err := ReadLikes(strings.NewReader(in))
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.read(tt.input); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}
