// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

// Package bulkload feeds semicolon-separated CSV files into the HTTP
// API: shows, people and like relations. Parsing and sending are
// separate so the reader can be tested without a server.
package bulkload

import (
	"encoding/csv"
	"fmt"
	"io"
)

// noEndDate is the CSV sentinel for a show still airing.
const noEndDate = "N/A"

// ShowRecord is one row of a title;aired;ended file.
type ShowRecord struct {
	Title       string `validate:"required,showtitle"`
	ReleaseDate string `validate:"required,showdate"`

	// EndDate is empty when the source column held the N/A sentinel.
	EndDate string `validate:"omitempty,showdate"`
}

// PersonRecord is one row of an email;age;gender file.
type PersonRecord struct {
	Mail   string `validate:"required,showmail"`
	Age    string `validate:"required,agestring"`
	Gender string `validate:"required,gendervalue"`
}

// LikeRecord is one row of an email;title file.
type LikeRecord struct {
	Mail  string `validate:"required,showmail"`
	Title string `validate:"required,showtitle"`
}

// newReader configures the dialect shared by all three file kinds:
// semicolon separated, first line is a header.
func newReader(r io.Reader, fields int) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = fields
	return cr
}

func readRows(r io.Reader, fields int, row func(record []string)) error {
	cr := newReader(r, fields)

	// Header line.
	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return fmt.Errorf("csv file is empty")
		}
		return fmt.Errorf("read csv header: %w", err)
	}

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("read csv line %d: %w", line, err)
		}
		row(record)
	}
}

// ReadShows parses a title;aired;ended file.
func ReadShows(r io.Reader) ([]ShowRecord, error) {
	var shows []ShowRecord
	err := readRows(r, 3, func(record []string) {
		end := record[2]
		if end == noEndDate {
			end = ""
		}
		shows = append(shows, ShowRecord{
			Title:       record[0],
			ReleaseDate: record[1],
			EndDate:     end,
		})
	})
	if err != nil {
		return nil, err
	}
	return shows, nil
}

// ReadPeople parses an email;age;gender file.
func ReadPeople(r io.Reader) ([]PersonRecord, error) {
	var people []PersonRecord
	err := readRows(r, 3, func(record []string) {
		people = append(people, PersonRecord{
			Mail:   record[0],
			Age:    record[1],
			Gender: record[2],
		})
	})
	if err != nil {
		return nil, err
	}
	return people, nil
}

// ReadLikes parses an email;title file.
func ReadLikes(r io.Reader) ([]LikeRecord, error) {
	var likes []LikeRecord
	err := readRows(r, 2, func(record []string) {
		likes = append(likes, LikeRecord{Mail: record[0], Title: record[1]})
	})
	if err != nil {
		return nil, err
	}
	return likes, nil
}
