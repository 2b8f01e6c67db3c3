// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

// Command csvsend bulk-imports semicolon-separated CSV files into a
// running ShowGraph server.
//
// Usage:
//
//	csvsend -server http://localhost:8080 -kind shows shows.csv
//	csvsend -kind people -rate 100 people.csv
//	csvsend -kind likes likes.csv
//
// Shows files have columns title;aired;ended (N/A for still-airing),
// people files email;age;gender, likes files email;title. Each file
// starts with a header row.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skazis/showgraph/internal/bulkload"
	"github.com/skazis/showgraph/internal/logging"
)

func main() {
	var (
		server  = flag.String("server", "http://localhost:8080", "base URL of the ShowGraph server")
		kind    = flag.String("kind", "", "record kind to import: shows, people or likes")
		rate    = flag.Float64("rate", 50, "maximum requests per second")
		timeout = flag.Duration("timeout", 10*time.Second, "per-request timeout")
		level   = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logging.Init(logging.Config{Level: *level, Format: "console"})

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: csvsend [flags] <file.csv>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	file, err := os.Open(path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", path).Msg("failed to open input file")
	}
	defer file.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sender := bulkload.NewSender(bulkload.SenderOptions{
		BaseURL:           *server,
		RequestsPerSecond: *rate,
		Timeout:           *timeout,
	})

	var stats bulkload.Stats
	switch *kind {
	case "shows":
		stats, err = sender.ImportShows(ctx, file)
	case "people":
		stats, err = sender.ImportPeople(ctx, file)
	case "likes":
		stats, err = sender.ImportLikes(ctx, file)
	default:
		fmt.Fprintf(os.Stderr, "unknown kind %q: must be shows, people or likes\n", *kind)
		os.Exit(2)
	}
	if err != nil {
		logging.Fatal().Err(err).Str("kind", *kind).Msg("import aborted")
	}

	logging.Info().
		Str("kind", *kind).
		Int("sent", stats.Sent).
		Int("accepted", stats.Accepted).
		Int("rejected", stats.Rejected).
		Int("failed", stats.Failed).
		Msg("import finished")

	if stats.Failed > 0 {
		os.Exit(1)
	}
}
