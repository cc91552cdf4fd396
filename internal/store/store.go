// Package store persists the three URL lists that carry state across runs:
// discovered targets, taboo (attempted) URLs and the applied log.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Collection names one persisted list.
type Collection string

const (
	Targets Collection = "targets"
	Taboo   Collection = "taboo"
	Applied Collection = "applied"
)

// Collections lists every collection in a fixed order.
var Collections = []Collection{Targets, Taboo, Applied}

// ErrUnknownCollection is returned for a collection the store has no backing for.
var ErrUnknownCollection = errors.New("unknown collection")

// Store loads, appends to and overwrites the named collections.
type Store interface {
	// Load returns the normalized, non-empty entries in insertion order.
	Load(ctx context.Context, c Collection) ([]string, error)
	// Append adds entries without touching existing ones.
	Append(ctx context.Context, c Collection, urls ...string) error
	// Overwrite replaces the whole collection.
	Overwrite(ctx context.Context, c Collection, urls []string) error
	Close() error
}

// Normalize truncates a URL at its first '?'. The result is the
// de-duplication key for every list.
func Normalize(url string) string {
	url = strings.TrimSpace(url)
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	return url
}

// Set builds a membership set of normalized URLs.
func Set(urls []string) map[string]struct{} {
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if u = Normalize(u); u != "" {
			set[u] = struct{}{}
		}
	}
	return set
}

// Difference returns the work queue: targets minus taboo as sets. The
// result is sorted so that a run is reproducible from its inputs.
func Difference(targets, taboo []string) []string {
	skip := Set(taboo)
	queue := make([]string, 0, len(targets))
	for u := range Set(targets) {
		if _, ok := skip[u]; !ok {
			queue = append(queue, u)
		}
	}
	sort.Strings(queue)
	return queue
}

// Queue loads targets and taboo from s and returns their difference.
func Queue(ctx context.Context, s Store) ([]string, error) {
	targets, err := s.Load(ctx, Targets)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	taboo, err := s.Load(ctx, Taboo)
	if err != nil {
		return nil, fmt.Errorf("load taboo: %w", err)
	}
	return Difference(targets, taboo), nil
}

func normalizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = Normalize(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
