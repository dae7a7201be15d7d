// Package search queries a knowledge store's hybrid (keyword + vector) search endpoint.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrEmptyQuery       = errors.New("search query must not be empty")
	ErrInvalidLimit     = errors.New("search limit must be at least 1")
	ErrInvalidAlpha     = errors.New("search alpha must be within [0, 1]")
	ErrUnexpectedStatus = errors.New("unexpected search response status")
)

// Searcher runs hybrid searches against a knowledge store.
type Searcher interface {
	Hybrid(ctx context.Context, q Query) (*Response, error)
}

// Query is the hybrid search request body. Alpha weights vector similarity
// against keyword relevance: 0 is pure keyword, 1 is pure vector.
type Query struct {
	Query   string         `json:"query"`
	Filters map[string]any `json:"filters,omitempty"`
	Limit   int            `json:"limit"`
	Alpha   float64        `json:"alpha"`
}

// Validate checks the query text, limit, and alpha range.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return ErrEmptyQuery
	}
	if q.Limit < 1 {
		return ErrInvalidLimit
	}
	if q.Alpha < 0 || q.Alpha > 1 {
		return ErrInvalidAlpha
	}
	return nil
}

// Response holds the ranked documents returned by the knowledge store.
// Documents is either a JSON array of objects or a single object.
type Response struct {
	Documents json.RawMessage `json:"documents"`
}

// Content returns the content field of the top-ranked document,
// or an empty string when no document carries textual content.
func (r *Response) Content() string {
	if r == nil || len(r.Documents) == 0 {
		return ""
	}

	var list []map[string]any
	if err := json.Unmarshal(r.Documents, &list); err == nil {
		if len(list) == 0 {
			return ""
		}
		return textField(list[0], "content")
	}

	var single map[string]any
	if err := json.Unmarshal(r.Documents, &single); err == nil {
		return textField(single, "content")
	}

	return ""
}

func textField(doc map[string]any, name string) string {
	if s, ok := doc[name].(string); ok {
		return s
	}
	return ""
}
