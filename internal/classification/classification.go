// Package classification interprets the label-to-score documents produced
// by the upstream image classifier.
package classification

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ImageKey is the non-score field the classifier stores alongside its scores.
const ImageKey = "image_url"

var (
	// ErrNoProbabilities indicates a document without any scorable entry.
	ErrNoProbabilities = errors.New("no probabilities found")
	// ErrMalformedDocument indicates the document is not a JSON object.
	ErrMalformedDocument = errors.New("malformed classification document")
)

// Prediction is the selected condition and its score.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Scores maps condition labels to classifier scores.
type Scores map[string]float64

// Parse decodes a classification document. ImageKey and any entry whose
// value is not a JSON number are excluded from the result.
func Parse(data []byte) (Scores, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformedDocument)
	}
	return FromDocument(doc), nil
}

// FromDocument extracts the scorable entries of an already decoded document.
func FromDocument(doc map[string]any) Scores {
	scores := make(Scores, len(doc))
	for label, v := range doc {
		if label == ImageKey {
			continue
		}
		if score, ok := v.(float64); ok {
			scores[label] = score
		}
	}
	return scores
}

// Top returns the highest-scoring prediction. When several labels share the
// maximum score the lexicographically smallest label wins.
func (s Scores) Top() (Prediction, error) {
	if len(s) == 0 {
		return Prediction{}, ErrNoProbabilities
	}

	var top Prediction
	for i, label := range slices.Sorted(maps.Keys(s)) {
		if score := s[label]; i == 0 || score > top.Score {
			top = Prediction{Label: label, Score: score}
		}
	}
	return top, nil
}
