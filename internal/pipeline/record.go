package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JaimeStill/medora/internal/prompts"
)

const identitySegment = "user_data"

// ErrMissingIdentity indicates a classification key without a user_data/<id> component.
var ErrMissingIdentity = errors.New("reference has no user identity component")

// Record is the persisted consultation artifact. It is written once and never updated
// by this service; Approved is set by a downstream review process.
type Record struct {
	Timestamp     time.Time              `json:"timestamp"`
	Patient       prompts.PatientDetails `json:"user_details"`
	Letter        string                 `json:"llm_response"`
	CorrelationID string                 `json:"chat_id"`
	Approved      bool                   `json:"approved"`
}

// Encode serializes the record as indented JSON without HTML escaping,
// so the letter markup is stored verbatim.
func (r *Record) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeRecord reads a record previously written by Encode.
func DecodeRecord(r io.Reader) (*Record, error) {
	var rec Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// UserID extracts the segment following "user_data" in a storage key.
func UserID(key string) (string, error) {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		if seg == identitySegment && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrMissingIdentity, key)
}

// ResponseKey derives the storage key for a persisted record:
//
//	user_data/<user>/<dd.mm.yyyy>/results/llm_response_<dd:mm:yyyy>_<HH_MM_SS>_<correlation>.json
//
// The timestamp is rendered in UTC.
func ResponseKey(userID string, at time.Time, correlationID string) string {
	at = at.UTC()
	return fmt.Sprintf(
		"%s/%s/%s/results/llm_response_%s_%s_%s.json",
		identitySegment,
		userID,
		at.Format("02.01.2006"),
		at.Format("02:01:2006"),
		at.Format("15_04_05"),
		correlationID,
	)
}
