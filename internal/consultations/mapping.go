package consultations

import (
	"net/url"
	"strconv"
	"time"

	"github.com/JaimeStill/medora/pkg/query"
	"github.com/JaimeStill/medora/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "consultations", "c").
	Project("id", "ID").
	Project("correlation_id", "CorrelationID").
	Project("user_id", "UserID").
	Project("condition", "Condition").
	Project("probability", "Probability").
	Project("source_ref", "SourceRef").
	Project("response_ref", "ResponseRef").
	Project("response_key", "ResponseKey").
	Project("model_name", "ModelName").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for consultation queries.
// Nil fields are ignored. String fields use exact matching.
type Filters struct {
	CorrelationID  *string    `json:"correlation_id,omitempty"`
	UserID         *string    `json:"user_id,omitempty"`
	Condition      *string    `json:"condition,omitempty"`
	MinProbability *float64   `json:"min_probability,omitempty"`
	CreatedAfter   *time.Time `json:"created_after,omitempty"`
	CreatedBefore  *time.Time `json:"created_before,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("CorrelationID", f.CorrelationID).
		WhereEquals("UserID", f.UserID).
		WhereEquals("Condition", f.Condition).
		WhereAtLeast("Probability", f.MinProbability).
		WhereAtLeast("CreatedAt", f.CreatedAfter).
		WhereBefore("CreatedAt", f.CreatedBefore)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Malformed numeric and time values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("correlation_id"); v != "" {
		f.CorrelationID = &v
	}

	if v := values.Get("user_id"); v != "" {
		f.UserID = &v
	}

	if v := values.Get("condition"); v != "" {
		f.Condition = &v
	}

	if v := values.Get("min_probability"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinProbability = &p
		}
	}

	if v := values.Get("created_after"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.CreatedAfter = &t
		}
	}

	if v := values.Get("created_before"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.CreatedBefore = &t
		}
	}

	return f
}

func scanConsultation(s repository.Scanner) (Consultation, error) {
	var c Consultation
	err := s.Scan(
		&c.ID,
		&c.CorrelationID,
		&c.UserID,
		&c.Condition,
		&c.Probability,
		&c.SourceRef,
		&c.ResponseRef,
		&c.ResponseKey,
		&c.ModelName,
		&c.CreatedAt,
	)
	return c, err
}
