// Package prompts builds the consultation prompt sent to the text-generation model.
//
// Every function in this package is pure: the same inputs always produce the
// same prompt, and any combination of absent patient details is accepted.
package prompts

import "strings"

// Missing-field tokens, in the order they are reported.
const (
	FieldAge            = "age"
	FieldGender         = "gender"
	FieldBloodType      = "blood_type"
	FieldMedicalHistory = "medical_history"
)

// PatientDetails is the optional demographic and history data supplied with a request.
// Nil pointers, empty strings, whitespace-only strings, and non-positive ages
// all count as absent.
type PatientDetails struct {
	BloodType *string `json:"blood_type"`
	Age       *int    `json:"age"`
	Gender    *string `json:"gender"`
	Bio       *string `json:"bio"`
}

// Profile is the natural-language patient summary and the fields it could not fill.
type Profile struct {
	Sentence string
	Missing  []string
}

// Complete reports whether every patient detail was provided.
func (p Profile) Complete() bool {
	return len(p.Missing) == 0
}

func text(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(*v)
	return s, s != ""
}

func age(v *int) (int, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}
