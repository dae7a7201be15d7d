package prompts

import (
	"fmt"
	"strings"
)

// Input carries everything the consultation prompt is built from.
type Input struct {
	Condition string
	Score     float64
	Profile   Profile
	Reference string
}

// Compose renders the consultation prompt. Sections appear in a fixed order;
// the missing-details advisory is present only when the profile is incomplete.
func Compose(in Input) string {
	reference := strings.TrimSpace(in.Reference)
	if reference == "" {
		reference = noReference
	}

	sections := []string{
		preamble,
		"Re: Condition Consultation: " + in.Condition,
		greeting,
		fmt.Sprintf(diagnosisTemplate, in.Condition),
		"Patient Profile: " + in.Profile.Sentence,
		fmt.Sprintf(confidenceTemplate, in.Score),
		"Clinical Reference: " + reference,
	}

	if !in.Profile.Complete() {
		sections = append(sections, fmt.Sprintf(missingDetailsTemplate, strings.Join(in.Profile.Missing, ", ")))
	}

	sections = append(sections, footer)

	return strings.Join(sections, "\n\n")
}
