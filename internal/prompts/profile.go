package prompts

import (
	"strconv"
	"strings"
)

const (
	unspecifiedAge     = "Patient of unspecified age"
	unspecifiedGender  = "of unspecified gender"
	missingBloodType   = "Blood type not provided"
	missingHistory     = "No additional medical history provided"
	medicalHistoryLead = "Medical background: "
)

// FormatProfile renders the patient profile sentence, substituting a neutral
// placeholder for each absent detail, and lists the absent fields.
func FormatProfile(p PatientDetails) Profile {
	var (
		sb      strings.Builder
		missing []string
	)

	years, hasAge := age(p.Age)
	gender, hasGender := text(p.Gender)
	bloodType, hasBloodType := text(p.BloodType)
	bio, hasBio := text(p.Bio)

	switch {
	case hasAge && hasGender:
		sb.WriteString(strconv.Itoa(years) + "-year-old " + gender)
	case hasAge:
		sb.WriteString(strconv.Itoa(years) + "-year-old patient " + unspecifiedGender)
	case hasGender:
		sb.WriteString(unspecifiedAge + ", " + gender)
	default:
		sb.WriteString(unspecifiedAge + ", " + unspecifiedGender)
	}
	sb.WriteString(". ")

	if hasBloodType {
		sb.WriteString("Blood type " + bloodType + ". ")
	} else {
		sb.WriteString(missingBloodType + ". ")
	}

	if hasBio {
		sb.WriteString(medicalHistoryLead + bio)
	} else {
		sb.WriteString(missingHistory + ".")
	}

	if !hasAge {
		missing = append(missing, FieldAge)
	}
	if !hasGender {
		missing = append(missing, FieldGender)
	}
	if !hasBloodType {
		missing = append(missing, FieldBloodType)
	}
	if !hasBio {
		missing = append(missing, FieldMedicalHistory)
	}

	return Profile{Sentence: sb.String(), Missing: missing}
}
