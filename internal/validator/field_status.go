package validator

import (
	"cverve/internal/domain"
)

// FieldStatus represents the computed validation state for a single claim field.
type FieldStatus struct {
	Status   domain.FieldValidationStatus `json:"status"`
	Messages []string                     `json:"messages"`
}

// ComputeFieldStatuses rolls rule results up per field path. Any failed error-severity
// result makes the field invalid; failed warnings make it unsure.
func ComputeFieldStatuses(results []ValidationResultEntry) map[string]*FieldStatus {
	statuses := make(map[string]*FieldStatus)
	for _, r := range results {
		fs, ok := statuses[r.FieldPath]
		if !ok {
			fs = &FieldStatus{Status: domain.FieldStatusValid, Messages: []string{}}
			statuses[r.FieldPath] = fs
		}
		if r.Passed {
			continue
		}
		fs.Messages = append(fs.Messages, r.Message)
		switch {
		case r.Severity == domain.ValidationSeverityError:
			fs.Status = domain.FieldStatusInvalid
		case fs.Status == domain.FieldStatusValid:
			fs.Status = domain.FieldStatusUnsure
		}
	}
	return statuses
}
