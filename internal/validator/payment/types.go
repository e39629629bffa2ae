// Package payment holds the business rules a payment proof must satisfy.
package payment

// ValidationResult is the outcome of checking one claim field.
type ValidationResult struct {
	Passed        bool
	FieldPath     string
	ExpectedValue string
	ActualValue   string
	Message       string
}

// Rules is the configured acceptance policy.
type Rules struct {
	AcceptedReceivers []string // lowercase full names
	MinimumAmount     float64
	TransactionPrefix string
	Currency          string
	BankName          string
}
