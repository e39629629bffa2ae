package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")

	// Extraction
	ErrExtractionUnusable = errors.New("no usable text could be extracted from the supplied files")
	ErrProcessingTimeout  = errors.New("processing took too long")

	// Payments
	ErrPaymentRejected    = errors.New("payment details rejected")
	ErrDuplicatePayment   = errors.New("payment id has already been used")
	ErrClaimExtraction    = errors.New("could not read payment details from screenshot")
	ErrInvalidAmount      = errors.New("invalid payment amount")
	ErrProofArchiveFailed = errors.New("payment proof archive failed")
)
