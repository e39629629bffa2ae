package domain

// FileFormat is the extraction strategy a file is dispatched to.
type FileFormat string

const (
	FormatPDF          FileFormat = "pdf"
	FormatWordDocument FileFormat = "word_document"
	FormatImage        FileFormat = "image"
	FormatUnsupported  FileFormat = "unsupported"
)

// ExtractionStatus is the terminal state of a single file's extraction.
type ExtractionStatus string

const (
	ExtractionSuccess ExtractionStatus = "success"
	ExtractionSkipped ExtractionStatus = "skipped"
	ExtractionFailed  ExtractionStatus = "failed"
)

// ExtractionMethod records which extractor produced a result's text.
type ExtractionMethod string

const (
	MethodPDFText     ExtractionMethod = "pdf-text"
	MethodPDFOCR      ExtractionMethod = "pdf-ocr"
	MethodDocument    ExtractionMethod = "document-text"
	MethodImageOCR    ExtractionMethod = "image-ocr"
	MethodImageOCRRaw ExtractionMethod = "image-ocr-raw"
	MethodNone        ExtractionMethod = ""
)

// ClaimSource records how a payment claim was obtained.
type ClaimSource string

const (
	ClaimSourceLLM    ClaimSource = "llm"
	ClaimSourceManual ClaimSource = "manual"
)

// UploadPurpose is the caller-supplied label echoed back by text extraction ("cv" or "jd").
type UploadPurpose string

const (
	PurposeCV UploadPurpose = "cv"
	PurposeJD UploadPurpose = "jd"
)

// ValidationSeverity decides whether a failed rule rejects a payment claim.
type ValidationSeverity string

const (
	ValidationSeverityError   ValidationSeverity = "error"
	ValidationSeverityWarning ValidationSeverity = "warning"
)

// FieldValidationStatus is the rolled-up state of one claim field after validation.
type FieldValidationStatus string

const (
	FieldStatusValid   FieldValidationStatus = "valid"
	FieldStatusInvalid FieldValidationStatus = "invalid"
	FieldStatusUnsure  FieldValidationStatus = "unsure"
)
