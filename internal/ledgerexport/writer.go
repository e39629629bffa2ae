package ledgerexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cverve/internal/domain"
)

// Supported export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Content types for the export responses.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// SheetName is the worksheet holding ledger rows in xlsx exports.
const SheetName = "Payments"

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the header row.
var columns = []string{
	"Transaction ID",
	"User ID",
	"Amount",
	"Receiver Name",
	"Proof Key",
	"Recorded At",
}

// Writer streams ledger rows in one export format.
type Writer interface {
	WriteHeader() error
	WritePayments(records []domain.PaymentRecord) error
	// Close flushes buffered rows to the destination.
	Close() error
}

// NewWriter returns a Writer for format ("csv" or "xlsx").
func NewWriter(format string, w io.Writer) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(w), nil
	case FormatXLSX, "":
		return NewXLSXWriter(w)
	default:
		return nil, fmt.Errorf("unsupported export format %q: %w", format, domain.ErrInvalidInput)
	}
}

// CSVWriter wraps csv.Writer for exporting the ledger as CSV.
type CSVWriter struct {
	out io.Writer
	csv *csv.Writer
	bom bool
}

// NewCSVWriter creates a CSVWriter that writes to w, prefixed with a UTF-8 BOM.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{out: w, csv: csv.NewWriter(w)}
}

// WriteHeader writes the BOM and the header row.
func (w *CSVWriter) WriteHeader() error {
	if !w.bom {
		if _, err := w.out.Write(BOM); err != nil {
			return err
		}
		w.bom = true
	}
	return w.csv.Write(columns)
}

// WritePayments converts a batch of payment records to CSV rows and writes them.
func (w *CSVWriter) WritePayments(records []domain.PaymentRecord) error {
	for i := range records {
		if err := w.csv.Write(paymentToRow(&records[i])); err != nil {
			return err
		}
	}
	return nil
}

func (w *CSVWriter) Close() error {
	w.csv.Flush()
	return w.csv.Error()
}

// XLSXWriter streams rows into a single-sheet workbook with excelize.
type XLSXWriter struct {
	out    io.Writer
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

// NewXLSXWriter creates a workbook whose only sheet is SheetName.
func NewXLSXWriter(w io.Writer) (*XLSXWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating stream writer: %w", err)
	}
	return &XLSXWriter{out: w, file: f, stream: sw, row: 1}, nil
}

func (w *XLSXWriter) WriteHeader() error {
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	return w.writeRow(header)
}

func (w *XLSXWriter) WritePayments(records []domain.PaymentRecord) error {
	for i := range records {
		rec := &records[i]
		row := []interface{}{
			rec.TransactionID,
			rec.UserID,
			rec.Amount,
			rec.ReceiverName,
			rec.ProofKey,
			rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (w *XLSXWriter) writeRow(values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.stream.SetRow(cell, values); err != nil {
		return fmt.Errorf("writing row %d: %w", w.row, err)
	}
	w.row++
	return nil
}

func (w *XLSXWriter) Close() error {
	defer func() { _ = w.file.Close() }()
	if err := w.stream.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}
	if _, err := w.file.WriteTo(w.out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// paymentToRow converts a single payment record to a string row.
func paymentToRow(rec *domain.PaymentRecord) []string {
	return []string{
		rec.TransactionID,
		rec.UserID,
		formatMoney(rec.Amount),
		rec.ReceiverName,
		rec.ProofKey,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces non-alphanumeric chars (except - _) with _, collapses
// consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{format}
func BuildFilename(name, format string, now time.Time) string {
	if format == "" {
		format = FormatXLSX
	}
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), format)
}

// ContentType returns the response content type for format.
func ContentType(format string) string {
	if format == FormatCSV {
		return ContentTypeCSV
	}
	return ContentTypeXLSX
}
