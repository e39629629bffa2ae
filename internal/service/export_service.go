package service

import (
	"context"
	"fmt"
	"io"

	"cverve/internal/ledgerexport"
	"cverve/internal/port"
)

const exportPageSize = 500

// ExportService defines the ledger export contract.
type ExportService interface {
	ExportPayments(ctx context.Context, format string, w io.Writer) error
}

type exportService struct {
	repo port.LedgerRepository
}

// NewExportService creates a new ExportService implementation.
func NewExportService(repo port.LedgerRepository) ExportService {
	return &exportService{repo: repo}
}

// ExportPayments writes the whole ledger, newest first, in format ("csv" or "xlsx").
func (s *exportService) ExportPayments(ctx context.Context, format string, w io.Writer) error {
	writer, err := ledgerexport.NewWriter(format, w)
	if err != nil {
		return err
	}
	if err := writer.WriteHeader(); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing header: %w", err)
	}

	for offset := 0; ; offset += exportPageSize {
		records, total, err := s.repo.List(ctx, offset, exportPageSize)
		if err != nil {
			_ = writer.Close()
			return err
		}
		if err := writer.WritePayments(records); err != nil {
			_ = writer.Close()
			return fmt.Errorf("writing rows: %w", err)
		}
		if len(records) < exportPageSize || offset+len(records) >= total {
			break
		}
	}
	return writer.Close()
}
