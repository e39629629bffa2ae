// Command seedusers imports opening balances from an Excel sheet into the users table.
// The first sheet must have a header row followed by rows of user id and balance.
// Existing users are left untouched.
// Usage: go run ./cmd/seedusers -file balances.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"cverve/internal/config"
	"cverve/internal/domain"
	"cverve/internal/port"
	"cverve/internal/repository/postgres"
)

type seedEntry struct {
	userID  string
	balance float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	path := flag.String("file", "balances.xlsx", "Excel file with user id and balance columns")
	dryRun := flag.Bool("dry-run", false, "parse the file without writing to the database")
	flag.Parse()

	f, err := excelize.OpenFile(*path)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parseSheet(f)
	if err != nil {
		return fmt.Errorf("parse sheet: %w", err)
	}
	log.Printf("seedusers: %d entries in %s", len(entries), *path)
	if *dryRun {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	created, skipped, err := seed(context.Background(), postgres.NewUserRepo(db), entries)
	if err != nil {
		return err
	}
	log.Printf("seedusers: created %d users, skipped %d existing", created, skipped)
	return nil
}

// parseSheet reads the first sheet, skipping the header row and blank rows.
// Duplicate user ids keep the first occurrence.
func parseSheet(f *excelize.File) ([]seedEntry, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", sheets[0], err)
	}

	seen := make(map[string]bool)
	var entries []seedEntry
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		userID := strings.TrimSpace(row[0])
		if userID == "" || seen[userID] {
			continue
		}
		var balance float64
		if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
			balance, err = strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[1]), ",", ""), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid balance %q", i+1, row[1])
			}
		}
		if balance < 0 {
			return nil, fmt.Errorf("row %d: negative balance for %s", i+1, userID)
		}
		seen[userID] = true
		entries = append(entries, seedEntry{userID: userID, balance: balance})
	}
	return entries, nil
}

func seed(ctx context.Context, repo port.UserRepository, entries []seedEntry) (created, skipped int, err error) {
	for _, e := range entries {
		err := repo.Create(ctx, &domain.UserBalance{UserID: e.userID, Balance: e.balance})
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrUserAlreadyExists):
			skipped++
		default:
			return created, skipped, fmt.Errorf("creating user %s: %w", e.userID, err)
		}
	}
	return created, skipped, nil
}
