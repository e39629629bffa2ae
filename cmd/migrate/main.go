// Command migrate applies the users and payments schema.
// The source defaults to file://db/migrations and is overridden with CVERVE_DB_MIGRATIONS_URL.
// Usage: go run ./cmd/migrate [up|down|steps N|force V|version]
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"cverve/internal/config"
)

const usage = "usage: migrate [up|down|steps N|force V|version]"

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(version int) error
	Version() (uint, bool, error)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	m, err := migrate.New(cfg.DB.MigrationsURL, cfg.DB.DSN())
	if err != nil {
		log.Fatalf("opening migrations at %s: %v", cfg.DB.MigrationsURL, err)
	}
	defer func() { _, _ = m.Close() }()

	if err := run(m, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("migrate %s: %v", os.Args[1], err)
	}
}

func run(m migrator, args []string, out io.Writer) error {
	switch args[0] {
	case "up":
		return report(out, m.Up(), "schema is up to date")
	case "down":
		return report(out, m.Down(), "schema reverted")
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return report(out, m.Steps(n), fmt.Sprintf("applied %d migration steps", n))
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		return report(out, m.Force(v), fmt.Sprintf("forced version %d", v))
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			_, _ = fmt.Fprintln(out, "no migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "version: %d, dirty: %v\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q; %s", args[0], usage)
	}
}

// report treats ErrNoChange as success.
func report(out io.Writer, err error, done string) error {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	_, _ = fmt.Fprintln(out, done)
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a number argument", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid %s argument %q: %w", args[0], args[1], err)
	}
	return n, nil
}
