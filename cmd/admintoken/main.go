// Command admintoken issues a bearer token for the admin ledger export endpoint.
// It signs with the same CVERVE_JWT_SECRET the server verifies with.
// Usage: go run ./cmd/admintoken -sub ops@example.com -ttl 24h
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"cverve/internal/auth"
	"cverve/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	subject := flag.String("sub", "", "token subject, e.g. the operator's e-mail")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *subject == "" {
		return fmt.Errorf("-sub is required")
	}
	if *ttl <= 0 {
		return fmt.Errorf("-ttl must be positive")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	verifier, err := auth.NewTokenVerifier(&cfg.JWT)
	if err != nil {
		return err
	}

	token, err := verifier.Issue(*subject, auth.RoleAdmin, *ttl)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}
	fmt.Println(token)
	return nil
}
