package parser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"cverve/internal/domain"
	"cverve/internal/port"
)

// ErrIncompleteClaim is recorded when a provider answers without a payment id or an amount.
var ErrIncompleteClaim = errors.New("claim is missing payment_id or amount")

const defaultCooldown = 60 * time.Second

// RateLimitError indicates a provider answered HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// NewRateLimitError builds a RateLimitError; a non-positive retryAfterSecs means a 60s cooldown.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	wait := defaultCooldown
	if retryAfterSecs > 0 {
		wait = time.Duration(retryAfterSecs) * time.Second
	}
	return &RateLimitError{Err: err, RetryAfter: wait, Provider: provider}
}

// ParseRetryAfterHeader reads a delta-seconds Retry-After value. Dates and junk give 0.
func ParseRetryAfterHeader(val string) int {
	secs, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}

// claimComplete reports whether a claim carries a payment id and a parsed amount.
func claimComplete(c *domain.PaymentClaim) bool {
	return c != nil && strings.TrimSpace(c.TransactionID) != "" && c.Amount > 0
}

// cooldown holds the time until which a rate-limited provider is skipped.
type cooldown struct {
	mu    sync.RWMutex
	until time.Time
}

func (c *cooldown) active(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.until, !c.until.IsZero() && now.Before(c.until)
}

func (c *cooldown) extend(until time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if until.After(c.until) {
		c.until = until
	}
}

// FallbackParser asks each claim provider in order and returns the first complete claim.
// Providers that answered 429 sit out until their Retry-After passes.
// It implements port.ClaimParser.
type FallbackParser struct {
	parsers   []port.ClaimParser
	cooldowns []*cooldown
	names     []string
}

// NewFallbackParser creates a FallbackParser from an ordered list of parsers and their names.
func NewFallbackParser(parsers []port.ClaimParser, names []string) *FallbackParser {
	cooldowns := make([]*cooldown, len(parsers))
	for i := range cooldowns {
		cooldowns[i] = &cooldown{}
	}
	return &FallbackParser{
		parsers:   parsers,
		cooldowns: cooldowns,
		names:     names,
	}
}

func (f *FallbackParser) Parse(ctx context.Context, input port.ClaimInput) (*port.ClaimOutput, error) {
	now := time.Now()
	var lastErr error
	onlyRateLimited := true
	var earliest time.Time
	noteReset := func(t time.Time) {
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}

	for i, p := range f.parsers {
		if until, ok := f.cooldowns[i].active(now); ok {
			log.Printf("parser.FallbackParser: skipping %s until %s", f.names[i], until.Format(time.RFC3339))
			noteReset(until)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := p.Parse(ctx, input)
		if err == nil {
			if out != nil && claimComplete(out.Claim) {
				return out, nil
			}
			log.Printf("parser.FallbackParser: %s returned an incomplete claim, trying next provider", f.names[i])
			lastErr = fmt.Errorf("%s: %w", f.names[i], ErrIncompleteClaim)
			onlyRateLimited = false
			continue
		}

		log.Printf("parser.FallbackParser: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			until := now.Add(rlErr.RetryAfter)
			f.cooldowns[i].extend(until)
			noteReset(until)
			continue
		}
		onlyRateLimited = false
	}

	if lastErr == nil || onlyRateLimited {
		wait := time.Until(earliest)
		if wait < time.Second {
			wait = time.Second
		}
		return nil, NewRateLimitError("all", errors.New("every claim provider is rate limited"), int(wait.Seconds()))
	}
	return nil, fmt.Errorf("no provider produced a complete claim: %w", lastErr)
}
