// Package numerator provides the document auto-numbering service.
//
// Numbers are allocated from the sys_sequences table with a single
// UPSERT ... RETURNING statement, so allocation is atomic and two concurrent
// document creations can never observe the same value. This replaces any
// "last id + 1" style derivation, which is racy under concurrency.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"velora/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service provides document numbering backed by sys_sequences.
type Service struct {
	querier Querier
}

// New creates a new numerator service.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

// GetNextNumber generates the next document number.
// Pattern: PREFIX + period + zero-padded sequence (e.g. D2026080001).
func (s *Service) GetNextNumber(ctx context.Context, cfg numerator.Config, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	key := buildKey(cfg, period)

	var num int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (key, current_val)
        VALUES ($1, 1)
        ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next number for %s: %w", key, err)
	}

	return FormatNumber(cfg, period, num), nil
}

// SetNextNumber sets the current sequence value (for migration purposes).
func (s *Service) SetNextNumber(ctx context.Context, cfg numerator.Config, period time.Time, value int64) error {
	key := buildKey(cfg, period)

	var result int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&result)
	return err
}

// buildKey creates the sequence key based on config and period.
func buildKey(cfg numerator.Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case numerator.ResetMonthly:
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case numerator.ResetYearly:
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

// FormatNumber creates the final number string.
func FormatNumber(cfg numerator.Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 4
	}

	switch cfg.ResetPeriod {
	case numerator.ResetMonthly:
		return fmt.Sprintf("%s%s%0*d", cfg.Prefix, period.Format("200601"), padWidth, num)
	case numerator.ResetYearly:
		return fmt.Sprintf("%s%s%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	default:
		return fmt.Sprintf("%s%0*d", cfg.Prefix, padWidth, num)
	}
}

// Ensure compile-time interface compliance.
var _ numerator.Generator = (*Service)(nil)
