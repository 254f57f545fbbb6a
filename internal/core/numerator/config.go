// Package numerator provides domain contracts for document auto-numbering.
package numerator

// ResetPeriod controls when the sequence restarts from 1.
type ResetPeriod string

const (
	ResetMonthly ResetPeriod = "month"
	ResetYearly  ResetPeriod = "year"
	ResetNever   ResetPeriod = "never"
)

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g. "D" for deliveries, "I" for stocktakings)
	Prefix string

	// PadWidth is the minimum sequence width (default 4)
	PadWidth int

	// ResetPeriod controls sequence reset: monthly, yearly or never
	ResetPeriod ResetPeriod
}

// DefaultConfig returns the standard document numbering:
// PREFIX + yyyymm + 4-digit sequence, reset monthly.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		PadWidth:    4,
		ResetPeriod: ResetMonthly,
	}
}
