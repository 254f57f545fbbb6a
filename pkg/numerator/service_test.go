package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"velora/internal/core/numerator"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64 // Simulates DB sequence value
	lastKey      string
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(args) > 0 {
		if key, ok := args[0].(string); ok {
			if key != m.lastKey {
				// New sequence key: reset, simulating the DB INSERT branch
				m.currentValue = 0
				m.lastKey = key
			}
		}
	}

	m.currentValue++
	return &mockRow{val: m.currentValue}
}

func TestGetNextNumber_Sequential(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := numerator.DefaultConfig("D")

	period := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "D2026080001" {
		t.Errorf("expected D2026080001, got %s", num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "D2026080002" {
		t.Errorf("expected D2026080002, got %s", num)
	}
}

func TestGetNextNumber_MonthlyReset(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := numerator.DefaultConfig("I")

	august := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	september := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, august)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "I2026080001" {
		t.Errorf("expected I2026080001, got %s", num)
	}

	// Next month starts a fresh sequence
	num, err = svc.GetNextNumber(ctx, cfg, september)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "I2026090001" {
		t.Errorf("expected I2026090001, got %s", num)
	}
}

func TestFormatNumber(t *testing.T) {
	period := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  numerator.Config
		num  int64
		want string
	}{
		{
			name: "monthly default pad",
			cfg:  numerator.Config{Prefix: "O", ResetPeriod: numerator.ResetMonthly},
			num:  7,
			want: "O2026010007",
		},
		{
			name: "yearly",
			cfg:  numerator.Config{Prefix: "D", PadWidth: 5, ResetPeriod: numerator.ResetYearly},
			num:  123,
			want: "D202600123",
		},
		{
			name: "no reset",
			cfg:  numerator.Config{Prefix: "SUP", PadWidth: 4, ResetPeriod: numerator.ResetNever},
			num:  42,
			want: "SUP0042",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatNumber(tt.cfg, period, tt.num)
			if got != tt.want {
				t.Errorf("want %s, got %s", tt.want, got)
			}
		})
	}
}
