package orders

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	orderNumberPrefix   = "ORD"
	orderNumberAttempts = 10
)

// FormatOrderNumber renders ORD-YYYYMMDD-NNNN.
func FormatOrderNumber(date time.Time, suffix int) string {
	return fmt.Sprintf("%s-%s-%04d", orderNumberPrefix, date.Format("20060102"), suffix%10000)
}

// NumberGenerator draws date-stamped order numbers and checks them against the store.
type NumberGenerator struct {
	now         func() time.Time
	suffix      func() int
	maxAttempts int
}

// NewNumberGenerator returns a generator using wall clock time and a random 4-digit suffix.
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{
		now:         time.Now,
		suffix:      func() int { return rand.IntN(10000) },
		maxAttempts: orderNumberAttempts,
	}
}

// Next returns a number for which exists reports false.
func (g *NumberGenerator) Next(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	today := g.now()
	for i := 0; i < g.maxAttempts; i++ {
		candidate := FormatOrderNumber(today, g.suffix())
		if exists == nil {
			return candidate, nil
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check order number: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrOrderNumberExhausted
}
