package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/visionafrica/debate-portal/pkg/config"
	appErrors "github.com/visionafrica/debate-portal/pkg/errors"
)

const (
	defaultRegNumberPrefix = "VARSDB"
	defaultRegNumberWidth  = 4
)

type registrationSequence interface {
	NextRegistrationNumber(ctx context.Context) (int64, error)
}

// RegNumberGenerator issues registration numbers of the form PREFIX-YYYY-NNNN
// from an atomic store sequence.
type RegNumberGenerator struct {
	seq    registrationSequence
	prefix string
	width  int
	now    func() time.Time
}

// NewRegNumberGenerator constructs a generator; empty settings fall back to VARSDB and width 4.
func NewRegNumberGenerator(seq registrationSequence, cfg config.RegNumberConfig) *RegNumberGenerator {
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = defaultRegNumberPrefix
	}
	width := cfg.Width
	if width <= 0 {
		width = defaultRegNumberWidth
	}
	return &RegNumberGenerator{seq: seq, prefix: prefix, width: width, now: time.Now}
}

// Next draws the next sequence value and formats it with the current UTC year.
func (g *RegNumberGenerator) Next(ctx context.Context) (string, error) {
	n, err := g.seq.NextRegistrationNumber(ctx)
	if err != nil {
		return "", appErrors.Internal(err, "failed to generate registration number")
	}
	if n < 1 {
		return "", appErrors.Internal(fmt.Errorf("sequence returned %d", n), "failed to generate registration number")
	}
	return FormatRegNumber(g.prefix, g.now().UTC().Year(), n, g.width), nil
}

// FormatRegNumber renders n zero padded to width. Wider numbers are never truncated.
func FormatRegNumber(prefix string, year int, n int64, width int) string {
	return fmt.Sprintf("%s-%04d-%0*d", prefix, year, width, n)
}
