package billing

import (
	"fmt"
	"math/rand"
	"regexp"
	"sync"
	"time"
)

// IdentifierPrefix starts every outpatient bill number.
const IdentifierPrefix = "OPB"

// identifierSpace is the exclusive upper bound of the random suffix.
const identifierSpace = 10000

var identifierPattern = regexp.MustCompile(`^OPB-\d{4}-\d{2}-\d{2}-\d{5}$`)

// GenerateBillIdentifier formats a bill number as OPB-YYYY-MM-DD-NNNNN where
// NNNNN is a zero-padded random value in [0, 9999].
// The value is not unique on its own; callers must check it against storage.
func GenerateBillIdentifier(date time.Time, rnd *rand.Rand) string {
	var n int
	if rnd != nil {
		n = rnd.Intn(identifierSpace)
	} else {
		n = rand.Intn(identifierSpace)
	}
	return fmt.Sprintf("%s-%s-%05d", IdentifierPrefix, date.Format("2006-01-02"), n)
}

// IsBillIdentifier reports whether s has the bill number format.
func IsBillIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// IdentifierGenerator draws bill numbers from a private random source.
// It is safe for concurrent use.
type IdentifierGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewIdentifierGenerator creates a generator seeded with seed.
func NewIdentifierGenerator(seed int64) *IdentifierGenerator {
	return &IdentifierGenerator{rnd: rand.New(rand.NewSource(seed))}
}

// Next returns a bill number for the given date.
func (g *IdentifierGenerator) Next(date time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GenerateBillIdentifier(date, g.rnd)
}
