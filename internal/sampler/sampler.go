// Package sampler reduces long documents to a bounded context window.
//
// The output always has the same shape: an introduction slice followed by
// one chunk from each of N equal zones of the remaining text. Chunk
// positions are random within their zone, so repeated calls cover
// different parts of the document.
package sampler

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Config controls sampling sizes. Sizes are in runes.
type Config struct {
	// Budget is the maximum text size passed through unchanged.
	Budget int

	// IntroSize is the leading slice always kept (titles, abstracts).
	IntroSize int

	// Zones is the number of equal partitions of the remainder.
	Zones int
}

// DefaultConfig returns the standard 25k budget with a 5k introduction and
// three zones.
func DefaultConfig() Config {
	return Config{
		Budget:    25000,
		IntroSize: 5000,
		Zones:     3,
	}
}

// ChunkSize is the fixed size drawn from each zone.
func (c Config) ChunkSize() int {
	if c.Zones <= 0 {
		return 0
	}
	return (c.Budget - c.IntroSize) / c.Zones
}

// Validate checks the sizes are usable.
func (c Config) Validate() error {
	switch {
	case c.Budget <= 0:
		return fmt.Errorf("sampler budget must be positive")
	case c.IntroSize < 0 || c.IntroSize >= c.Budget:
		return fmt.Errorf("sampler intro size must be in [0, budget)")
	case c.Zones <= 0:
		return fmt.Errorf("sampler zones must be positive")
	}
	return nil
}

// Sampler extracts bounded samples from text.
type Sampler struct {
	config Config
	rng    *rand.Rand
}

// New creates a Sampler. A nil rng uses a randomly seeded source.
func New(cfg Config, rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{config: cfg, rng: rng}
}

// IntroLabel and SectionLabel head the sections of a sampled document.
const IntroLabel = "[Introduction]"

// SectionLabel returns the header for zone i (1-based) of n.
func SectionLabel(i, n int) string {
	return fmt.Sprintf("[Section %d of %d]", i, n)
}

// Sample returns text unchanged when it fits the budget, otherwise an
// introduction and one chunk per zone joined with section labels.
func (s *Sampler) Sample(text string) string {
	runes := []rune(text)
	if len(runes) <= s.config.Budget {
		return text
	}

	intro := runes[:s.config.IntroSize]
	rest := runes[s.config.IntroSize:]

	zones := s.config.Zones
	zoneLen := len(rest) / zones
	chunk := min(s.config.ChunkSize(), zoneLen)

	var b strings.Builder
	b.WriteString(IntroLabel)
	b.WriteString("\n")
	b.WriteString(string(intro))

	for i := range zones {
		zoneStart := i * zoneLen
		// Start is chosen so the chunk ends at or before the zone boundary.
		offset := 0
		if slack := zoneLen - chunk; slack > 0 {
			offset = s.rng.IntN(slack + 1)
		}
		start := zoneStart + offset

		b.WriteString("\n\n")
		b.WriteString(SectionLabel(i+1, zones))
		b.WriteString("\n")
		b.WriteString(string(rest[start : start+chunk]))
	}

	return b.String()
}
