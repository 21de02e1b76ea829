package extractor

import (
	"ReviewScanner/internal/domain"
	"ReviewScanner/pkg/fingerprint"
)

// collector accumulates records across incremental-load iterations. Identity
// is the fingerprint of each block's rendered text, since the provider assigns
// no stable external IDs. A stagnation counter terminates the loop once
// repeated load-more triggers stop producing unseen blocks.
type collector struct {
	limit       int
	maxStagnant int

	seen     map[string]struct{}
	records  []domain.ReviewRecord
	previous int
	stagnant int
}

func newCollector(limit, maxStagnant int) *collector {
	return &collector{
		limit:       limit,
		maxStagnant: maxStagnant,
		seen:        map[string]struct{}{},
	}
}

func (c *collector) full() bool {
	return len(c.records) >= c.limit
}

// admit reports whether a block with this rendered text should be parsed.
// Admitted fingerprints are remembered so re-rendered blocks stay deduplicated.
func (c *collector) admit(renderedText string) bool {
	if c.full() {
		return false
	}

	fp := fingerprint.Content(renderedText)
	if _, dup := c.seen[fp]; dup {
		return false
	}

	c.seen[fp] = struct{}{}
	return true
}

func (c *collector) append(record domain.ReviewRecord) {
	c.records = append(c.records, record)
}

// endRound closes one load iteration and reports whether the loop should stop
// because content stagnated for the configured number of rounds.
func (c *collector) endRound() bool {
	if len(c.records) == c.previous {
		c.stagnant++
		return c.stagnant >= c.maxStagnant
	}

	c.stagnant = 0
	c.previous = len(c.records)
	return false
}

func (c *collector) results() []domain.ReviewRecord {
	if c.records == nil {
		return []domain.ReviewRecord{}
	}
	return c.records
}
