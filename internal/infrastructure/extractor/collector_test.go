package extractor

import (
	"fmt"
	"testing"

	"ReviewScanner/internal/domain"
)

func TestCollectorDeduplicatesIdenticalBlocks(t *testing.T) {
	t.Parallel()

	col := newCollector(10, 5)

	// The same block re-rendered across three load iterations.
	for i := 0; i < 3; i++ {
		if col.admit("Maria\n5 estrellas\nBuen sitio") {
			col.append(domain.ReviewRecord{Username: "Maria"})
		}
	}

	if got := len(col.results()); got != 1 {
		t.Fatalf("identical rendered text must retain exactly one record, got %d", got)
	}
}

func TestCollectorRespectsLimit(t *testing.T) {
	t.Parallel()

	col := newCollector(3, 5)

	for i := 0; i < 10; i++ {
		if col.admit(fmt.Sprintf("review %d", i)) {
			col.append(domain.ReviewRecord{})
		}
	}

	if got := len(col.results()); got != 3 {
		t.Fatalf("len(results) must never exceed limit, got %d", got)
	}
	if !col.full() {
		t.Fatal("collector at limit must report full")
	}
}

func TestCollectorTerminatesOnStagnation(t *testing.T) {
	t.Parallel()

	col := newCollector(100, 5)
	if col.admit("only review") {
		col.append(domain.ReviewRecord{})
	}

	rounds := 0
	for {
		rounds++
		if col.endRound() {
			break
		}
		if rounds > 100 {
			t.Fatal("loop did not terminate after repeated stagnant rounds")
		}
	}

	// First round grows the count, then five stagnant rounds end the loop.
	if rounds != 6 {
		t.Fatalf("expected termination after 5 stagnant rounds, got %d total rounds", rounds)
	}
}

func TestCollectorStagnationResetsOnGrowth(t *testing.T) {
	t.Parallel()

	col := newCollector(100, 3)
	col.admit("a")
	col.append(domain.ReviewRecord{})
	col.endRound()

	// Two stagnant rounds, then growth again.
	if col.endRound() {
		t.Fatal("terminated too early")
	}
	if col.endRound() {
		t.Fatal("terminated too early")
	}
	col.admit("b")
	col.append(domain.ReviewRecord{})
	if col.endRound() {
		t.Fatal("growth must reset the stagnation counter")
	}
	if col.endRound() || col.endRound() {
		t.Fatal("counter must start over after growth")
	}
	if !col.endRound() {
		t.Fatal("expected termination after three fresh stagnant rounds")
	}
}
