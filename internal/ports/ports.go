package ports

import (
	"context"

	"ReviewScanner/internal/domain"
)

// Extractor pulls review records from a live listing page. An empty slice is a
// valid, non-error outcome meaning "no data obtainable now".
type Extractor interface {
	Extract(ctx context.Context, targetURL string, limit int) ([]domain.ReviewRecord, error)
}

// Classifier assigns a sentiment label to one review text. Implementations
// absorb model failures into the ERROR label instead of returning an error.
type Classifier interface {
	Classify(ctx context.Context, text string) domain.Classification
}

// CacheStore persists acquisition results keyed by request fingerprint.
type CacheStore interface {
	Get(ctx context.Context, key string) (domain.CacheEntry, bool, error)
	Upsert(ctx context.Context, entry domain.CacheEntry) error
	// Any returns an arbitrary existing entry, used only as the last resort
	// fallback tier. Implementations should prefer the most recently updated.
	Any(ctx context.Context) (domain.CacheEntry, bool, error)
}

// SessionStore restores and persists browser authentication state. Load
// reports absence (never an error) for missing or corrupt artifacts.
type SessionStore interface {
	Load() (domain.SessionState, bool)
	Save(state domain.SessionState) error
}
