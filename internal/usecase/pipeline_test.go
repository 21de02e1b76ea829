package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"ReviewScanner/internal/domain"
	"ReviewScanner/pkg/fingerprint"
)

type fakeExtractor struct {
	records []domain.ReviewRecord
	err     error
	calls   int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, _ int) ([]domain.ReviewRecord, error) {
	f.calls++
	return f.records, f.err
}

type fakeClassifier struct{}

func (fakeClassifier) Classify(_ context.Context, text string) domain.Classification {
	if text == "awful" {
		return domain.Classification{Label: domain.SentimentNegative, Confidence: 0.9}
	}
	return domain.Classification{Label: domain.SentimentPositive, Confidence: 0.9}
}

type fakeStore struct {
	entries    map[string]domain.CacheEntry
	upserts    int
	failUpsert bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]domain.CacheEntry{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (domain.CacheEntry, bool, error) {
	entry, ok := f.entries[key]
	return entry, ok, nil
}

func (f *fakeStore) Upsert(_ context.Context, entry domain.CacheEntry) error {
	f.upserts++
	if f.failUpsert {
		return errors.New("disk full")
	}
	f.entries[entry.Key] = entry
	return nil
}

func (f *fakeStore) Any(_ context.Context) (domain.CacheEntry, bool, error) {
	for _, entry := range f.entries {
		return entry, true, nil
	}
	return domain.CacheEntry{}, false, nil
}

func testRecords() []domain.ReviewRecord {
	return []domain.ReviewRecord{
		{BusinessName: "Cafe Central", Username: "a", Rating: 5, ReviewText: "great", Source: domain.SourceTag},
		{BusinessName: "Cafe Central", Username: "b", Rating: 4, ReviewText: "nice", Source: domain.SourceTag},
		{BusinessName: "Cafe Central", Username: "c", Rating: 1, ReviewText: "awful", Source: domain.SourceTag},
	}
}

func newPipeline(extractor *fakeExtractor, store *fakeStore) *Pipeline {
	return NewPipeline(PipelineDeps{
		Extractor:  extractor,
		Classifier: fakeClassifier{},
		Store:      store,
	})
}

func TestFreshAcquisitionLifecycle(t *testing.T) {
	t.Parallel()

	const target = "https://maps.example.com/place/Cafe"
	extractor := &fakeExtractor{records: testRecords()}
	store := newFakeStore()
	pipeline := newPipeline(extractor, store)
	ctx := context.Background()

	// First request: empty store, successful extraction.
	first, err := pipeline.Analyze(ctx, Request{URL: target, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, domain.ServedFresh, first.ServedFrom)
	require.False(t, first.Cached)
	require.Equal(t, 3, first.TotalReviews)
	require.Equal(t, "Cafe Central", first.BusinessName)
	require.Equal(t, 2, first.SentimentSummary.Positive)
	require.Equal(t, 1, first.SentimentSummary.Negative)
	require.Len(t, store.entries, 1)
	require.Contains(t, store.entries, fingerprint.Key(target))

	// Second request: cache short-circuits extraction entirely.
	second, err := pipeline.Analyze(ctx, Request{URL: target})
	require.NoError(t, err)
	require.Equal(t, domain.ServedCache, second.ServedFrom)
	require.True(t, second.Cached)
	require.Equal(t, first.Reviews, second.Reviews)
	require.Equal(t, 1, extractor.calls, "cache hit must not trigger extraction")

	// Third request: forced refresh now yields nothing live.
	extractor.records = nil
	third, err := pipeline.Analyze(ctx, Request{URL: target, ForceRefresh: true})
	require.NoError(t, err)
	require.Equal(t, domain.ServedFallbackSameKey, third.ServedFrom)
	require.True(t, third.Cached)
	require.True(t, third.FallbackMode)
	require.Equal(t, first.Reviews, third.Reviews)
	require.Equal(t, first.TotalReviews, third.TotalReviews)
	require.Equal(t, 2, extractor.calls)
}

func TestCacheKeyIgnoresURLFormatting(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{records: testRecords()}
	store := newFakeStore()
	pipeline := newPipeline(extractor, store)
	ctx := context.Background()

	_, err := pipeline.Analyze(ctx, Request{URL: "https://maps.example.com/place/Cafe?hl=es"})
	require.NoError(t, err)

	result, err := pipeline.Analyze(ctx, Request{URL: "HTTPS://MAPS.EXAMPLE.COM/place/Cafe/?hl=es"})
	require.NoError(t, err)
	require.Equal(t, domain.ServedCache, result.ServedFrom)
	require.Equal(t, 1, extractor.calls)
}

func TestFallbackAnyServesSubstitute(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{records: testRecords()}
	store := newFakeStore()
	pipeline := newPipeline(extractor, store)
	ctx := context.Background()

	// Seed the store through a run for a different target.
	_, err := pipeline.Analyze(ctx, Request{URL: "https://maps.example.com/place/Other"})
	require.NoError(t, err)

	extractor.records = nil
	result, err := pipeline.Analyze(ctx, Request{URL: "https://maps.example.com/place/Never-Seen"})
	require.NoError(t, err)
	require.Equal(t, domain.ServedFallbackAny, result.ServedFrom)
	require.True(t, result.FallbackMode)
	require.Equal(t, "Cafe Central", result.BusinessName)
}

func TestEmptyResultWhenNoFallbackExists(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{}
	pipeline := newPipeline(extractor, newFakeStore())

	_, err := pipeline.Analyze(context.Background(), Request{URL: "https://maps.example.com/place/Cafe"})
	require.ErrorIs(t, err, ErrEmptyResult)
}

func TestExtractionErrorDegradesToFallback(t *testing.T) {
	t.Parallel()

	const target = "https://maps.example.com/place/Cafe"
	extractor := &fakeExtractor{records: testRecords()}
	store := newFakeStore()
	pipeline := newPipeline(extractor, store)
	ctx := context.Background()

	_, err := pipeline.Analyze(ctx, Request{URL: target})
	require.NoError(t, err)

	extractor.records = nil
	extractor.err = errors.New("browser crashed")
	result, err := pipeline.Analyze(ctx, Request{URL: target, ForceRefresh: true})
	require.NoError(t, err, "extractor faults must degrade, not surface")
	require.Equal(t, domain.ServedFallbackSameKey, result.ServedFrom)
}

func TestPersistFailureStillReturnsResult(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{records: testRecords()}
	store := newFakeStore()
	store.failUpsert = true
	pipeline := newPipeline(extractor, store)

	result, err := pipeline.Analyze(context.Background(), Request{URL: "https://maps.example.com/place/Cafe"})
	require.NoError(t, err, "a failed cache write must not unwind a successful acquisition")
	require.Equal(t, domain.ServedFresh, result.ServedFrom)
	require.Equal(t, 3, result.TotalReviews)
	require.Equal(t, 1, store.upserts)
}
