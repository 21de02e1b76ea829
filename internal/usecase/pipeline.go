package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/normalizer"
	"ReviewScanner/internal/ports"
	"ReviewScanner/pkg/fingerprint"
)

// ErrEmptyResult is the single user-visible failure: live extraction produced
// nothing and no fallback tier had an entry to serve.
var ErrEmptyResult = errors.New("no reviews found and no cached fallback available")

// Request describes one acquisition run.
type Request struct {
	URL          string
	Limit        int
	ForceRefresh bool
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Extractor  ports.Extractor
	Classifier ports.Classifier
	Store      ports.CacheStore
	Logger     *slog.Logger
}

// Pipeline composes the cache tier, the extraction engine, and sentiment
// enrichment into one request-scoped operation. One call is one sequential
// flow owning one browser session; concurrent calls for the same key are not
// serialized here, a calling layer wanting that must add it.
type Pipeline struct {
	extractor  ports.Extractor
	classifier ports.Classifier
	store      ports.CacheStore
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		store:      deps.Store,
		logger:     deps.Logger,
	}
}

// Analyze runs the cache→scrape→fallback chain for one target URL and returns
// the enriched result, tagged with the tier that produced it.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (domain.AcquisitionResult, error) {
	key := fingerprint.Key(req.URL)
	logger := p.runLogger(key)

	if !req.ForceRefresh {
		if result, ok := p.lookup(ctx, logger, key); ok {
			logger.Info("serving from cache")
			result.ServedFrom = domain.ServedCache
			result.Cached = true
			return result, nil
		}
	}

	logger.Info("scraping fresh data", "url", req.URL, "limit", req.Limit)
	records, err := p.extractor.Extract(ctx, req.URL, req.Limit)
	if err != nil {
		// Extraction faults degrade into the fallback chain, they are never
		// surfaced directly.
		logger.Warn("extraction failed", "error", err)
		records = nil
	}

	if len(records) == 0 {
		logger.Warn("no reviews obtained from live extraction", "url", req.URL)
		return p.fallback(ctx, logger, key)
	}

	records = normalizer.Enrich(ctx, records, p.classifier)
	result := normalizer.Build(records)
	result.ServedFrom = domain.ServedFresh

	p.persist(ctx, logger, key, req.URL, result)

	return result, nil
}

// lookup decodes the cached payload for a key; a corrupt payload is treated
// as a miss.
func (p *Pipeline) lookup(ctx context.Context, logger *slog.Logger, key string) (domain.AcquisitionResult, bool) {
	entry, found, err := p.store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache lookup failed", "error", err)
		return domain.AcquisitionResult{}, false
	}
	if !found {
		return domain.AcquisitionResult{}, false
	}

	var result domain.AcquisitionResult
	if err := json.Unmarshal(entry.Payload, &result); err != nil {
		logger.Warn("cached payload corrupt, ignoring", "error", err)
		return domain.AcquisitionResult{}, false
	}

	return result, true
}

// fallback serves the prior result for the same key, then any stored result,
// before giving up with ErrEmptyResult.
func (p *Pipeline) fallback(ctx context.Context, logger *slog.Logger, key string) (domain.AcquisitionResult, error) {
	if result, ok := p.lookup(ctx, logger, key); ok {
		logger.Info("serving last known result for this target")
		result.ServedFrom = domain.ServedFallbackSameKey
		result.Cached = true
		result.FallbackMode = true
		return result, nil
	}

	entry, found, err := p.store.Any(ctx)
	if err != nil {
		logger.Warn("fallback scan failed", "error", err)
	}
	if found {
		var result domain.AcquisitionResult
		if err := json.Unmarshal(entry.Payload, &result); err == nil {
			logger.Info("serving substitute result", "business", entry.BusinessName)
			result.ServedFrom = domain.ServedFallbackAny
			result.Cached = true
			result.FallbackMode = true
			return result, nil
		}
		logger.Warn("substitute payload corrupt, ignoring", "error", err)
	}

	return domain.AcquisitionResult{}, ErrEmptyResult
}

// persist upserts the fresh result. Durability is best-effort: a failed write
// is logged and the in-memory result is still returned to the caller.
func (p *Pipeline) persist(ctx context.Context, logger *slog.Logger, key, targetURL string, result domain.AcquisitionResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		logger.Warn("encode result for cache failed", "error", err)
		return
	}

	err = p.store.Upsert(ctx, domain.CacheEntry{
		Key:          key,
		TargetURL:    targetURL,
		BusinessName: result.BusinessName,
		Payload:      payload,
	})
	if err != nil {
		logger.Warn("cache persist failed", "error", fmt.Errorf("upsert %s: %w", key, err))
		return
	}

	logger.Debug("result cached", "business", result.BusinessName)
}

func (p *Pipeline) runLogger(key string) *slog.Logger {
	logger := p.logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("run", uuid.NewString(), "key", key)
}
