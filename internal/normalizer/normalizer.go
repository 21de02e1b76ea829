package normalizer

import (
	"context"
	"math"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/ports"
)

// Enrich attaches sentiment output to each record, preserving order. The
// classifier never fails; model trouble surfaces as the ERROR label.
func Enrich(ctx context.Context, records []domain.ReviewRecord, classifier ports.Classifier) []domain.ReviewRecord {
	if classifier == nil {
		return records
	}

	enriched := make([]domain.ReviewRecord, len(records))
	for i, record := range records {
		result := classifier.Classify(ctx, record.ReviewText)
		record.Sentiment = result.Label
		record.Confidence = round(result.Confidence, 4)
		enriched[i] = record
	}
	return enriched
}

// Build shapes enriched records into the stable output schema: total count,
// mean of present ratings, and sentiment counts with classifier errors kept
// out of the three sentiment buckets.
func Build(records []domain.ReviewRecord) domain.AcquisitionResult {
	result := domain.AcquisitionResult{
		BusinessName: domain.UnknownBusiness,
		TotalReviews: len(records),
		Reviews:      records,
	}
	if len(records) > 0 {
		result.BusinessName = records[0].BusinessName
	}

	var ratingSum float64
	var rated int
	for _, record := range records {
		if record.Rating > 0 {
			ratingSum += record.Rating
			rated++
		}

		switch record.Sentiment {
		case domain.SentimentPositive:
			result.SentimentSummary.Positive++
		case domain.SentimentNegative:
			result.SentimentSummary.Negative++
		case domain.SentimentNeutral:
			result.SentimentSummary.Neutral++
		case domain.SentimentError:
			result.ClassifierErrors++
		}
	}

	if rated > 0 {
		result.AverageRating = round(ratingSum/float64(rated), 2)
	}

	return result
}

func round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
