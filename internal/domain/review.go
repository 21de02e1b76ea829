package domain

import "time"

// SourceTag marks where review records are captured from.
const SourceTag = "Google Maps"

// UnknownBusiness is the sentinel used when no title selector matches.
const UnknownBusiness = "Unknown Business"

// ReviewRecord is a single customer review captured from a listing page.
// Fields are filled best-effort during extraction; a record with an empty
// text or a zero rating is still valid.
type ReviewRecord struct {
	BusinessName string  `json:"business_name"`
	Username     string  `json:"username"`
	Rating       float64 `json:"rating"`
	ReviewText   string  `json:"review_text"`
	Source       string  `json:"source"`
	ScrapingDate string  `json:"scraping_date"`

	Sentiment  string  `json:"sentiment,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Sentiment labels produced by the classifier collaborator.
const (
	SentimentPositive = "POS"
	SentimentNegative = "NEG"
	SentimentNeutral  = "NEU"
	SentimentError    = "ERROR"
)

// Classification is the output of the sentiment collaborator for one text.
type Classification struct {
	Label      string
	Confidence float64
}

// ServedFrom tells which tier produced an acquisition result.
type ServedFrom string

const (
	ServedFresh           ServedFrom = "FRESH"
	ServedCache           ServedFrom = "CACHE"
	ServedFallbackSameKey ServedFrom = "FALLBACK_SAME_KEY"
	ServedFallbackAny     ServedFrom = "FALLBACK_ANY"
)

// SentimentSummary counts reviews per sentiment bucket. Classifier errors are
// tracked separately on the result and never land in one of the three buckets.
type SentimentSummary struct {
	Positive int `json:"POS"`
	Negative int `json:"NEG"`
	Neutral  int `json:"NEU"`
}

// AcquisitionResult is the stable output of one pipeline run. It is built once
// by the normalizer and persisted verbatim to the cache store.
type AcquisitionResult struct {
	BusinessName     string           `json:"business_name"`
	TotalReviews     int              `json:"total_reviews"`
	SentimentSummary SentimentSummary `json:"sentiment_summary"`
	AverageRating    float64          `json:"average_rating"`
	Reviews          []ReviewRecord   `json:"reviews"`
	ClassifierErrors int              `json:"classifier_errors,omitempty"`

	ServedFrom   ServedFrom `json:"-"`
	Cached       bool       `json:"cached"`
	FallbackMode bool       `json:"fallback_mode,omitempty"`
}

// CacheEntry wraps a persisted AcquisitionResult keyed by the fingerprint of
// the normalized request URL. At most one entry exists per key.
type CacheEntry struct {
	Key          string
	TargetURL    string
	BusinessName string
	Payload      []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Cookie mirrors one browser cookie inside a session artifact.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// SessionState is the opaque authentication artifact restored into a browser
// context. It is read and written as a single unit; partial or corrupt state
// is treated as absent.
type SessionState struct {
	Cookies []Cookie `json:"cookies"`
}
