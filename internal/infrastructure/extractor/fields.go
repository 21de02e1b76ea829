package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ReviewScanner/internal/domain"
)

// blockSnapshot is everything captured from one rendered review block. Field
// parsing happens on the snapshot, not the live page, so each parser is pure
// and a failure in one field never discards the record.
type blockSnapshot struct {
	HTML      string
	Text      string
	AriaLabel string
}

const contentSelector = ".wiI7pd"

var ratingExpr = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

var starTerms = []string{"estrella", "star"}

// UI chrome phrases that must never survive into the review text.
var chromePhrases = map[string]struct{}{
	"Me gusta":  {},
	"Compartir": {},
	"Más":       {},
	"Like":      {},
	"Share":     {},
	"More":      {},
	"Reply":     {},
	"Responder": {},
	"Response":  {},
	"Estrella":  {},
	"star":      {},
}

func parseBlock(snap blockSnapshot, businessName string, capturedAt time.Time) domain.ReviewRecord {
	author := parseAuthor(snap)

	var rating float64
	var text string

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err == nil {
		rating = parseRating(doc)
		text = parseText(doc, snap.Text, author)
	} else {
		text = reconstructText(snap.Text, author)
	}

	return domain.ReviewRecord{
		BusinessName: businessName,
		Username:     author,
		Rating:       rating,
		ReviewText:   text,
		Source:       domain.SourceTag,
		ScrapingDate: capturedAt.Format("2006-01-02 15:04:05"),
	}
}

func parseAuthor(snap blockSnapshot) string {
	if label := strings.TrimSpace(snap.AriaLabel); label != "" {
		return label
	}
	for _, line := range strings.Split(snap.Text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return "Unknown"
}

func parseRating(doc *goquery.Document) float64 {
	var rating float64

	doc.Find("[aria-label]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		label, _ := sel.Attr("aria-label")
		if !containsStarTerm(label) {
			return true
		}
		rating = parseRatingLabel(label)
		return false
	})

	return rating
}

// parseRatingLabel pulls the first decimal number out of a localized star
// label, accepting both "." and "," separators. No numeric token yields 0.
func parseRatingLabel(label string) float64 {
	match := ratingExpr.FindString(label)
	if match == "" {
		return 0
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return 0
	}

	if value < 0 {
		return 0
	}
	if value > 5 {
		return 5
	}
	return value
}

func containsStarTerm(label string) bool {
	lowered := strings.ToLower(label)
	for _, term := range starTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func parseText(doc *goquery.Document, renderedText, author string) string {
	if content := strings.TrimSpace(doc.Find(contentSelector).First().Text()); content != "" {
		return content
	}
	return reconstructText(renderedText, author)
}

// reconstructText rebuilds the review body from the block's rendered lines,
// dropping UI chrome and the author line when it duplicates the first one.
func reconstructText(renderedText, author string) string {
	var candidates []string
	for _, line := range strings.Split(renderedText, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) <= 2 {
			continue
		}
		if _, chrome := chromePhrases[trimmed]; chrome {
			continue
		}
		candidates = append(candidates, trimmed)
	}

	if len(candidates) == 0 {
		return ""
	}
	if candidates[0] == author {
		candidates = candidates[1:]
	}

	return strings.TrimSpace(strings.Join(candidates, " "))
}
