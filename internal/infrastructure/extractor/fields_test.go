package extractor

import (
	"testing"
	"time"
)

func TestParseRatingLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label string
		want  float64
	}{
		{"4,5 estrellas", 4.5},
		{"3 stars", 3.0},
		{"Valorado con 5 estrellas", 5.0},
		{"2.5 stars out of five", 2.5},
		{"no numeric token here", 0},
		{"", 0},
		{"9 stars", 5},
	}

	for _, tc := range cases {
		if got := parseRatingLabel(tc.label); got != tc.want {
			t.Fatalf("parseRatingLabel(%q) = %v, want %v", tc.label, got, tc.want)
		}
	}
}

func TestParseBlockPrefersContentElement(t *testing.T) {
	t.Parallel()

	snap := blockSnapshot{
		HTML: `<div>
			<span aria-label="4,5 estrellas"></span>
			<span class="wiI7pd">Excelente comida y servicio.</span>
		</div>`,
		Text:      "Maria Lopez\nHace 2 semanas\nExcelente comida y servicio.\nMe gusta\nCompartir",
		AriaLabel: "Maria Lopez",
	}

	record := parseBlock(snap, "Cafe Central", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	if record.Username != "Maria Lopez" {
		t.Fatalf("unexpected author: %q", record.Username)
	}
	if record.Rating != 4.5 {
		t.Fatalf("unexpected rating: %v", record.Rating)
	}
	if record.ReviewText != "Excelente comida y servicio." {
		t.Fatalf("unexpected text: %q", record.ReviewText)
	}
	if record.BusinessName != "Cafe Central" {
		t.Fatalf("unexpected business: %q", record.BusinessName)
	}
	if record.Source != "Google Maps" {
		t.Fatalf("unexpected source tag: %q", record.Source)
	}
	if record.ScrapingDate != "2026-03-01 12:00:00" {
		t.Fatalf("unexpected capture date: %q", record.ScrapingDate)
	}
}

func TestParseBlockReconstructsTextWithoutContentElement(t *testing.T) {
	t.Parallel()

	snap := blockSnapshot{
		HTML: `<div><span aria-label="3 stars"></span></div>`,
		Text: "John Doe\nGreat spot for breakfast.\nWould come again.\nLike\nShare\nMore",
	}

	record := parseBlock(snap, "Cafe Central", time.Now())

	if record.Username != "John Doe" {
		t.Fatalf("unexpected author: %q", record.Username)
	}
	if record.Rating != 3.0 {
		t.Fatalf("unexpected rating: %v", record.Rating)
	}
	want := "Great spot for breakfast. Would come again."
	if record.ReviewText != want {
		t.Fatalf("unexpected text: %q (want %q)", record.ReviewText, want)
	}
}

func TestParseBlockMissingFieldsKeepsRecord(t *testing.T) {
	t.Parallel()

	snap := blockSnapshot{HTML: "<div></div>", Text: "Anonymous reviewer"}

	record := parseBlock(snap, "Cafe Central", time.Now())

	if record.Rating != 0 {
		t.Fatalf("absent rating must yield 0, got %v", record.Rating)
	}
	if record.Username != "Anonymous reviewer" {
		t.Fatalf("unexpected author: %q", record.Username)
	}
	if record.ReviewText != "" {
		// Only the author line was rendered; reconstruction drops it.
		t.Fatalf("expected empty text for author-only block, got %q", record.ReviewText)
	}
}

func TestReconstructTextDropsDuplicateAuthorLine(t *testing.T) {
	t.Parallel()

	got := reconstructText("Jane Roe\nLovely place.\nShare", "Jane Roe")
	if got != "Lovely place." {
		t.Fatalf("unexpected reconstruction: %q", got)
	}
}
