package fingerprint

import "testing"

func TestKeyIgnoresIncidentalFormatting(t *testing.T) {
	t.Parallel()

	base := Key("https://maps.example.com/place/Cafe?hl=es&b=2")

	variants := []string{
		"HTTPS://MAPS.EXAMPLE.COM/place/Cafe?hl=es&b=2",
		"https://maps.example.com/place/Cafe/?hl=es&b=2",
		"https://maps.example.com/place/Cafe?b=2&hl=es",
		"  https://maps.example.com/place/Cafe?hl=es&b=2  ",
	}

	for _, v := range variants {
		if got := Key(v); got != base {
			t.Fatalf("variant %q produced different key %s (want %s)", v, got, base)
		}
	}
}

func TestKeyDistinguishesDifferentTargets(t *testing.T) {
	t.Parallel()

	a := Key("https://maps.example.com/place/Cafe")
	b := Key("https://maps.example.com/place/Bar")
	if a == b {
		t.Fatalf("different URLs must not collide: %s", a)
	}
}

func TestNormalizeKeepsOpaqueInput(t *testing.T) {
	t.Parallel()

	if got := Normalize("not a url at all"); got != "not a url at all" {
		t.Fatalf("unexpected normalization of opaque input: %q", got)
	}
}

func TestContentTrimsWhitespace(t *testing.T) {
	t.Parallel()

	if Content("review body\n") != Content("review body") {
		t.Fatal("surrounding whitespace must not change the fingerprint")
	}
	if Content("review body") == Content("other body") {
		t.Fatal("different text must not collide")
	}
}
