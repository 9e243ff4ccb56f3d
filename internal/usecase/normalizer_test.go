package usecase

import (
	"reflect"
	"testing"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(DefaultKeywordSets())
}

func TestNormalizeFoldsArabicVariants(t *testing.T) {
	n := newTestNormalizer()

	got := n.Normalize("أريد بيتزا")
	if got != "اريد بيتزا" {
		t.Fatalf("Normalize() = %q, want %q", got, "اريد بيتزا")
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := newTestNormalizer()

	inputs := []string{
		"بريد برغر رخيص",
		"I want a CHEAP burger!!!",
		"أريد وجبة عائلية ٢٠٠٠٠",
	}
	for _, input := range inputs {
		once := n.Normalize(input)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalizeArabicIndicDigits(t *testing.T) {
	n := newTestNormalizer()

	got := n.Normalize("٢٠٠٠٠ دينار")
	if got != "20000 دينار" {
		t.Fatalf("Normalize() = %q, want %q", got, "20000 دينار")
	}
}

func TestNormalizeDialectMapping(t *testing.T) {
	n := newTestNormalizer()

	// "بريد" is Iraqi dialect for "اريد"
	got := n.Normalize("بريد برغر")
	if got != "اريد برغر" {
		t.Fatalf("Normalize() = %q, want %q", got, "اريد برغر")
	}
}

func TestRepairMojibakeRestoresArabic(t *testing.T) {
	// "برغر" encoded as UTF-8 then misread as latin-1
	mojibake := "Ø¨Ø±ØºØ±"
	got := repairMojibake(mojibake)
	if got != "برغر" {
		t.Fatalf("repairMojibake(%q) = %q, want %q", mojibake, got, "برغر")
	}
}

func TestRepairMojibakeLeavesCleanTextAlone(t *testing.T) {
	for _, input := range []string{"برغر رخيص", "cheap burger", "Crème brûlée"} {
		if got := repairMojibake(input); got != input {
			t.Errorf("repairMojibake(%q) = %q, want unchanged", input, got)
		}
	}
}

func TestTokenizeDropsStopwordsAndShortTokens(t *testing.T) {
	n := newTestNormalizer()

	got := n.Tokenize("اريد برغر من مطعم")
	// "اريد" and "من" are stop words
	want := []string{"برغر", "مطعم"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeEmptyInput(t *testing.T) {
	n := newTestNormalizer()

	if got := n.Tokenize("   !!! "); got != nil {
		t.Fatalf("Tokenize() = %v, want nil", got)
	}
}
