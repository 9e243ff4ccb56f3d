package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Normalizer repairs mis-encoded Arabic, folds script variants and
// dialect tokens, and tokenizes with a stop-word filter. Normalize is
// idempotent and never fails: a decode error falls back to the input.
type Normalizer struct {
	dialect   map[string]string
	stopwords map[string]struct{}
}

var (
	rePunct  = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	reSpaces = regexp.MustCompile(`\s+`)
)

// NewNormalizer builds a normalizer from the vocabulary's dialect map
// and stop-word list (both folded so lookups match normalized tokens).
func NewNormalizer(sets *KeywordSets) *Normalizer {
	n := &Normalizer{
		dialect:   make(map[string]string, len(sets.DialectMap)),
		stopwords: make(map[string]struct{}, len(sets.Stopwords)),
	}
	for key, value := range sets.DialectMap {
		n.dialect[foldText(key)] = foldText(value)
	}
	for _, word := range sets.Stopwords {
		n.stopwords[foldText(word)] = struct{}{}
	}
	return n
}

func countArabicRunes(s string) int {
	count := 0
	for _, r := range s {
		if r >= 0x0600 && r <= 0x06FF {
			count++
		}
	}
	return count
}

// decodeLatin1UTF8 reinterprets the string's code points as latin-1
// bytes and decodes those bytes as UTF-8. Fails when any rune does not
// fit a byte or the bytes are not valid UTF-8.
func decodeLatin1UTF8(s string) (string, bool) {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return "", false
		}
		buf = append(buf, byte(r))
	}
	if !utf8.Valid(buf) {
		return "", false
	}
	return string(buf), true
}

// repairMojibake re-decodes up to 3 times, keeping a round only while it
// strictly increases the Arabic rune count. Clean text passes through.
func repairMojibake(s string) string {
	current := s
	for i := 0; i < 3; i++ {
		next, ok := decodeLatin1UTF8(current)
		if !ok || next == current {
			break
		}
		if countArabicRunes(next) > countArabicRunes(current) {
			current = next
			continue
		}
		break
	}
	return current
}

// normalizeDigits maps Arabic-Indic and Extended Arabic-Indic digits to ASCII
func normalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 0x0660 && r <= 0x0669:
			return '0' + (r - 0x0660)
		case r >= 0x06F0 && r <= 0x06F9:
			return '0' + (r - 0x06F0)
		}
		return r
	}, s)
}

// foldText lowercases, folds Arabic letter variants, strips diacritics
// and punctuation, and collapses whitespace.
func foldText(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case 'أ', 'إ', 'آ':
			return 'ا'
		case 'ى':
			return 'ي'
		case 'ة':
			return 'ه'
		case 'ؤ', 'ئ':
			return 'ء'
		case 'ـ': // tatweel
			return -1
		}
		if r >= 0x064B && r <= 0x0652 { // tashkeel
			return -1
		}
		return r
	}, s)
	s = rePunct.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Normalize runs the full pipeline: mojibake repair, digit
// normalization, canonical folding, dialect substitution.
func (n *Normalizer) Normalize(s string) string {
	folded := foldText(normalizeDigits(repairMojibake(s)))
	if folded == "" {
		return ""
	}
	parts := strings.Split(folded, " ")
	out := parts[:0]
	for _, part := range parts {
		if mapped, ok := n.dialect[part]; ok {
			part = mapped
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}

// Tokenize normalizes and splits, dropping stop words and tokens
// shorter than 2 runes.
func (n *Normalizer) Tokenize(s string) []string {
	normalized := n.Normalize(s)
	if normalized == "" {
		return nil
	}
	var tokens []string
	for _, part := range strings.Split(normalized, " ") {
		if utf8.RuneCountInString(part) < 2 {
			continue
		}
		if _, ok := n.stopwords[part]; ok {
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens
}
