package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

// Language hints returned by DetectLang.
const (
	LangArabic = "ar"
	LangFrench = "fr"
	LangMixed  = "mixed"
)

var (
	arabicDiacritics = regexp.MustCompile(`[\x{064B}-\x{065F}\x{0670}]`)
	wordPattern      = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// accentFolder maps accented Latin characters to their base letters.
// Used for matching only; display text keeps its accents.
var accentFolder = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a", "á", "a", "ã", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i", "í", "i", "ì", "i",
	"ô", "o", "ö", "o", "ó", "o", "ò", "o",
	"ù", "u", "û", "u", "ü", "u", "ú", "u",
	"ç", "c", "ÿ", "y", "œ", "oe", "æ", "ae",
)

// arabicFolder canonicalizes Arabic letter variants: alef forms collapse
// to bare alef, final yaa to yaa, taa marbouta to haa, tatweel removed.
var arabicFolder = strings.NewReplacer(
	"أ", "ا", "إ", "ا", "آ", "ا", "ٱ", "ا",
	"ى", "ي",
	"ة", "ه",
	"ـ", "",
)

func isArabicRune(r rune) bool {
	switch {
	case r >= 0x0600 && r <= 0x06FF,
		r >= 0x0750 && r <= 0x077F,
		r >= 0x08A0 && r <= 0x08FF,
		r >= 0xFB50 && r <= 0xFDFF,
		r >= 0xFE70 && r <= 0xFEFF:
		return true
	}
	return false
}

// DetectLang classifies text by the ratio of Arabic letters among all
// letters: above 0.7 Arabic, below 0.3 French, otherwise mixed.
// Text without letters defaults to French.
func DetectLang(text string) string {
	var letters, arabic int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if isArabicRune(r) {
			arabic++
		}
	}
	if letters == 0 {
		return LangFrench
	}
	ratio := float64(arabic) / float64(letters)
	switch {
	case ratio > 0.7:
		return LangArabic
	case ratio < 0.3:
		return LangFrench
	}
	return LangMixed
}

// NormalizeArabic strips diacritics and tatweel and canonicalizes letter
// variants. Latin fragments embedded in the text (acronyms like "4G")
// pass through lowercased.
func NormalizeArabic(text string) string {
	text = arabicDiacritics.ReplaceAllString(text, "")
	text = arabicFolder.Replace(text)
	return strings.ToLower(strings.TrimSpace(text))
}

// NormalizeFrench lowercases and trims, preserving accents, hyphens and
// apostrophes so displayed text stays readable.
func NormalizeFrench(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Normalize applies the language-appropriate normalization. An empty
// langHint triggers detection; mixed text gets both passes.
func Normalize(text, langHint string) string {
	if langHint == "" {
		langHint = DetectLang(text)
	}
	switch langHint {
	case LangArabic:
		return NormalizeArabic(text)
	case LangMixed:
		return NormalizeArabic(NormalizeFrench(text))
	}
	return NormalizeFrench(text)
}

// Fold lowercases and removes French accents. Matching-side counterpart
// of Normalize; index terms and query terms go through the same fold.
func Fold(text string) string {
	return accentFolder.Replace(strings.ToLower(text))
}

// Tokenize splits text on non-word boundaries and drops single-character
// tokens unless they are digits. Latin acronyms inside Arabic text
// survive as their own tokens.
func Tokenize(text string) []string {
	words := wordPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		runes := []rune(w)
		if len(runes) == 1 && !unicode.IsDigit(runes[0]) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// TokenizeFolded folds then tokenizes. This is the canonical token form
// shared by the sparse index, the rule router and the signature miner.
func TokenizeFolded(text string) []string {
	return Tokenize(Fold(NormalizeArabic(text)))
}
