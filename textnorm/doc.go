// Package textnorm provides multilingual text normalization for French and
// Arabic queries and documents: language detection, accent and diacritic
// folding, tokenization, unit-aware price and speed parsing, beneficiary
// vocabulary, and a bilingual synonym table.
//
// Every function in this package is pure. Parsers report absence with a
// boolean instead of returning errors, so retrieval never fails on
// unexpected input text.
package textnorm
