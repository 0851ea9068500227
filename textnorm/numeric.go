package textnorm

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	periodQualifier = regexp.MustCompile(`/?\s*(mois|month|mensuel|an|année|annee)\b.*`)
	digitGroup      = regexp.MustCompile(`\d[\d\s]*`)
	decimalNumber   = regexp.MustCompile(`[\d.,]+`)
	speedUnit       = regexp.MustCompile(`(?i)\b(gbps|gbit/?s?|gb/s|giga|mbps|mbit/?s?|mb/s|méga|mega|kbps|kbit/?s?)\b`)
	pricePattern    = regexp.MustCompile(`(?i)(\d[\d\s]*)\s*(?:da\b|dinars?\b|دج)`)
	speedPattern    = regexp.MustCompile(`(?i)([\d.,]+)\s*(gbps|gbit/?s?|gb/s|giga|mbps|mbit/?s?|mb/s|méga|mega|kbps|kbit/?s?)`)
)

// Tariffs and speeds that actually occur in the corpus. Parsed values
// close to one of these are snapped to it to absorb extraction noise.
var (
	commonPrices = []int{500, 999, 1000, 1099, 1100, 1200, 1599, 1600, 2000, 2099, 2599, 3200, 4100, 6500}
	commonSpeeds = []float64{10, 15, 20, 30, 50, 60, 100, 120, 240, 300, 500, 1000, 1200, 1500}
)

// ParsePrice extracts a monthly price in dinars from a raw tariff cell.
// "gratuit" (and its Arabic equivalent) parses as zero. Trailing period
// qualifiers such as "/mois" are ignored, and digit groups may contain
// spaces ("1 100 DA"). Returns false when no amount is present.
func ParsePrice(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	lower := strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(lower, "gratuit") || strings.Contains(lower, "مجان") {
		return 0, true
	}
	lower = periodQualifier.ReplaceAllString(lower, "")
	m := digitGroup.FindString(lower)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m, " ", ""))
	if err != nil {
		return 0, false
	}
	return v, true
}

// speedMultiplier converts a recognized unit token to Mbps.
func speedMultiplier(unit string) float64 {
	switch {
	case strings.HasPrefix(unit, "g"):
		return 1000
	case strings.HasPrefix(unit, "k"):
		return 0.001
	}
	return 1
}

// assumeGigabitBelowTen is the unit policy for bare numbers: values
// under 10 are read as Gbps, everything else as Mbps. A "1.5" cell means
// 1.5 Gbps in this corpus, but the threshold is a heuristic and known to
// mis-read exotic values; keep the assumption in this one place.
func assumeGigabitBelowTen(v float64) float64 {
	if v < 10 {
		return v * 1000
	}
	return v
}

// ParseSpeed extracts a connection speed in Mbps from a raw cell.
// Recognizes Gbps/Mbps/Kbps spellings with comma or dot decimals.
// Unit-less values go through assumeGigabitBelowTen. Returns false when
// no number is present.
func ParseSpeed(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	m := decimalNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	unit := speedUnit.FindString(s)
	if unit == "" {
		return assumeGigabitBelowTen(v), true
	}
	return v * speedMultiplier(strings.ToLower(unit)), true
}

// SnapPrice snaps a parsed price to the closest known tariff when it is
// within 10% of it.
func SnapPrice(v int) int {
	best, bestDiff := v, -1.0
	for _, c := range commonPrices {
		diff := abs(float64(v - c))
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = c, diff
		}
	}
	if v != 0 && bestDiff >= 0 && bestDiff/float64(v) <= 0.1 {
		return best
	}
	return v
}

// SnapSpeed snaps a parsed speed to the closest known plan speed when it
// is within 10% of it.
func SnapSpeed(v float64) float64 {
	best, bestDiff := v, -1.0
	for _, c := range commonSpeeds {
		diff := abs(v - c)
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = c, diff
		}
	}
	if v != 0 && bestDiff >= 0 && bestDiff/v <= 0.1 {
		return best
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ExtractPrices finds every explicit dinar amount mentioned in a query.
func ExtractPrices(text string) []int {
	var prices []int
	for _, m := range pricePattern.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.Atoi(strings.ReplaceAll(m[1], " ", "")); err == nil {
			prices = append(prices, v)
		}
	}
	return prices
}

// ExtractSpeeds finds every speed with an explicit unit mentioned in a
// query, converted to Mbps.
func ExtractSpeeds(text string) []float64 {
	var speeds []float64
	for _, m := range speedPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			continue
		}
		speeds = append(speeds, v*speedMultiplier(strings.ToLower(m[2])))
	}
	return speeds
}

// MentionsFree reports whether the query asks about free offers.
func MentionsFree(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "gratuit") || strings.Contains(lower, "مجان")
}
