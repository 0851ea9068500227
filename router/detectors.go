package router

import "strings"

// Detector bonuses and penalties. The magnitudes dwarf plain token
// overlap on purpose: metadata agreement should dominate superficial
// vocabulary overlap between differently-segmented documents.
const (
	paymentStrongBoost = 25.0
	paymentWeakBoost   = 8.0
	paymentPenalty     = 10.0

	ontFullBoost   = 30.0
	ontPairBoost   = 22.0
	ontSingleBoost = 12.0
	ontPenalty     = 12.0

	schoolFullBoost = 30.0
	schoolBoost     = 22.0
	schoolPenalty   = 15.0

	lteNoCommitBoost = 32.0
	lteSansBoost     = 25.0
	lteBoost         = 15.0
	ltePenalty       = 20.0

	referralBoost = 30.0

	businessStrongBoost = 20.0
	businessBoost       = 15.0
	businessWeakBoost   = 8.0
	businessPenalty     = 10.0

	tenantStrongBoost = 20.0
	tenantBoost       = 15.0
	tenantPenalty     = 12.0

	residentialStrongBoost = 15.0
	residentialBoost       = 10.0

	gamerBoost = 22.0

	taxStampBonus      = 15.0
	modernisationBonus = 10.0
	migrationBonus     = 12.0
	interruptionBonus  = 8.0
)

// querySignals holds what the detectors saw in one query. A zero boost
// means the signal did not fire.
type querySignals struct {
	payment     float64
	ont         float64
	school      float64
	lte         float64
	referral    float64
	business    float64
	tenant      float64
	residential float64
	gamer       float64

	taxStamp      bool
	modernisation bool
	migration     bool
	interruption  bool
}

func countTokens(set map[string]bool, terms ...string) int {
	n := 0
	for _, term := range terms {
		if set[term] {
			n++
		}
	}
	return n
}

// detectSignals runs every query-side detector. tokens is the expanded
// folded token set; folded is the folded query for multi-word phrases.
func detectSignals(tokens map[string]bool, folded string) querySignals {
	var sig querySignals

	switch n := countTokens(tokens, "paiement", "payer", "facture", "reglement", "edahabia", "cib", "tasdid", "دفع", "فاتورة", "تسديد"); {
	case n >= 2:
		sig.payment = paymentStrongBoost
	case n == 1:
		sig.payment = paymentWeakBoost
	}

	hasONT := tokens["ont"] || strings.Contains(folded, "terminal optique")
	hasWifi6 := tokens["wifi6"] || strings.Contains(folded, "wifi 6") || strings.Contains(folded, "wi-fi 6")
	switch {
	case hasONT && (hasWifi6 || strings.Contains(folded, "preferentiel")):
		sig.ont = ontFullBoost
	case countTokens(tokens, "ont", "wifi6", "modem", "routeur", "مودم") >= 2:
		sig.ont = ontPairBoost
	case hasONT || hasWifi6:
		sig.ont = ontSingleBoost
	}

	if n := countTokens(tokens, "ecole", "ecoles", "scolaire", "primaire", "cem", "lycee", "مدرسه", "مدرسة"); n > 0 {
		if tokens["primaire"] {
			sig.school = schoolFullBoost
		} else {
			sig.school = schoolBoost
		}
	}

	if tokens["4g"] || tokens["lte"] {
		switch {
		case strings.Contains(folded, "sans engagement"):
			sig.lte = lteNoCommitBoost
		case strings.Contains(folded, "sans"):
			sig.lte = lteSansBoost
		default:
			sig.lte = lteBoost
		}
	}

	if countTokens(tokens, "parrainage", "parrain", "filleul", "إحالة") > 0 {
		sig.referral = referralBoost
	}

	switch n := countTokens(tokens, "professionnel", "entreprise", "business", "pro", "مهني", "مؤسسة"); {
	case n >= 2:
		sig.business = businessStrongBoost
	case tokens["professionnel"] || tokens["entreprise"]:
		sig.business = businessBoost
	case n == 1:
		sig.business = businessWeakBoost
	}

	switch {
	case tokens["locataire"] || tokens["مستأجر"]:
		sig.tenant = tenantStrongBoost
	case countTokens(tokens, "location", "loyer", "إيجار") > 0:
		sig.tenant = tenantBoost
	}

	switch {
	case tokens["residentiel"] || tokens["منزلي"]:
		sig.residential = residentialStrongBoost
	case countTokens(tokens, "particulier", "domicile") > 0:
		sig.residential = residentialBoost
	}

	if countTokens(tokens, "gamer", "gamers", "gaming", "jeux", "قيمر") > 0 {
		sig.gamer = gamerBoost
	}

	sig.taxStamp = tokens["timbre"] || tokens["fiscal"] || tokens["جبائي"] || tokens["طابع"]
	sig.modernisation = tokens["modernisation"] || tokens["عصرنة"] || tokens["upgrade"]
	sig.migration = (tokens["4g"] || tokens["lte"]) &&
		(tokens["fibre"] || tokens["basculement"] || tokens["migration"])
	sig.interruption = countTokens(tokens, "interruption", "coupure", "panne", "انقطاع") > 0

	return sig
}

// detectorScore applies the signals to one document's metadata traits.
// Exclusive detectors reward agreement and penalize documents that
// share vocabulary but belong to a conflicting segment.
func detectorScore(sig querySignals, m docMeta) float64 {
	score := 0.0

	if sig.payment > 0 {
		if m.isPayment {
			score += sig.payment
		} else {
			score -= paymentPenalty
		}
	}
	if sig.ont > 0 {
		if m.isEquipment {
			score += sig.ont
		} else {
			score -= ontPenalty
		}
	}
	if sig.school > 0 {
		if m.isSchool {
			score += sig.school
		} else {
			score -= schoolPenalty
		}
	}
	if sig.lte > 0 {
		if m.isLTE {
			score += sig.lte
		} else {
			score -= ltePenalty
		}
	}
	if sig.referral > 0 && m.isReferral {
		score += sig.referral
	}
	if sig.business > 0 {
		if m.isBusiness {
			score += sig.business
		} else if m.isResidential {
			score -= businessPenalty
		}
	}
	if sig.tenant > 0 {
		if m.isTenant {
			score += sig.tenant
		} else {
			score -= tenantPenalty
		}
	}
	if sig.residential > 0 {
		if m.isResidential {
			score += sig.residential
		} else if m.isBusiness {
			score -= businessPenalty
		}
	}
	if sig.gamer > 0 && m.isGamer {
		score += sig.gamer
	}

	if sig.taxStamp && m.hasTax {
		score += taxStampBonus
	}
	if sig.modernisation && m.hasModernisation {
		score += modernisationBonus
	}
	if sig.migration && m.hasMigration {
		score += migrationBonus
	}
	if sig.interruption && m.hasInterruption {
		score += interruptionBonus
	}

	return score
}
