package textnorm

// bilingualSynonyms links French and Arabic vocabulary for the offer
// corpus, plus frequent spelling variants. Keys and values are folded
// forms; lookup goes through Fold so callers can pass raw tokens.
var bilingualSynonyms = map[string][]string{
	// Technologies
	"fibre":    {"ftth", "فايبر", "الألياف البصرية", "الياف", "idoom fibre"},
	"adsl":     {"أدسل", "ادسل", "idoom adsl", "ligne fixe internet"},
	"vdsl":     {"في دي اس ال", "فدسل", "idoom vdsl"},
	"4g":       {"lte", "الجيل الرابع", "4g lte", "internet mobile"},
	"lte":      {"4g", "الجيل الرابع", "sans fil"},
	"wifi":     {"واي فاي", "ويفي", "wi-fi", "wifi6"},
	"ont":      {"modem optique", "جهاز ont", "terminal optique"},
	"modem":    {"مودم", "routeur", "box"},
	"routeur":  {"مودم", "راوتر", "modem"},

	// Offer attributes
	"debit":      {"vitesse", "تدفق", "سرعة", "bande passante"},
	"vitesse":    {"debit", "سرعة", "تدفق"},
	"mbps":       {"mega", "ميغا", "mb/s"},
	"gbps":       {"giga", "جيغا", "gb/s"},
	"illimite":   {"غير محدود", "بدون حدود", "sans limite"},
	"volume":     {"حجم", "quota", "gigas"},
	"donnees":    {"بيانات", "data", "معطيات"},
	"prix":       {"tarif", "سعر", "ثمن", "تسعيرة"},
	"tarif":      {"prix", "تسعيرة", "سعر", "cout"},
	"gratuit":    {"مجاني", "مجانا", "sans frais", "offert"},
	"abonnement": {"اشتراك", "souscription"},
	"engagement": {"التزام", "commitment", "contrat"},
	"promotion":  {"promo", "عرض ترويجي", "تخفيض", "reduction"},
	"offre":      {"عرض", "offres", "عروض", "formule"},

	// Segments
	"residentiel":   {"منزلي", "particulier", "grand public", "domicile"},
	"professionnel": {"مهني", "entreprise", "مؤسسة", "business", "pro"},
	"locataire":     {"مستأجر", "location", "إيجار", "loue"},
	"ecole":         {"مدرسة", "scolaire", "etablissement scolaire", "primaire"},
	"gamer":         {"قيمر", "gaming", "ألعاب", "jeux en ligne"},
	"etudiant":      {"طالب", "universitaire", "جامعي"},

	// Operations
	"installation":  {"تركيب", "mise en service", "raccordement"},
	"modernisation": {"عصرنة", "تحديث", "upgrade"},
	"basculement":   {"تحويل", "migration", "passage"},
	"upgrade":       {"ترقية", "augmentation de debit", "montee en debit"},
	"activation":    {"تفعيل", "mise en route"},
	"resiliation":   {"فسخ", "annulation", "إلغاء"},
	"demenagement":  {"ترحيل", "transfert", "changement d'adresse"},
	"interruption":  {"انقطاع", "coupure", "panne"},
	"probleme":      {"مشكل", "مشكلة", "panne", "dysfonctionnement"},
	"reclamation":   {"شكوى", "plainte", "doleance"},
	"assistance":    {"مساعدة", "support", "دعم"},

	// Payment and paperwork
	"paiement":     {"دفع", "reglement", "تسديد"},
	"electronique": {"إلكتروني", "en ligne", "internet"},
	"credit":       {"رصيد", "solde", "recharge"},
	"recharge":     {"تعبئة", "rechargement", "رصيد"},
	"facture":      {"فاتورة", "facturation"},
	"timbre":       {"طابع", "fiscal", "جبائي"},
	"fiscal":       {"جبائي", "timbre", "ضريبي"},
	"dossier":      {"ملف", "documents", "pieces"},
	"parrainage":   {"إحالة", "sponsoring", "parrain"},

	// Coverage
	"zone":        {"منطقة", "region", "quartier"},
	"couverture":  {"تغطية", "eligibilite", "disponibilite"},
	"eligibilite": {"أهلية", "couverture", "disponible"},
}

// Synonyms returns up to five known equivalents of a term across both
// languages, or nil for vocabulary outside the table.
func Synonyms(term string) []string {
	syns, ok := bilingualSynonyms[Fold(term)]
	if !ok {
		return nil
	}
	if len(syns) > 5 {
		syns = syns[:5]
	}
	return syns
}

// ExpandTokens returns tokens plus up to maxPerToken synonyms for each,
// folded and de-duplicated. The order keeps original tokens first so
// downstream scoring can distinguish direct matches from expansions.
func ExpandTokens(tokens []string, maxPerToken int) []string {
	seen := make(map[string]bool, len(tokens)*2)
	expanded := make([]string, 0, len(tokens)*2)
	add := func(tok string) {
		if tok == "" || seen[tok] {
			return
		}
		seen[tok] = true
		expanded = append(expanded, tok)
	}
	for _, tok := range tokens {
		add(Fold(tok))
	}
	for _, tok := range tokens {
		n := 0
		for _, syn := range Synonyms(tok) {
			for _, part := range TokenizeFolded(syn) {
				add(part)
			}
			n++
			if n == maxPerToken {
				break
			}
		}
	}
	return expanded
}

// CrossLanguageMatches counts query tokens whose synonym set intersects
// the document token set. Each query token counts at most once, however
// many of its synonyms appear.
func CrossLanguageMatches(queryTokens []string, docTokens map[string]bool) int {
	matches := 0
	for _, tok := range queryTokens {
		for _, syn := range Synonyms(tok) {
			hit := false
			for _, part := range TokenizeFolded(syn) {
				if docTokens[part] {
					hit = true
					break
				}
			}
			if hit {
				matches++
				break
			}
		}
	}
	return matches
}

// HasArabic reports whether any token contains Arabic script.
func HasArabic(tokens []string) bool {
	for _, tok := range tokens {
		for _, r := range tok {
			if isArabicRune(r) {
				return true
			}
		}
	}
	return false
}
