package usecase

import (
	"log"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Keyword set bounds. The cap bounds the cost of the downstream OR-query
// against the flyer search; the length bounds drop junk tokens.
const (
	maxKeywords   = 20
	minKeywordLen = 2
	maxKeywordLen = 40
)

// Compiled regex patterns for keyword expansion
var (
	// Collapses every non-alphanumeric run into a single space
	nonAlphanumericRunPattern = regexp.MustCompile(`[^a-z0-9]+`)

	// Matches quantity/format tokens like "2%", "2l", "1.5 kg", "454 g",
	// "750ml". Unit alternatives are ordered longest-first so "ml" is not
	// consumed as "l"; "%" needs no trailing boundary (it is non-word).
	quantityFormatPattern = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s*(?:%|ml\b|kg\b|lb\b|l\b|g\b)`)

	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// diacriticsFolder strips combining marks after canonical decomposition,
// so "Crème fraîche" normalizes to "creme fraiche".
var diacriticsFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// expansionStopWords are packaging/quantity words and articles (French and
// English) that never help a flyer keyword search.
var expansionStopWords = map[string]bool{
	// Articles and connectives
	"le": true, "la": true, "les": true, "un": true, "une": true,
	"de": true, "du": true, "des": true, "et": true, "ou": true,
	"au": true, "aux": true, "the": true, "of": true, "and": true,

	// Packaging terms
	"paquet": true, "sac": true, "boite": true, "bouteille": true,
	"pot": true, "caisse": true, "emballage": true, "contenant": true,
	"pack": true, "box": true, "bag": true, "bottle": true, "jar": true,
	"carton": true, "barquette": true, "conserve": true,

	// Quantity/size words
	"format": true, "gros": true, "grand": true, "petit": true,
	"moyen": true, "unite": true, "unites": true, "douzaine": true,
	"chacun": true, "each": true, "environ": true, "approx": true,
	"lot": true, "portion": true, "morceau": true,
}

// productSynonyms expands a grocery token into retailer-vocabulary variants:
// translations, category neighbours, and the brands that dominate Québec
// flyers for that category. Built once at startup, never mutated.
var productSynonyms = map[string][]string{
	// Dairy
	"lait":    {"milk", "lactantia", "natrel", "quebon", "2%", "3.25%"},
	"milk":    {"lait", "lactantia", "natrel"},
	"fromage": {"cheese", "cheddar", "mozzarella", "feta"},
	"cheese":  {"fromage", "cheddar"},
	"beurre":  {"butter", "lactantia"},
	"butter":  {"beurre"},
	"yogourt": {"yogurt", "yogourt grec", "danone", "activia", "iogo"},
	"yogurt":  {"yogourt", "danone"},
	"creme":   {"cream", "creme sure", "15%", "35%"},

	// Eggs
	"oeuf":  {"eggs", "oeufs", "gros calibre"},
	"oeufs": {"eggs", "egg", "gros calibre"},
	"eggs":  {"oeufs"},

	// Bread and pasta
	"pain":      {"bread", "baguette", "pain tranche", "villaggio", "bon matin"},
	"bread":     {"pain", "baguette"},
	"pates":     {"pasta", "spaghetti", "penne", "macaroni", "barilla", "catelli"},
	"pasta":     {"pates", "spaghetti", "catelli"},
	"spaghetti": {"pates", "pasta", "sauce tomate"},

	// Rice and cereal
	"riz":      {"rice", "basmati", "jasmin", "riz brun"},
	"rice":     {"riz", "basmati"},
	"cereales": {"cereal", "gruau", "avoine", "quaker", "kellogg"},
	"cereale":  {"cereal", "gruau", "quaker"},
	"cereal":   {"cereales", "quaker"},
	"gruau":    {"avoine", "oatmeal", "quaker"},

	// Meats
	"poulet":  {"chicken", "poitrine", "cuisse", "poulet entier"},
	"chicken": {"poulet", "poitrine"},
	"boeuf":   {"beef", "boeuf hache", "bifteck", "steak"},
	"beef":    {"boeuf", "hache"},
	"porc":    {"pork", "cotelette", "filet de porc", "jambon"},
	"pork":    {"porc", "cotelette"},
	"jambon":  {"ham", "olymel", "maple leaf"},
	"dinde":   {"turkey", "poitrine de dinde"},

	// Fish
	"poisson": {"fish", "saumon", "truite", "tilapia", "morue"},
	"fish":    {"poisson", "saumon"},
	"saumon":  {"salmon", "filet de saumon", "saumon atlantique"},
	"salmon":  {"saumon"},
	"thon":    {"tuna", "clover leaf"},

	// Produce
	"pomme":   {"apple", "pommes", "mcintosh", "gala"},
	"pommes":  {"apples", "mcintosh", "gala", "spartan"},
	"banane":  {"banana", "bananes"},
	"bananes": {"bananas", "banane"},
	"tomate":  {"tomato", "tomates", "tomates en grappe"},
	"tomates": {"tomatoes", "tomates cerises"},
	"laitue":  {"lettuce", "romaine", "iceberg"},
	"carotte": {"carrot", "carottes"},
	"patate":  {"potato", "pommes de terre"},
	"oignon":  {"onion", "oignons jaunes"},

	// Sauces and condiments
	"sauce":      {"classico", "catelli", "sauce tomate"},
	"ketchup":    {"heinz", "condiment"},
	"mayonnaise": {"hellmann", "mayo"},
	"moutarde":   {"mustard", "french's"},

	// Oils and vinegars
	"huile":    {"oil", "huile olive", "canola", "vegetale"},
	"oil":      {"huile", "olive"},
	"vinaigre": {"vinegar", "balsamique"},

	// Sugar and flour
	"sucre":  {"sugar", "cassonade", "lantic"},
	"sugar":  {"sucre", "lantic"},
	"farine": {"flour", "tout usage", "robin hood"},
	"flour":  {"farine", "robin hood"},

	// Beverages
	"jus":    {"juice", "oasis", "tropicana"},
	"juice":  {"jus", "oasis"},
	"cafe":   {"coffee", "folgers", "maxwell house"},
	"coffee": {"cafe", "folgers"},
	"eau":    {"water", "eska", "naya", "eau de source"},
	"tisane": {"tea", "the vert"},

	// Snacks
	"croustilles": {"chips", "lays", "ruffles"},
	"chips":       {"croustilles", "lays"},
	"biscuits":    {"cookies", "leclerc", "dad's"},
	"chocolat":    {"chocolate", "lindt", "cadbury"},
	"craquelins":  {"crackers", "ritz"},

	// Frozen
	"surgele": {"frozen", "surgeles", "congele"},
	"congele": {"frozen", "surgele"},
	"frozen":  {"surgele", "congele"},
	"pizza":   {"pizza surgelee", "delissio"},

	// Cleaning
	"nettoyant": {"cleaner", "detergent", "hertel"},
	"detergent": {"savon", "tide", "lessive"},
	"javel":     {"bleach", "eau de javel"},
	"savon":     {"soap", "dove"},
}

// knownBrands are brand names scanned for as substrings of the normalized
// product name. A brand hit becomes a keyword of its own.
var knownBrands = []string{
	"lactantia", "natrel", "quebon", "barilla", "catelli", "danone",
	"activia", "iogo", "quaker", "kellogg", "heinz", "kraft", "tropicana",
	"oasis", "lays", "pepsi", "coca cola", "villaggio", "robin hood",
	"lantic", "hertel", "maple leaf", "olymel", "delissio", "clover leaf",
	"folgers", "eska", "naya", "leclerc", "tide", "dove",
}

// orthographicVariants maps the folded spelling back to the accented form a
// retailer may use verbatim in its product names.
var orthographicVariants = map[string][]string{
	"creme":   {"crème"},
	"pates":   {"pâtes"},
	"ecreme":  {"écrémé"},
	"cafe":    {"café"},
	"surgele": {"surgelé"},
	"congele": {"congelé"},
	"cereale": {"céréale"},
	"hache":   {"haché"},
	"peche":   {"pêche"},
	"ble":     {"blé"},
}

// KeywordExpander turns a free-text product name into a bounded set of
// flyer-search keywords. Pure and deterministic.
type KeywordExpander struct {
	enableDebugLogging bool
}

// NewKeywordExpander creates a new keyword expander
func NewKeywordExpander(enableDebugLogging bool) *KeywordExpander {
	return &KeywordExpander{enableDebugLogging: enableDebugLogging}
}

// Expand derives the keyword set for a product name. Returned keywords are
// unique, 2-40 characters, and capped at 20; insertion order is an
// implementation detail callers must not rely on.
func (e *KeywordExpander) Expand(productName string) []string {
	trimmed := strings.TrimSpace(productName)
	if trimmed == "" {
		return nil
	}

	set := newKeywordSet()

	lower := strings.ToLower(trimmed)
	normalized := normalizeProductName(trimmed)
	set.add(lower)
	set.add(normalized)

	tokens := filterTokens(strings.Fields(normalized))
	for _, tok := range tokens {
		set.add(tok)
	}

	// Adjacent-token bigrams
	for i := 0; i+1 < len(tokens); i++ {
		set.add(tokens[i] + " " + tokens[i+1])
	}

	// Synonyms, brands, and category vocabulary
	for _, tok := range tokens {
		for _, syn := range productSynonyms[tok] {
			if len(syn) >= minKeywordLen {
				set.add(syn)
			}
		}
	}

	// Brand substrings anywhere in the normalized name
	for _, brand := range knownBrands {
		if strings.Contains(normalized, brand) {
			set.add(brand)
		}
	}

	// Quantity/format tokens like "2%" or "1.5 kg"; scanned on the raw
	// lowercase input because normalization strips "%" and decimals
	for _, m := range quantityFormatPattern.FindAllString(lower, -1) {
		set.add(strings.TrimSpace(m))
	}

	// Accented spellings retailers use verbatim
	for _, tok := range tokens {
		for _, variant := range orthographicVariants[tok] {
			set.add(variant)
		}
	}

	keywords := set.members()

	if e.enableDebugLogging {
		log.Printf("[EXPAND] %q -> %d keywords: %v", productName, len(keywords), keywords)
	}

	return keywords
}

// normalizeProductName lowercases, folds diacritics, collapses
// non-alphanumeric runs to single spaces, and trims.
func normalizeProductName(s string) string {
	lower := strings.ToLower(s)
	folded, _, err := transform.String(diacriticsFolder, lower)
	if err != nil {
		folded = lower
	}
	cleaned := nonAlphanumericRunPattern.ReplaceAllString(folded, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// filterTokens drops short tokens and expansion stop words.
func filterTokens(words []string) []string {
	var tokens []string
	for _, w := range words {
		if len(w) < minKeywordLen {
			continue
		}
		if expansionStopWords[w] {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// keywordSet is an insertion-ordered string set with the length and count
// bounds applied on insert.
type keywordSet struct {
	seen  map[string]bool
	order []string
}

func newKeywordSet() *keywordSet {
	return &keywordSet{seen: make(map[string]bool)}
}

func (s *keywordSet) add(keyword string) {
	if len(keyword) < minKeywordLen || len(keyword) > maxKeywordLen {
		return
	}
	if s.seen[keyword] || len(s.order) >= maxKeywords {
		return
	}
	s.seen[keyword] = true
	s.order = append(s.order, keyword)
}

func (s *keywordSet) members() []string {
	return s.order
}
