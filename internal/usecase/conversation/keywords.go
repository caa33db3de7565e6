package conversation

import "strings"

// brandRule maps a trigger keyword to a canonical brand label.
// Order matters: the first matching keyword wins, so aliases for the
// same brand sit next to each other and more specific triggers come
// before generic ones.
type brandRule struct {
	keyword string
	brand   string
}

var brandRules = []brandRule{
	{"square", "Square"},
	{"clover", "Clover"},
	{"oracle", "Oracle"},
	{"micros", "Oracle"},
	{"lucas", "Oracle"},
	{"metos", "Metos"},
	{"vulcan", "Vulcan"},
	{"lincoln", "Lincoln"},
	{"pitco", "Pitco"},
	{"la marzocco", "La Marzocco"},
	{"manitowoc", "Manitowoc"},
	{"v400m", "V400m"},
	{"adyen", "V400m"},
}

// typeRule maps a set of trigger keywords to a canonical equipment
// type. Ordered so that narrower categories are checked before the
// ones whose keywords they overlap ("pizza oven" before "oven").
type typeRule struct {
	equipType string
	keywords  []string
}

var typeRules = []typeRule{
	{"POS", []string{"pos", "terminal", "payment", "refund", "void", "transaction", "totals", "receipt", "merchant", "card", "paper roll"}},
	{"Coffee_Maker", []string{"coffee maker", "coffee machine", "brew", "descale", "carafe"}},
	{"Espresso_Machine", []string{"espresso", "steam wand", "portafilter"}},
	{"Fryer", []string{"fryer", "fry", "oil", "basket", "boil out", "boil-out", "filtering"}},
	{"Pizza_Oven", []string{"pizza oven", "impinger"}},
	{"Oven", []string{"oven", "convection", "bake", "broil", "thermostat", "roast"}},
	{"Ice_Machine", []string{"ice machine", "ice maker"}},
}

// brandTypes maps each brand to the equipment type it implies when
// the message names a brand but no type keyword.
var brandTypes = map[string]string{
	"Square":      "POS",
	"Clover":      "POS",
	"Oracle":      "POS",
	"V400m":       "POS",
	"Metos":       "Coffee_Maker",
	"La Marzocco": "Espresso_Machine",
	"Vulcan":      "Oven",
	"Lincoln":     "Pizza_Oven",
	"Pitco":       "Fryer",
	"Manitowoc":   "Ice_Machine",
}

// DetectEquipment scans a message for brand and equipment-type
// keywords. Matching is case-insensitive substring search. When only
// a brand matches, the type is inferred from the brand. Either return
// value may be empty.
func DetectEquipment(text string) (brand, equipType string) {
	lower := strings.ToLower(text)

	for _, rule := range brandRules {
		if strings.Contains(lower, rule.keyword) {
			brand = rule.brand
			break
		}
	}

	for _, rule := range typeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				equipType = rule.equipType
				break
			}
		}
		if equipType != "" {
			break
		}
	}

	if equipType == "" && brand != "" {
		equipType = brandTypes[brand]
	}
	return brand, equipType
}

// TypeForBrand returns the equipment type implied by a brand, or an
// empty string for unknown brands.
func TypeForBrand(brand string) string {
	return brandTypes[brand]
}
