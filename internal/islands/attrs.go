package islands

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// cssPropNames lists the canonical camelCase CSS-shaped prop names the
// compiler understands. The canonicalization table folds their HTML-lowercased
// and kebab-case spellings onto these, and the precompute step splits them
// out of the functional props into the island's style object.
var cssPropNames = []string{
	"backgroundColor", "color", "fontSize", "fontWeight", "fontFamily",
	"textAlign", "lineHeight", "padding", "margin", "border", "borderRadius",
	"opacity", "boxShadow", "display", "gap", "width", "height", "zIndex",
}

// legacyAliases folds historical spellings that are not simple case or
// hyphenation variants onto their canonical prop name.
var legacyAliases = map[string]string{
	"classname":  "className",
	"class":      "className",
	"onclick":    "onClick",
	"bgcolor":    "backgroundColor",
	"textcolour": "color",
	"labeltext":  "label",
	"imgsrc":     "src",
}

// canonicalTable is the pure lookup built at init: kebab-case, lowercase, and
// legacy spellings map to the canonical (camelCase) prop name. Unmapped names
// pass through unchanged.
var canonicalTable = buildCanonicalTable()

var titleCaser = cases.Title(language.Und, cases.NoLower)

func buildCanonicalTable() map[string]string {
	table := make(map[string]string)

	for _, canonical := range cssPropNames {
		table[strings.ToLower(canonical)] = canonical
		table[kebabOf(canonical)] = canonical
	}
	for alias, canonical := range legacyAliases {
		table[alias] = canonical
	}
	return table
}

// kebabOf converts a camelCase name to its kebab-case spelling.
func kebabOf(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CanonicalAttrName maps one raw attribute name onto its canonical prop
// name. Kebab-case names not covered by the table are camelCased segment by
// segment so generic CSS-style properties normalize uniformly.
func CanonicalAttrName(raw string) string {
	key := strings.ToLower(raw)
	if canonical, ok := canonicalTable[key]; ok {
		return canonical
	}
	if strings.HasPrefix(key, "data-") || !strings.Contains(key, "-") {
		return raw
	}
	return camelOf(key)
}

// camelOf joins kebab segments into camelCase using the x/text caser for
// the capitalized segments.
func camelOf(kebab string) string {
	segments := strings.Split(kebab, "-")
	var b strings.Builder
	b.WriteString(segments[0])
	for _, seg := range segments[1:] {
		if seg == "" {
			continue
		}
		b.WriteString(titleCaser.String(seg))
	}
	return b.String()
}

// CanonicalizeAttrs rewrites a raw attribute map through the table. Later
// spellings of the same canonical name do not overwrite earlier ones, so the
// first occurrence wins deterministically (map iteration is ordered by a
// sorted key pass).
func CanonicalizeAttrs(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for _, key := range sortedKeys(raw) {
		canonical := CanonicalAttrName(key)
		if _, exists := out[canonical]; !exists {
			out[canonical] = raw[key]
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsCSSProp reports whether a canonical prop name is CSS-shaped.
func IsCSSProp(name string) bool {
	for _, css := range cssPropNames {
		if css == name {
			return true
		}
	}
	return false
}
