package matching

import (
	"regexp"
	"sort"
	"strings"
)

// NormalizedQuery is the result of query normalization. ExpandedTerms lists
// abbreviation expansions that were appended to the text; NegatedTerms lists
// words the user explicitly excluded.
type NormalizedQuery struct {
	Normalized    string
	ExpandedTerms []string
	NegatedTerms  []string
}

// abbreviations maps domain shorthand to its spelled-out form. Expansion
// augments the query rather than replacing the abbreviation, so both forms
// remain matchable.
var abbreviations = map[string]string{
	"aa":      "anti aliasing",
	"ao":      "ambient occlusion",
	"ar":      "augmented reality",
	"bp":      "blueprint",
	"bps":     "blueprints",
	"bt":      "behavior tree",
	"cpp":     "c++",
	"dlss":    "deep learning super sampling",
	"dof":     "depth of field",
	"fk":      "forward kinematics",
	"fov":     "field of view",
	"fps":     "frames per second",
	"gc":      "garbage collection",
	"gi":      "global illumination",
	"gpu":     "graphics processing unit",
	"hdr":     "high dynamic range",
	"hdri":    "high dynamic range image",
	"hlod":    "hierarchical level of detail",
	"hud":     "heads up display",
	"ik":      "inverse kinematics",
	"lod":     "level of detail",
	"lods":    "levels of detail",
	"mp":      "multiplayer",
	"navmesh": "navigation mesh",
	"pbr":     "physically based rendering",
	"pcg":     "procedural content generation",
	"rpc":     "remote procedure call",
	"rt":      "ray tracing",
	"rtx":     "ray tracing",
	"rvt":     "runtime virtual texture",
	"sfx":     "sound effects",
	"ssao":    "screen space ambient occlusion",
	"ssr":     "screen space reflections",
	"taa":     "temporal anti aliasing",
	"tsr":     "temporal super resolution",
	"ue":      "unreal engine",
	"ue4":     "unreal engine 4",
	"ue5":     "unreal engine 5",
	"ui":      "user interface",
	"umg":     "unreal motion graphics",
	"vfx":     "visual effects",
	"vr":      "virtual reality",
	"wpo":     "world position offset",
	"xr":      "extended reality",
}

type abbreviationRule struct {
	expansion string
	pattern   *regexp.Regexp
}

// abbreviationRules is the dictionary compiled to whole-word patterns, in a
// fixed key order so that expansion output is reproducible across calls.
var abbreviationRules = func() []abbreviationRule {
	keys := make([]string, 0, len(abbreviations))
	for k := range abbreviations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rules := make([]abbreviationRule, 0, len(keys))
	for _, k := range keys {
		rules = append(rules, abbreviationRule{
			expansion: abbreviations[k],
			pattern:   regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`),
		})
	}
	return rules
}()

// negationPatterns capture the word immediately following a negation cue.
// These run against the raw lowercased text before any expansion so that
// injected tokens can never be treated as negated.
var negationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bnot\s+([a-z0-9][a-z0-9+.\-]*)`),
	regexp.MustCompile(`\bwithout\s+([a-z0-9][a-z0-9+.\-]*)`),
	regexp.MustCompile(`\bexclude\s+([a-z0-9][a-z0-9+.\-]*)`),
	regexp.MustCompile(`\bno\s+([a-z0-9][a-z0-9+.\-]*)`),
	regexp.MustCompile(`\b(?:don'?t|doesn'?t)\s+(?:want|need|use)\s+([a-z0-9][a-z0-9+.\-]*)`),
}

var (
	camelBoundaryRegex = regexp.MustCompile(`([a-z])([A-Z])`)
	allowedCharsRegex  = regexp.MustCompile(`[^a-z0-9\s.+\-]`)
	whitespaceRegex    = regexp.MustCompile(`\s+`)
)

// NormalizeQuery lowercases, expands abbreviations, splits camelCase,
// strips punctuation (keeping hyphens, version dots, and plus signs), and
// collapses whitespace. Negation detection runs first on the raw text.
// Empty input yields an all-empty result.
func NormalizeQuery(raw string) NormalizedQuery {
	result := NormalizedQuery{
		ExpandedTerms: []string{},
		NegatedTerms:  []string{},
	}
	if strings.TrimSpace(raw) == "" {
		return result
	}

	lower := strings.ToLower(raw)

	// 1. Negation first: later expansion injects tokens that must never be
	// picked up as negated.
	seenNegated := make(map[string]struct{})
	for _, pattern := range negationPatterns {
		for _, m := range pattern.FindAllStringSubmatch(lower, -1) {
			word := strings.Trim(m[1], ".-")
			if word == "" {
				continue
			}
			if _, dup := seenNegated[word]; dup {
				continue
			}
			seenNegated[word] = struct{}{}
			result.NegatedTerms = append(result.NegatedTerms, word)
		}
	}

	// 2-3. Expand abbreviations against the lowercased view, appending the
	// expansion to the working text. The camelCase split below needs the
	// original casing, so full lowercasing is deferred until after it; the
	// observable output is identical.
	text := raw
	for _, rule := range abbreviationRules {
		if rule.pattern.MatchString(lower) {
			text += " " + rule.expansion
			result.ExpandedTerms = append(result.ExpandedTerms, rule.expansion)
		}
	}

	// 4. Split camelCase boundaries, then lowercase everything.
	text = camelBoundaryRegex.ReplaceAllString(text, "$1 $2")
	text = strings.ToLower(text)

	// 5. Underscores become spaces.
	text = strings.ReplaceAll(text, "_", " ")

	// 6. Strip everything except letters, digits, whitespace, hyphen,
	// period, and plus (preserves "5.3" and "c++").
	text = allowedCharsRegex.ReplaceAllString(text, "")

	// 7. Collapse whitespace and trim.
	text = strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))

	result.Normalized = text
	return result
}

// depluralizeExceptions lists words that end in "s" but are not plural.
// They pass through Depluralize unchanged.
var depluralizeExceptions = map[string]struct{}{
	"alias":       {},
	"analysis":    {},
	"atlas":       {},
	"bias":        {},
	"canvas":      {},
	"chaos":       {},
	"class":       {},
	"graphics":    {},
	"iris":        {},
	"lens":        {},
	"mathematics": {},
	"news":        {},
	"physics":     {},
	"series":      {},
	"species":     {},
}

// Depluralize strips a plural suffix conservatively. It never touches words
// under 4 characters or words ending in "ss" or "us", honors a fixed
// exception list, and handles "ies" and "xes/shes/ches" endings before the
// generic trailing-s strip.
func Depluralize(word string) string {
	if len(word) < 4 {
		return word
	}
	if strings.HasSuffix(word, "ss") || strings.HasSuffix(word, "us") {
		return word
	}
	if _, ok := depluralizeExceptions[word]; ok {
		return word
	}
	if strings.HasSuffix(word, "ies") && len(word) > 4 {
		return word[:len(word)-3] + "y"
	}
	if strings.HasSuffix(word, "xes") || strings.HasSuffix(word, "shes") || strings.HasSuffix(word, "ches") {
		return word[:len(word)-2]
	}
	if strings.HasSuffix(word, "s") {
		return word[:len(word)-1]
	}
	return word
}
