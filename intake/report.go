// Package intake turns free-text problem reports into the structured case
// report the confidence router consumes.
package intake

import (
	"regexp"
	"strings"

	"learnpath/matching"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"
)

var (
	engineVersionRegex = regexp.MustCompile(`\b(?:ue\s*|unreal\s+engine\s+)?([45]\.\d+(?:\.\d+)?)\b`)
	errorLineRegex     = regexp.MustCompile(`(?i)(error|exception|assertion failed|fatal|crash(?:ed)?|failed to\b)`)
	recentChangeRegex  = regexp.MustCompile(`(?i)(after (?:upgrad|updat|migrat|switch)|since (?:upgrad|updat|migrat|switch)|recently (?:chang|upgrad|updat)|what changed)`)
)

// platformKeywords maps lowercase tokens to the canonical platform name.
// Ordered so the first hit wins deterministically.
var platformKeywords = []struct {
	token    string
	platform string
}{
	{"windows", "windows"},
	{"win64", "windows"},
	{"macos", "macos"},
	{"mac", "macos"},
	{"linux", "linux"},
	{"android", "android"},
	{"ios", "ios"},
	{"playstation", "ps5"},
	{"ps5", "ps5"},
	{"xbox", "xbox"},
	{"quest", "quest"},
	{"switch", "switch"},
}

// Parser extracts structured case-report fields from raw report text.
type Parser struct {
	logger *zap.Logger
}

func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse builds a CaseReport from free text. Empty input yields an empty
// report and no error; sentence segmentation failures degrade to line
// splitting rather than failing the request.
func (p *Parser) Parse(text string) *matching.CaseReport {
	report := &matching.CaseReport{ErrorStrings: []string{}}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return report
	}

	lower := strings.ToLower(trimmed)

	if m := engineVersionRegex.FindStringSubmatch(lower); m != nil {
		report.EngineVersion = m[1]
	}

	for _, kw := range platformKeywords {
		if containsWord(lower, kw.token) {
			report.Platform = kw.platform
			break
		}
	}

	if m := recentChangeRegex.FindString(trimmed); m != "" {
		report.RecentChange = strings.TrimSpace(m)
	}

	for _, sentence := range p.segment(trimmed) {
		if errorLineRegex.MatchString(sentence) {
			report.ErrorStrings = append(report.ErrorStrings, strings.TrimSpace(sentence))
		}
	}

	p.logger.Debug("Parsed case report",
		zap.String("engine_version", report.EngineVersion),
		zap.String("platform", report.Platform),
		zap.Int("error_strings", len(report.ErrorStrings)))

	return report
}

// segment splits report text into sentences so each error sentence can be
// captured individually. Log-style lines (already newline separated) are
// split first; prose handles the remaining running text.
func (p *Parser) segment(text string) []string {
	var segments []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		doc, err := prose.NewDocument(line, prose.WithTagging(false), prose.WithExtraction(false))
		if err != nil {
			p.logger.Warn("Sentence segmentation failed, keeping whole line", zap.Error(err))
			segments = append(segments, line)
			continue
		}
		for _, sentence := range doc.Sentences() {
			if s := strings.TrimSpace(sentence.Text); s != "" {
				segments = append(segments, s)
			}
		}
	}
	return segments
}

// containsWord checks whole-word presence without regex compilation per
// token.
func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}
