package matching

import "strings"

// Intent carries the systems detected in the user's query (e.g. "niagara",
// "lumen"), as produced by tag extraction or an upstream intent step.
type Intent struct {
	Systems []string `json:"systems"`
}

// CaseReport is the structured problem description a user may attach to a
// query. All fields are optional.
type CaseReport struct {
	EngineVersion string   `json:"engine_version"`
	ErrorStrings  []string `json:"error_strings"`
	Platform      string   `json:"platform"`
	RecentChange  string   `json:"recent_change"`
}

// Passage is a retrieved text fragment with its precomputed similarity to
// the query. Retrieval happens outside the engine; scores arrive ready.
type Passage struct {
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// Turn is one role-tagged entry of the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConfidenceResult is the routing score with the named heuristics that
// fired. The score is floored at 0 and has no upper bound; the threshold
// policy that turns it into a response strategy belongs to the caller.
type ConfidenceResult struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Confidence router constants.
const (
	multiSystemPoints      = 30
	singleSystemPoints     = 15
	engineVersionPoints    = 15
	errorStringsPoints     = 25
	platformPoints         = 5
	recentChangePoints     = 10
	strongPassagesPoints   = 25
	singlePassagePoints    = 15
	borderlinePoints       = 10
	perTurnPoints          = 15
	maxTurnPoints          = 45
	shortQueryPenalty      = 15
	noContextPenalty       = 10
	shortQueryLength       = 30
	strongSimilarity       = 0.4
	borderlineSimilarityLo = 0.35
)

// ComputeConfidence combines intent signals, case-report completeness,
// retrieval passage quality, conversation depth, and query-length penalties
// into one additive score. Every rule that fires appends a named reason.
func ComputeConfidence(intent Intent, report *CaseReport, passages []Passage, history []Turn, query string) ConfidenceResult {
	score := 0
	reasons := []string{}

	switch {
	case len(intent.Systems) >= 2:
		score += multiSystemPoints
		reasons = append(reasons, "multiple_systems_detected")
	case len(intent.Systems) == 1:
		score += singleSystemPoints
		reasons = append(reasons, "single_system_detected")
	}

	if report != nil {
		if strings.TrimSpace(report.EngineVersion) != "" {
			score += engineVersionPoints
			reasons = append(reasons, "engine_version_present")
		}
		if len(report.ErrorStrings) > 0 {
			score += errorStringsPoints
			reasons = append(reasons, "error_strings_present")
		}
		if strings.TrimSpace(report.Platform) != "" {
			score += platformPoints
			reasons = append(reasons, "platform_present")
		}
		if strings.TrimSpace(report.RecentChange) != "" {
			score += recentChangePoints
			reasons = append(reasons, "recent_change_present")
		}
	}

	strong := 0
	borderline := 0
	for _, p := range passages {
		if p.Similarity > strongSimilarity {
			strong++
		} else if p.Similarity >= borderlineSimilarityLo {
			borderline++
		}
	}
	if strong >= 2 {
		score += strongPassagesPoints
		reasons = append(reasons, "strong_passages")
	} else if strong == 1 {
		score += singlePassagePoints
		reasons = append(reasons, "single_strong_passage")
	}
	if borderline >= 2 {
		score += borderlinePoints
		reasons = append(reasons, "borderline_passages")
	}

	userTurns := 0
	for _, turn := range history {
		if turn.Role == "user" {
			userTurns++
		}
	}
	if userTurns > 0 {
		turnCredit := userTurns * perTurnPoints
		if turnCredit > maxTurnPoints {
			turnCredit = maxTurnPoints
		}
		score += turnCredit
		reasons = append(reasons, "multi_turn_context")
	}

	if len(query) < shortQueryLength {
		score -= shortQueryPenalty
		reasons = append(reasons, "short_query")
	}
	noReport := report == nil || reportEmpty(report)
	noErrors := report == nil || len(report.ErrorStrings) == 0
	if noReport && len(intent.Systems) < 2 && noErrors {
		score -= noContextPenalty
		reasons = append(reasons, "no_structured_context")
	}

	if score < 0 {
		score = 0
	}

	return ConfidenceResult{Score: score, Reasons: reasons}
}

func reportEmpty(report *CaseReport) bool {
	return strings.TrimSpace(report.EngineVersion) == "" &&
		len(report.ErrorStrings) == 0 &&
		strings.TrimSpace(report.Platform) == "" &&
		strings.TrimSpace(report.RecentChange) == ""
}
