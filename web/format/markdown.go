package format

import (
	"fmt"
	"strings"

	"learnpath/matching"

	"github.com/gomarkdown/markdown"
)

// PlanMarkdown renders an assembled learning path as a Markdown study plan.
// Output is deterministic for identical input.
func PlanMarkdown(query string, steps []matching.PathStep) string {
	var builder strings.Builder
	builder.WriteString("# Suggested learning path\n\n")
	if strings.TrimSpace(query) != "" {
		builder.WriteString(fmt.Sprintf("For: _%s_\n\n", strings.TrimSpace(query)))
	}

	if len(steps) == 0 {
		builder.WriteString("No matching content found for this request.\n")
		return builder.String()
	}

	currentRole := matching.PathRole(-1)
	total := 0
	for _, step := range steps {
		if step.Role != currentRole {
			currentRole = step.Role
			builder.WriteString(fmt.Sprintf("## %s\n\n", roleHeading(step.Role)))
		}
		builder.WriteString(fmt.Sprintf("- **%s** (%d min) — %s\n", step.Item.Title, step.EstimatedMinutes, step.Reason))
		total += step.EstimatedMinutes
	}
	builder.WriteString(fmt.Sprintf("\nEstimated total: %d minutes.\n", total))

	return builder.String()
}

// MarkdownToHTML converts a Markdown plan to HTML for the html response
// variant.
func MarkdownToHTML(md string) string {
	return string(markdown.ToHTML([]byte(md), nil, nil))
}

func roleHeading(role matching.PathRole) string {
	switch role {
	case matching.RolePrerequisite:
		return "Start here"
	case matching.RoleCore:
		return "Core material"
	case matching.RoleTroubleshooting:
		return "Troubleshooting"
	case matching.RoleSupplemental:
		return "Going further"
	default:
		return "Other"
	}
}
