package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/concierge/internal/model"
)

// ConstructSearchQuery builds the keyword query: the raw user query followed
// by "question text: answer" for every answered question that resolves to a
// known question. Unresolved ids are silently skipped.
func ConstructSearchQuery(userQuery string, answers map[string]string, questions []model.Question) string {
	parts := []string{userQuery}
	for _, q := range questions {
		answer, ok := answers[q.ID]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", q.Text, answer))
	}
	return strings.Join(parts, " ")
}

// BuildSearchPrompt composes the synthesis prompt: optional profile summary,
// the raw query, a bulleted preference list, and instruction lines triggered
// independently by the query's wording and the presence of a profile.
func BuildSearchPrompt(userQuery string, answers map[string]string, questions []model.Question, userID string, profile *model.UserProfile) string {
	questionText := make(map[string]string, len(questions))
	for _, q := range questions {
		questionText[q.ID] = q.Text
	}

	var answerLines []string
	answered := make(map[string]bool, len(answers))
	for _, q := range questions {
		answer, ok := answers[q.ID]
		if !ok {
			continue
		}
		answerLines = append(answerLines, fmt.Sprintf("- %s: %s", q.Text, answer))
		answered[q.ID] = true
	}
	// Answers whose id resolves to no question still surface, labeled by the
	// raw id, sorted for deterministic output.
	var unknown []string
	for id := range answers {
		if !answered[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		answerLines = append(answerLines, fmt.Sprintf("- %s: %s", id, answers[id]))
	}

	var b strings.Builder
	if profile != nil {
		b.WriteString(profileSummary(profile))
		b.WriteString("\n\n")
	}
	b.WriteString(fmt.Sprintf("User wants: %s\n\nUser Preferences:\n%s\n\n", userQuery, strings.Join(answerLines, "\n")))
	b.WriteString("Please search for relevant products and provide recommendations based on these preferences.")

	lowerQuery := strings.ToLower(userQuery)
	if strings.Contains(lowerQuery, "top") || strings.Contains(lowerQuery, "best") {
		b.WriteString("\nReturn the top results ranked by relevance and quality.")
	}
	if strings.Contains(lowerQuery, "haven't") || strings.Contains(lowerQuery, "didn't") ||
		strings.Contains(lowerQuery, "not") {
		b.WriteString("\nExclude items the user has already purchased or watched.")
		if userID != "" {
			b.WriteString(fmt.Sprintf("\nUser ID: %s (check purchase/watch history if available)", userID))
		}
	}
	if profile != nil {
		b.WriteString("\nPersonalize the recommendations to the user profile above.")
	}

	b.WriteString("\n\nProvide a clear, structured list of recommendations with titles, descriptions, and relevant details.")
	return b.String()
}

func profileSummary(p *model.UserProfile) string {
	location := "outside the US"
	if p.LivesInUS {
		location = "in the US"
	}
	return fmt.Sprintf("User profile: %d-year-old %s, living %s.", p.Age, p.Gender, location)
}
