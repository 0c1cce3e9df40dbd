package learning

import "github.com/casekit/letter-forge/internal/storage"

// lowSuccessThreshold marks patterns that warrant template refinement.
const lowSuccessThreshold = 0.5

// negativeFeedbackAdvice is emitted when any negative feedback exists.
var negativeFeedbackAdvice = []string{
	"Consider reviewing placeholder naming conventions for better auto-mapping",
	"Ensure template formatting is consistent with legal standards",
	"Verify all required fields are properly bracketed in template",
}

// lowSuccessAdvice is emitted when any pattern has a low success rate.
const lowSuccessAdvice = "Some template patterns have low success rates - consider template refinement"

// Suggestions is a pure function over the event log and pattern set,
// returning canned improvement advice. Deterministic: the same inputs always
// yield the same zero to four strings.
func Suggestions(events []storage.LearningEvent, patterns []storage.TemplatePattern) []string {
	suggestions := []string{}

	for _, event := range events {
		if event.UserFeedback == FeedbackNegative {
			suggestions = append(suggestions, negativeFeedbackAdvice...)
			break
		}
	}

	for _, pattern := range patterns {
		if pattern.SuccessRate < lowSuccessThreshold {
			suggestions = append(suggestions, lowSuccessAdvice)
			break
		}
	}

	return suggestions
}

// ImprovementSuggestions reads the store and computes improvement advice.
func (e *Engine) ImprovementSuggestions() ([]string, error) {
	events, err := e.store.GetEvents()
	if err != nil {
		return nil, err
	}

	patterns, err := e.store.GetAllPatterns()
	if err != nil {
		return nil, err
	}

	return Suggestions(events, patterns), nil
}
