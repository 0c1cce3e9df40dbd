package learning

import "github.com/casekit/letter-forge/internal/storage"

const (
	// neutralSuccessRate seeds a brand-new pattern with no positive signal.
	neutralSuccessRate = 0.5

	// positiveSignal is the feedback signal folded into the running average.
	positiveSignal = 1.0
)

// updatePattern computes the next state of a template pattern for one
// generation event. Pure function; existing is nil when the placeholder set
// has never been seen.
//
// Creation: successRate is 1.0 on positive feedback, 0.5 otherwise.
// Update: usageCount increments; positive feedback folds a 1.0 signal into
// the running average as (rate*(n-1) + 1) / n. Non-positive feedback leaves
// the rate untouched while the count grows, which dilutes the weight of the
// next positive signal.
func updatePattern(existing *storage.TemplatePattern, placeholders []string, event storage.LearningEvent) storage.TemplatePattern {
	if existing == nil {
		rate := neutralSuccessRate
		if event.UserFeedback == FeedbackPositive {
			rate = positiveSignal
		}

		common := make(map[string][]string, len(event.PlaceholderMappings))
		for placeholder, value := range event.PlaceholderMappings {
			common[placeholder] = []string{value}
		}

		return storage.TemplatePattern{
			Placeholders:   placeholders,
			Structure:      event.TemplateStructure,
			CommonMappings: common,
			SuccessRate:    rate,
			UsageCount:     1,
		}
	}

	updated := *existing
	updated.UsageCount++

	if event.UserFeedback == FeedbackPositive {
		n := float64(updated.UsageCount)
		updated.SuccessRate = (updated.SuccessRate*(n-1) + positiveSignal) / n
	}

	// Track the most recent structure for this placeholder set.
	updated.Structure = event.TemplateStructure
	updated.Placeholders = placeholders

	// Copy the map so the caller's pattern is never mutated.
	common := make(map[string][]string, len(updated.CommonMappings))
	for placeholder, values := range updated.CommonMappings {
		common[placeholder] = append([]string(nil), values...)
	}
	updated.CommonMappings = common

	for placeholder, value := range event.PlaceholderMappings {
		if !containsValue(updated.CommonMappings[placeholder], value) {
			updated.CommonMappings[placeholder] = append(updated.CommonMappings[placeholder], value)
		}
	}

	return updated
}

func containsValue(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
