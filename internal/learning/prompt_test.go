package learning

import (
	"strings"
	"testing"

	"github.com/casekit/letter-forge/internal/storage"
)

// TestBuildInstructionsNoHistory verifies a cold start produces a plain
// prompt with no enrichment and no formatting rules.
func TestBuildInstructionsNoHistory(t *testing.T) {
	got := BuildInstructions("Dear [CLIENT NAME],", map[string]string{"[CLIENT NAME]": "Jane Doe"}, nil, nil)

	if strings.Contains(got, "LEARNED BEST PRACTICES") {
		t.Error("cold start should not cite patterns")
	}
	if strings.Contains(got, "CRITICAL FORMATTING RULES") {
		t.Error("formatting rules should require a qualifying pattern")
	}
	if !strings.Contains(got, "TEMPLATE TO PROCESS:\nDear [CLIENT NAME],") {
		t.Error("template text missing from prompt")
	}
	if !strings.Contains(got, `[CLIENT NAME] → "Jane Doe"`) {
		t.Error("replacement values missing from prompt")
	}
	if !strings.Contains(got, "PROCESSING INSTRUCTIONS:") {
		t.Error("processing instructions missing from prompt")
	}
}

// TestBuildInstructionsEnrichment verifies high-success patterns are cited
// and carry the formatting rules with them.
func TestBuildInstructionsEnrichment(t *testing.T) {
	events := []storage.LearningEvent{{UserFeedback: FeedbackPositive}}
	patterns := []storage.TemplatePattern{
		{Key: "a", SuccessRate: 0.9, UsageCount: 4},
	}

	got := BuildInstructions("Dear [CLIENT NAME],", map[string]string{}, events, patterns)

	if !strings.Contains(got, "LEARNED BEST PRACTICES (from 1 previous generations)") {
		t.Error("enrichment header missing")
	}
	if !strings.Contains(got, "CRITICAL FORMATTING RULES") {
		t.Error("formatting rules missing alongside citations")
	}
	if !strings.Contains(got, "90.0%") {
		t.Error("pattern success rate not cited")
	}
}

// TestBuildInstructionsThreshold verifies exactly-0.7 patterns do not
// qualify; the bar is strictly above.
func TestBuildInstructionsThreshold(t *testing.T) {
	patterns := []storage.TemplatePattern{
		{Key: "border", SuccessRate: 0.7, UsageCount: 2},
	}

	got := BuildInstructions("x [A] y", map[string]string{}, nil, patterns)
	if strings.Contains(got, "LEARNED BEST PRACTICES") {
		t.Error("0.7 success rate must not qualify for citation")
	}
}

// TestBuildInstructionsTopThree verifies citation is capped at three
// patterns, best first.
func TestBuildInstructionsTopThree(t *testing.T) {
	patterns := []storage.TemplatePattern{
		{Key: "a", SuccessRate: 0.75},
		{Key: "b", SuccessRate: 0.95},
		{Key: "c", SuccessRate: 0.85},
		{Key: "d", SuccessRate: 0.80},
	}

	got := BuildInstructions("x [A] y", map[string]string{}, nil, patterns)

	if strings.Contains(got, "75.0%") {
		t.Error("fourth-best pattern should not be cited")
	}

	// Best first.
	i95 := strings.Index(got, "95.0%")
	i85 := strings.Index(got, "85.0%")
	i80 := strings.Index(got, "80.0%")
	if i95 == -1 || i85 == -1 || i80 == -1 {
		t.Fatal("top three patterns not all cited")
	}
	if !(i95 < i85 && i85 < i80) {
		t.Error("citations not ordered best first")
	}
}

// TestBuildInstructionsStableValueOrder verifies replacement values are
// emitted in sorted placeholder order.
func TestBuildInstructionsStableValueOrder(t *testing.T) {
	mappings := map[string]string{
		"[ZULU]":  "z",
		"[ALPHA]": "a",
		"[MIKE]":  "m",
	}

	got := BuildInstructions("t", mappings, nil, nil)

	iA := strings.Index(got, "[ALPHA]")
	iM := strings.Index(got, "[MIKE]")
	iZ := strings.Index(got, "[ZULU]")
	if !(iA < iM && iM < iZ) {
		t.Error("replacement values not in sorted order")
	}
}

// TestSystemInstruction pins the system prompt the generator sends.
func TestSystemInstruction(t *testing.T) {
	if !strings.HasPrefix(SystemInstruction, "You are a precise legal document processor.") {
		t.Errorf("unexpected system instruction: %q", SystemInstruction)
	}
}
