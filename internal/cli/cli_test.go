package cli

import (
	"os"
	"path/filepath"
	"testing"
)

// TestParseOverrides verifies --set pair parsing.
func TestParseOverrides(t *testing.T) {
	got, err := parseOverrides([]string{
		"[CLIENT NAME]=Jane Doe",
		"[AMOUNT OWED]=$4,500.00",
		"[NOTE]=a=b",
	})
	if err != nil {
		t.Fatalf("parseOverrides failed: %v", err)
	}
	if got["[CLIENT NAME]"] != "Jane Doe" {
		t.Errorf("[CLIENT NAME] = %q", got["[CLIENT NAME]"])
	}
	if got["[NOTE]"] != "a=b" {
		t.Errorf("value with = should split on first only: %q", got["[NOTE]"])
	}

	for _, bad := range []string{"no-equals", "=leading"} {
		if _, err := parseOverrides([]string{bad}); err == nil {
			t.Errorf("parseOverrides(%q) accepted", bad)
		}
	}

	empty, err := parseOverrides(nil)
	if err != nil || empty != nil {
		t.Errorf("parseOverrides(nil) = %v, %v", empty, err)
	}
}

// TestLoadRecord verifies the path/row loading shorthand.
func TestLoadRecord(t *testing.T) {
	rec, err := loadRecord("", 0)
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if !rec.IsZero() {
		t.Error("empty path should yield a zero record")
	}

	path := filepath.Join(t.TempDir(), "cases.csv")
	csv := "Client_Name__c,Case_Number__c\nJane Doe,2024-CV-00123\nJohn Smith,2024-CV-00456\n"
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}

	rec, err = loadRecord(path, 1)
	if err != nil {
		t.Fatalf("loadRecord failed: %v", err)
	}
	if rec.Get("Client_Name__c") != "John Smith" {
		t.Errorf("row 1 = %q", rec.Get("Client_Name__c"))
	}

	if _, err := loadRecord(path, 5); err == nil {
		t.Error("out-of-range row accepted")
	}
}

// TestFormatJSON verifies indented output.
func TestFormatJSON(t *testing.T) {
	out, err := formatJSON(map[string]int{"count": 3})
	if err != nil {
		t.Fatalf("formatJSON failed: %v", err)
	}
	if out != "{\n  \"count\": 3\n}" {
		t.Errorf("formatJSON = %q", out)
	}
}
