package config

import (
	"fmt"
	"strings"
)

// Typed errors for the config layer. Each one carries the path that failed
// and a hint the CLI can surface, so callers get an actionable message
// instead of a raw os or json error.

// PermissionError reports a config file the process cannot read or write.
type PermissionError struct {
	Path    string
	Op      string // "read" or "write"
	Fix     string // command the user can run to repair permissions
	Details string
}

func (e *PermissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot %s config file %s: permission denied\n", e.Op, e.Path)
	if e.Details != "" {
		b.WriteString(e.Details)
		b.WriteByte('\n')
	}
	b.WriteString("💡 Fix: ")
	b.WriteString(e.Fix)
	return b.String()
}

// ConfigNotFoundError reports a missing config file.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("no config file at %s\n\n💡 %s", e.Path, e.Hint)
}

// InvalidConfigError reports a config file that exists but cannot be used,
// either because the JSON is malformed or a setting fails validation.
type InvalidConfigError struct {
	Path    string
	Message string
	Hint    string
}

func (e *InvalidConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "config file %s is invalid\n", e.Path)
	if e.Message != "" {
		b.WriteString(e.Message)
		b.WriteByte('\n')
	}
	if e.Hint != "" {
		b.WriteString("💡 ")
		b.WriteString(e.Hint)
	}
	return b.String()
}
