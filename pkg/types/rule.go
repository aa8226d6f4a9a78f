package types

import (
	"fmt"
	"strings"
)

// WildcardExtension matches files of any extension, including files without one.
const WildcardExtension = "*"

// Rule is a named, ordered group of conditions. The name is only used in log output.
type Rule struct {
	Name       string      `yaml:"name"`
	Conditions []Condition `yaml:"conditions"`
}

// Condition is the atomic match unit: an extension set plus optional filename
// substrings, mapped to a destination template.
type Condition struct {
	Extensions       []string `yaml:"extension"`                   // e.g. [".pdf", ".docx"] or ["*"]
	FilenameContains []string `yaml:"filename_contains,omitempty"` // empty matches every name
	Destination      string   `yaml:"destination"`                 // e.g. "Documents/{extension_group}"
	SubfolderPattern string   `yaml:"subfolder_pattern,omitempty"` // e.g. "YYYY/MM"
}

// HasWildcard reports whether the condition accepts any extension.
func (c Condition) HasWildcard() bool {
	for _, ext := range c.Extensions {
		if strings.TrimSpace(ext) == WildcardExtension {
			return true
		}
	}
	return false
}

// DateGroups holds the age thresholds, in days, used for the {date_group} placeholder.
type DateGroups struct {
	LastWeek  int `yaml:"last_week"`
	LastMonth int `yaml:"last_month"`
	Older     int `yaml:"older,omitempty"` // accepted for compatibility, ages past last_month are always "Older"
}

// Date group names produced by the path resolver.
const (
	DateGroupLastWeek  = "Last_Week"
	DateGroupLastMonth = "Last_Month"
	DateGroupOlder     = "Older"
	DateGroupUnknown   = "Unknown"
)

// ConflictPolicy decides what happens when a destination file already exists.
type ConflictPolicy string

const (
	ConflictSkip      ConflictPolicy = "skip"
	ConflictOverwrite ConflictPolicy = "overwrite"
	ConflictRename    ConflictPolicy = "rename"
)

// ParseConflictPolicy converts a config value into a ConflictPolicy. Case and
// surrounding space are ignored; any other spelling is an error.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ConflictSkip, ConflictOverwrite, ConflictRename:
		return p, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q (want skip, overwrite or rename)", s)
	}
}

// NormalizeExtension lowercases an extension and strips its leading dot, so
// ".PDF", "PDF" and "pdf" compare equal.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
