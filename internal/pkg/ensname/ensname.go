// Package ensname validates and normalizes ENS names. It is pure: no
// network access, no state, callable standalone.
package ensname

import (
	"fmt"
	"strings"
)

// Suffix is the canonical top-level suffix appended when missing.
const Suffix = ".eth"

// maxLabelLength is the ENS per-label limit.
const maxLabelLength = 63

const allowedChars = "abcdefghijklmnopqrstuvwxyz0123456789-."

// Normalize lower-cases raw, appends the canonical suffix when missing and
// checks every syntax rule. All violated rules are collected into issues;
// ok is true only when issues is empty. The returned normalized form is
// produced even for invalid input so callers can report it.
func Normalize(raw string) (ok bool, normalized string, issues []string) {
	normalized = strings.ToLower(strings.TrimSpace(raw))

	if len(strings.TrimSuffix(normalized, Suffix)) < 3 {
		issues = append(issues, "Name too short (minimum 3 characters)")
	}

	if !strings.HasSuffix(normalized, Suffix) {
		normalized += Suffix
	}

	for _, r := range normalized {
		if !strings.ContainsRune(allowedChars, r) {
			issues = append(issues, "Contains invalid characters")
			break
		}
	}

	if strings.Contains(normalized, "--") {
		issues = append(issues, "Contains consecutive hyphens")
	}
	if strings.Contains(normalized, "..") {
		issues = append(issues, "Contains consecutive dots")
	}
	if strings.HasPrefix(normalized, "-") || strings.HasSuffix(normalized, "-") {
		issues = append(issues, "Cannot start or end with hyphen")
	}
	if strings.HasPrefix(normalized, ".") {
		issues = append(issues, "Cannot start with a dot")
	}

	for _, label := range strings.Split(normalized, ".") {
		if len(label) > maxLabelLength {
			issues = append(issues, fmt.Sprintf("Label %q exceeds %d characters", label, maxLabelLength))
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			// Covered for the whole name above; repeated per label so inner
			// labels like "foo.-bar.eth" are reported too.
			if !strings.HasPrefix(normalized, "-") && !strings.HasSuffix(normalized, "-") {
				issues = append(issues, fmt.Sprintf("Label %q cannot start or end with hyphen", label))
			}
		}
	}

	return len(issues) == 0, normalized, issues
}

// Valid is a convenience wrapper returning only the verdict.
func Valid(raw string) bool {
	ok, _, _ := Normalize(raw)
	return ok
}

// StripSuffix removes the canonical suffix, yielding the registrable label
// for controller calls (availability, rent price, register).
func StripSuffix(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), Suffix)
}
