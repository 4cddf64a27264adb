package ensname

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantOK     bool
		wantResult string
		wantIssue  string
	}{
		{
			name:       "uppercase with suffix",
			input:      "Test.ETH",
			wantOK:     true,
			wantResult: "test.eth",
		},
		{
			name:       "suffix appended when missing",
			input:      "vitalik",
			wantOK:     true,
			wantResult: "vitalik.eth",
		},
		{
			name:       "surrounding whitespace trimmed",
			input:      "  myname.eth  ",
			wantOK:     true,
			wantResult: "myname.eth",
		},
		{
			name:      "too short",
			input:     "ab",
			wantOK:    false,
			wantIssue: "Name too short (minimum 3 characters)",
		},
		{
			name:      "invalid characters",
			input:     "in valid@.eth",
			wantOK:    false,
			wantIssue: "Contains invalid characters",
		},
		{
			name:      "consecutive hyphens",
			input:     "foo--bar.eth",
			wantOK:    false,
			wantIssue: "Contains consecutive hyphens",
		},
		{
			name:      "consecutive dots",
			input:     "foo..bar.eth",
			wantOK:    false,
			wantIssue: "Contains consecutive dots",
		},
		{
			name:      "leading hyphen",
			input:     "-foo.eth",
			wantOK:    false,
			wantIssue: "Cannot start or end with hyphen",
		},
		{
			name:      "leading dot",
			input:     ".foo.eth",
			wantOK:    false,
			wantIssue: "Cannot start with a dot",
		},
		{
			name:      "label too long",
			input:     strings.Repeat("a", 64) + ".eth",
			wantOK:    false,
			wantIssue: "exceeds 63 characters",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, normalized, issues := Normalize(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantResult != "" {
				assert.Equal(t, tt.wantResult, normalized)
			}
			if tt.wantOK {
				assert.Empty(t, issues)
				return
			}
			require.NotEmpty(t, issues)
			found := false
			for _, issue := range issues {
				if strings.Contains(issue, tt.wantIssue) {
					found = true
				}
			}
			assert.True(t, found, "expected issue %q in %v", tt.wantIssue, issues)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	ok, first, _ := Normalize("Some-Name")
	require.True(t, ok)

	ok, second, _ := Normalize(first)
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestStripSuffix(t *testing.T) {
	assert.Equal(t, "test", StripSuffix("test.eth"))
	assert.Equal(t, "test", StripSuffix("TEST.ETH"))
	assert.Equal(t, "nosuffix", StripSuffix("nosuffix"))
	assert.Equal(t, "sub.parent", StripSuffix("sub.parent.eth"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("vitalik.eth"))
	assert.False(t, Valid("a"))
	assert.False(t, Valid("bad name.eth"))
}
