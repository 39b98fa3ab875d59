// File: internal/nlp/parser_test.go
package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/autopentest/api/schemas"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return NewParser(zaptest.NewLogger(t))
}

func TestParser_TargetExtraction(t *testing.T) {
	parser := newTestParser(t)

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "IPv4 address",
			input:    "scan 192.168.1.50 for open ports",
			expected: []string{"192.168.1.50"},
		},
		{
			name:     "CIDR range",
			input:    "enumerate hosts on 10.0.0.0/24 please",
			expected: []string{"10.0.0.0/24"},
		},
		{
			name:     "URL absorbs its own hostname",
			input:    "test https://shop.victim.io/login for weaknesses",
			expected: []string{"https://shop.victim.io/login"},
		},
		{
			name:     "bare domain",
			input:    "footprint corp.target.net quietly",
			expected: []string{"corp.target.net"},
		},
		{
			name:     "IP family ordered before domain family",
			input:    "assess corp.target.net and 203.0.113.7 together",
			expected: []string{"203.0.113.7", "corp.target.net"},
		},
		{
			name:     "duplicates collapse to first-seen",
			input:    "scan 10.1.1.1 then rescan 10.1.1.1 harder",
			expected: []string{"10.1.1.1"},
		},
		{
			name:     "denylisted hostname dropped",
			input:    "this also runs fine against localhost.localdomain by the way",
			expected: nil,
		},
		{
			name:     "no targets in plain prose",
			input:    "generate a reverse shell payload for windows",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := parser.Parse(tt.input)
			assert.Equal(t, tt.expected, intent.Targets)
		})
	}
}

func TestParser_Modifiers(t *testing.T) {
	parser := newTestParser(t)

	tests := []struct {
		input    string
		expected []string
	}{
		{"perform stealthy reconnaissance on the network", []string{"stealth"}},
		{"quickly and aggressively scan everything", []string{"aggressive", "quick"}},
		{"run a comprehensive audit with antivirus evasion", []string{"comprehensive", "evasive"}},
		{"scan 10.0.0.1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent := parser.Parse(tt.input)
			assert.Equal(t, tt.expected, intent.Modifiers)
		})
	}
}

func TestParser_CategorySelection(t *testing.T) {
	parser := newTestParser(t)

	tests := []struct {
		input    string
		expected schemas.CommandCategory
	}{
		{"perform stealthy reconnaissance on 192.168.1.0/24 network", schemas.CategoryRecon},
		{"find all vulnerabilities in corp.target.net using nuclei and sqlmap", schemas.CategoryVuln},
		{"test the web application for xss and csrf issues", schemas.CategoryWeb},
		{"generate reverse shell payload for windows with antivirus evasion", schemas.CategoryPayload},
		{"run dynamic analysis on the android apk with frida", schemas.CategoryMobile},
		{"capture wpa handshakes from nearby wifi networks", schemas.CategoryWireless},
		{"crack the wireless password with aircrack-ng", schemas.CategoryWireless},
		{"execute a red team apt campaign with lateral movement", schemas.CategoryComplex},
		{"execute a penetration test against the lab", schemas.CategoryScan},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			intent := parser.Parse(tt.input)
			assert.Equal(t, tt.expected, intent.PrimaryCommand, "input: %s", tt.input)
		})
	}
}

func TestParser_UnknownCategory(t *testing.T) {
	parser := newTestParser(t)

	intent := parser.Parse("please make me a sandwich")
	assert.Equal(t, schemas.CategoryUnknown, intent.PrimaryCommand)
	assert.Zero(t, intent.Confidence)
	assert.Empty(t, intent.Alternatives)
}

// TestParser_IntentInvariants checks the contract every Intent must honor:
// confidences in [0,1], primary >= alternatives, alternatives descending,
// no duplicate targets.
func TestParser_IntentInvariants(t *testing.T) {
	parser := newTestParser(t)

	inputs := []string{
		"Scan example.com for SQL injection vulnerabilities using sqlmap",
		"Perform stealthy reconnaissance on 192.168.1.0/24 network quickly",
		"Quickly scan target.com for vulnerabilities then test the web application for SQL injection",
		"Conduct comprehensive red team operation against corporate infrastructure",
		"nothing actionable here at all",
	}

	for _, input := range inputs {
		intent := parser.Parse(input)

		require.GreaterOrEqual(t, intent.Confidence, 0.0)
		require.LessOrEqual(t, intent.Confidence, 1.0)

		prev := intent.Confidence
		for _, alt := range intent.Alternatives {
			assert.GreaterOrEqual(t, alt.Confidence, 0.0)
			assert.LessOrEqual(t, alt.Confidence, prev, "alternatives must be confidence-descending")
			prev = alt.Confidence
		}

		seen := make(map[string]struct{})
		for _, target := range intent.Targets {
			_, dup := seen[target]
			assert.False(t, dup, "duplicate target %q", target)
			seen[target] = struct{}{}
		}
	}
}

// TestParser_SQLInjectionRequest pins the canonical end-to-end parse: the
// domain is extracted and the category lands on vuln with real confidence.
func TestParser_SQLInjectionRequest(t *testing.T) {
	parser := newTestParser(t)

	intent := parser.Parse("Scan example.com for SQL injection vulnerabilities using sqlmap")

	assert.Equal(t, []string{"example.com"}, intent.Targets)
	assert.Equal(t, schemas.CategoryVuln, intent.PrimaryCommand)
	assert.Greater(t, intent.Confidence, 0.5)
}

func TestParser_Purity(t *testing.T) {
	parser := newTestParser(t)
	input := "find all vulnerabilities in corp.target.net using nuclei"

	first := parser.Parse(input)
	second := parser.Parse(input)
	assert.Equal(t, first, second, "Parse must be a pure function of its input")
}
