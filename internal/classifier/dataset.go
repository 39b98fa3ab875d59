// File: internal/classifier/dataset.go
// Description: Template-based synthetic dataset generator. Fills
// category-specific natural-language templates with target, tool, and
// modifier substitutions to produce labeled (text, category) pairs at
// controllable scale.

package classifier

import (
	"math/rand"
	"strings"

	"github.com/xkilldash9x/autopentest/api/schemas"
)

// Sample is one labeled training example.
type Sample struct {
	Text     string                  `json:"text"`
	Category schemas.CommandCategory `json:"category"`
}

// categoryTemplates holds the phrase templates per category. The {target},
// {tool} and {modifier} placeholders are substituted at generation time.
var categoryTemplates = map[schemas.CommandCategory][]string{
	schemas.CategoryRecon: {
		"perform {modifier} reconnaissance on {target}",
		"enumerate hosts and services on {target}",
		"run {modifier} host discovery against {target} using {tool}",
		"footprint the network {target}",
		"gather osint about {target}",
	},
	schemas.CategoryScan: {
		"execute a {modifier} penetration test on {target}",
		"run a full security assessment of {target}",
		"audit {target} with {tool}",
		"conduct a {modifier} security scan of {target}",
	},
	schemas.CategoryVuln: {
		"find vulnerabilities in {target} using {tool}",
		"scan {target} for sql injection vulnerabilities",
		"check {target} for known cve weaknesses",
		"run a {modifier} vulnerability scan against {target}",
		"hunt for security holes in {target}",
	},
	schemas.CategoryWeb: {
		"test the web application {target} for xss",
		"scan website {target} with {tool}",
		"brute force directories on the web app at {target}",
		"check {target} for csrf and xss issues",
	},
	schemas.CategoryPayload: {
		"generate a reverse shell payload for windows",
		"create a {modifier} payload with {tool}",
		"build meterpreter shellcode with evasion",
		"craft a backdoor implant for linux",
	},
	schemas.CategoryMobile: {
		"test the mobile app {target} with {tool}",
		"run dynamic analysis on the android apk {target}",
		"assess ios app security of {target}",
		"hook {target} with frida for runtime analysis",
	},
	schemas.CategoryWireless: {
		"capture wpa handshakes from nearby wifi networks",
		"crack the wireless password with {tool}",
		"deauth clients from the access point {target}",
		"scan for hidden ssid wireless networks",
	},
	schemas.CategoryComplex: {
		"conduct a {modifier} red team operation against {target}",
		"simulate an apt campaign with lateral movement",
		"execute a multi-stage adversary simulation on {target}",
		"run a persistent threat kill chain against {target}",
	},
}

// Substitution pools. Values are deliberately varied so the model learns
// the surrounding phrasing rather than memorizing specific targets.
var (
	targetPool = []string{
		"example.com", "10.0.0.0/24", "192.168.1.50", "https://api.internal.test",
		"corp.target.net", "banking.apk", "203.0.113.7", "shop.victim.io",
	}
	toolPool = []string{
		"nmap", "nuclei", "sqlmap", "nikto", "msfvenom", "frida", "aircrack-ng",
		"gobuster",
	}
	modifierPool = []string{
		"stealthy", "aggressive", "quick", "comprehensive", "thorough", "passive",
	}
)

// Generator produces deterministic synthetic corpora for a given seed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator seeded for reproducible corpora.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate produces n labeled samples, cycling categories round-robin so
// the class distribution stays balanced regardless of n.
func (g *Generator) Generate(n int) []Sample {
	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		cat := schemas.AllCategories[i%len(schemas.AllCategories)]
		templates := categoryTemplates[cat]
		text := g.fill(templates[g.rng.Intn(len(templates))])
		samples = append(samples, Sample{Text: text, Category: cat})
	}
	return samples
}

func (g *Generator) fill(template string) string {
	out := template
	out = strings.Replace(out, "{target}", targetPool[g.rng.Intn(len(targetPool))], 1)
	out = strings.Replace(out, "{tool}", toolPool[g.rng.Intn(len(toolPool))], 1)
	out = strings.Replace(out, "{modifier}", modifierPool[g.rng.Intn(len(modifierPool))], 1)
	return out
}

// Split3 shuffles the samples and cuts them into train/validation/test
// partitions. Fractions are of the total; the test share is the remainder.
func (g *Generator) Split3(samples []Sample, trainFrac, valFrac float64) (train, val, test []Sample) {
	shuffled := make([]Sample, len(samples))
	copy(shuffled, samples)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	trainEnd := int(float64(len(shuffled)) * trainFrac)
	valEnd := trainEnd + int(float64(len(shuffled))*valFrac)
	if valEnd > len(shuffled) {
		valEnd = len(shuffled)
	}
	return shuffled[:trainEnd], shuffled[trainEnd:valEnd], shuffled[valEnd:]
}

// Histogram returns the per-category sample counts, used by the training
// command to report corpus balance.
func Histogram(samples []Sample) map[schemas.CommandCategory]int {
	hist := make(map[schemas.CommandCategory]int)
	for _, s := range samples {
		hist[s.Category]++
	}
	return hist
}
