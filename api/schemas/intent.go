// File: api/schemas/intent.go
package schemas

// CommandCategory is the closed set of command categories the decision loop
// understands. New categories must be added here and to every exhaustive
// switch over the type.
type CommandCategory string

const (
	CategoryRecon    CommandCategory = "recon"    // Network and host reconnaissance.
	CategoryScan     CommandCategory = "scan"     // Full, multi-tool assessment sweep.
	CategoryVuln     CommandCategory = "vuln"     // Targeted vulnerability discovery.
	CategoryWeb      CommandCategory = "web"      // Web application testing.
	CategoryPayload  CommandCategory = "payload"  // Payload and shellcode generation.
	CategoryMobile   CommandCategory = "mobile"   // Mobile application analysis.
	CategoryWireless CommandCategory = "wireless" // Wireless network attacks.
	CategoryComplex  CommandCategory = "complex"  // Multi-stage, agent-driven operations.
	CategoryUnknown  CommandCategory = "unknown"  // No category could be determined.
)

// AllCategories lists every classifiable category in declaration order.
// The order is load-bearing: keyword-overlap ties in the lexical parser and
// the classifier's output layer indexing both follow this order.
// CategoryUnknown is deliberately excluded; it is a degraded result, not a
// class the model is trained on.
var AllCategories = []CommandCategory{
	CategoryRecon,
	CategoryScan,
	CategoryVuln,
	CategoryWeb,
	CategoryPayload,
	CategoryMobile,
	CategoryWireless,
	CategoryComplex,
}

// IsValid reports whether c is a member of the closed category set,
// including CategoryUnknown.
func (c CommandCategory) IsValid() bool {
	switch c {
	case CategoryRecon, CategoryScan, CategoryVuln, CategoryWeb,
		CategoryPayload, CategoryMobile, CategoryWireless, CategoryComplex,
		CategoryUnknown:
		return true
	}
	return false
}

// CategoryScore pairs a category with a confidence value in [0,1].
type CategoryScore struct {
	Category   CommandCategory `json:"category"`
	Confidence float64         `json:"confidence"`
}

// Intent is the immutable result of parsing and classifying one request.
// Alternatives are sorted confidence-descending and never exceed the
// primary confidence; Targets contain no duplicates.
type Intent struct {
	PrimaryCommand CommandCategory `json:"primary_command"`
	Confidence     float64         `json:"confidence"`
	Targets        []string        `json:"targets,omitempty"`
	Modifiers      []string        `json:"modifiers,omitempty"`
	Alternatives   []CategoryScore `json:"alternatives,omitempty"`
}

// HasTarget reports whether the parser extracted at least one target.
func (i Intent) HasTarget() bool { return len(i.Targets) > 0 }

// PrimaryTarget returns the first extracted target, or "" if none.
func (i Intent) PrimaryTarget() string {
	if len(i.Targets) == 0 {
		return ""
	}
	return i.Targets[0]
}

// PlanStep is one concrete, executable (module, args) pair.
type PlanStep struct {
	Module     string   `json:"module"`
	Args       []string `json:"args"`
	Confidence float64  `json:"confidence"`
}

// Plan is the synthesized, executable description of one decision cycle.
// It is immutable once returned; a new cycle produces a new Plan.
type Plan struct {
	Module       string     `json:"module"`
	Args         []string   `json:"args"`
	Alternatives []PlanStep `json:"alternatives,omitempty"`
}

// Outcome is what the external execution collaborator reports back after
// running a Plan. This subsystem places no constraints on how it was
// produced, only on its shape.
type Outcome struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
