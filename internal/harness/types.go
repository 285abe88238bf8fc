package harness

// CollisionTrace records one scripted collision for the report.
type CollisionTrace struct {
	Left      string `json:"left"`
	Right     string `json:"right"`
	Committed bool   `json:"committed"`

	// Outputs and Steps are populated only for commits, in rule order.
	Outputs []string `json:"outputs,omitempty"`
	Steps   []int    `json:"steps,omitempty"`
}

// PopulationLine is one class of the final population, printed form
// plus multiplicity.
type PopulationLine struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one entry per scripted collision, in order.
	Trace []CollisionTrace `json:"trace"`

	// Population is the final population by class, in first-encounter
	// order.
	Population []PopulationLine `json:"population"`

	// Entropy is the final base-10 population entropy.
	Entropy float64 `json:"entropy"`

	// Errors lists every failed expectation. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{Pass: true, Trace: []CollisionTrace{}}
}

// AddError records a failed expectation and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
