package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: a fixture population, an
// optional script of explicit collisions, and assertions on the final
// population.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Config overrides engine knobs. Zero values fall back to the
	// classic rule set and reduction budget; the discard filters
	// default to off so scenarios opt in to the filter under test.
	Config ScenarioConfig `yaml:"config,omitempty"`

	// Population is the fixture, inserted verbatim before any
	// collision runs.
	Population []Member `yaml:"population"`

	// Collisions are executed in order against the fixture. Successful
	// outputs join the population; rejected collisions leave it
	// untouched.
	Collisions []CollisionStep `yaml:"collisions,omitempty"`

	// Assertions validate the final population.
	Assertions []Assertion `yaml:"assertions"`
}

// ScenarioConfig is the subset of engine configuration a scenario may
// override. Sampling-related knobs are deliberately absent: scripted
// collisions never draw from the population.
type ScenarioConfig struct {
	Rules                []string `yaml:"rules,omitempty"`
	ReductionLimit       int      `yaml:"reduction_limit,omitempty"`
	DiscardIdentity      bool     `yaml:"discard_identity,omitempty"`
	DiscardCopyActions   bool     `yaml:"discard_copy_actions,omitempty"`
	DiscardFreeVariables bool     `yaml:"discard_free_variables,omitempty"`
}

// Member is one fixture entry: a term in classic notation and its
// multiplicity.
type Member struct {
	Term string `yaml:"term"`

	// Count defaults to 1.
	Count int `yaml:"count,omitempty"`
}

// CollisionStep collides an explicit parent pair through the full rule
// pipeline.
type CollisionStep struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`

	// Expect validates the collision outcome. If nil the outcome is
	// recorded in the trace but not checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// Collision outcome names used in ExpectClause.Outcome.
const (
	OutcomeCommit = "commit"
	OutcomeReject = "reject"
)

// ExpectClause specifies the expected outcome of one collision step.
type ExpectClause struct {
	// Outcome is "commit" or "reject".
	Outcome string `yaml:"outcome"`

	// Outputs are the expected rule outputs in rule order, compared up
	// to alpha-equivalence. Only meaningful for commits; if empty, the
	// outputs are not checked.
	Outputs []string `yaml:"outputs,omitempty"`

	// Steps are the expected reduction step counts in rule order. If
	// empty, the counts are not checked.
	Steps []int `yaml:"steps,omitempty"`
}

// Assertion validates the final population.
type Assertion struct {
	// Type selects the assertion:
	//   - "population_count": total population size equals Count
	//   - "unique_count": number of distinct classes equals Count
	//   - "entropy": base-10 entropy equals Value within Tolerance
	//   - "population_of": the class of Term has multiplicity Count
	//   - "top_k": the K most frequent classes are Terms, in order
	Type string `yaml:"type"`

	Count     int      `yaml:"count,omitempty"`
	Term      string   `yaml:"term,omitempty"`
	Value     float64  `yaml:"value,omitempty"`
	Tolerance float64  `yaml:"tolerance,omitempty"`
	K         int      `yaml:"k,omitempty"`
	Terms     []string `yaml:"terms,omitempty"`
}

// Assertion type constants.
const (
	AssertPopulationCount = "population_count"
	AssertUniqueCount     = "unique_count"
	AssertEntropy         = "entropy"
	AssertPopulationOf    = "population_of"
	AssertTopK            = "top_k"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected, so typos fail loudly instead of silently validating
// nothing.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Population) == 0 {
		return fmt.Errorf("population is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, m := range s.Population {
		if m.Term == "" {
			return fmt.Errorf("population[%d]: term is required", i)
		}
		if m.Count < 0 {
			return fmt.Errorf("population[%d]: count must be non-negative", i)
		}
	}

	for i, step := range s.Collisions {
		if step.Left == "" || step.Right == "" {
			return fmt.Errorf("collisions[%d]: left and right are required", i)
		}
		if step.Expect != nil {
			switch step.Expect.Outcome {
			case OutcomeCommit, OutcomeReject:
			default:
				return fmt.Errorf("collisions[%d].expect: outcome must be %q or %q, got %q",
					i, OutcomeCommit, OutcomeReject, step.Expect.Outcome)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPopulationCount, AssertUniqueCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertEntropy:
		if a.Tolerance < 0 {
			return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
		}
	case AssertPopulationOf:
		if a.Term == "" {
			return fmt.Errorf("assertions[%d]: term is required for population_of", index)
		}
	case AssertTopK:
		if a.K < 1 {
			return fmt.Errorf("assertions[%d]: k must be >= 1 for top_k", index)
		}
		if len(a.Terms) == 0 {
			return fmt.Errorf("assertions[%d]: terms list is required for top_k", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
