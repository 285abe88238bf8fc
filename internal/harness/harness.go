package harness

import (
	"fmt"

	"github.com/akratos/alchemy/internal/lambda"
	"github.com/akratos/alchemy/internal/soup"
)

// Run executes a scenario and returns its result. A returned error
// means the scenario itself is broken (unparseable term, bad config);
// expectation failures land in the result's Errors instead.
func Run(scenario *Scenario) (*Result, error) {
	s, err := buildSoup(scenario.Config)
	if err != nil {
		return nil, err
	}

	for i, m := range scenario.Population {
		term, err := lambda.Parse(m.Term)
		if err != nil {
			return nil, fmt.Errorf("population[%d] (%q): %w", i, m.Term, err)
		}
		count := m.Count
		if count == 0 {
			count = 1
		}
		for range count {
			s.Perturb(term)
		}
	}

	result := NewResult()
	for i, step := range scenario.Collisions {
		if err := runCollision(s, i, step, result); err != nil {
			return nil, err
		}
	}

	view := s.View()
	for _, c := range view.ExpressionCounts() {
		result.Population = append(result.Population, PopulationLine{
			Term:  c.Term.String(),
			Count: c.Count,
		})
	}
	result.Entropy = view.PopulationEntropy()

	evaluateAssertions(scenario.Assertions, view, result)
	return result, nil
}

// buildSoup maps a scenario config onto an engine config. Scenario
// defaults differ from engine defaults in one place: filters start off,
// so each scenario arms exactly the filter it is probing.
func buildSoup(cfg ScenarioConfig) (*soup.Soup, error) {
	sc := soup.Config{
		Rules:                          cfg.Rules,
		ReductionLimit:                 cfg.ReductionLimit,
		DiscardIdentity:                cfg.DiscardIdentity,
		DiscardCopyActions:             cfg.DiscardCopyActions,
		DiscardFreeVariableExpressions: cfg.DiscardFreeVariables,
	}
	if len(sc.Rules) == 0 {
		sc.Rules = soup.DefaultConfig().Rules
	}
	if sc.ReductionLimit == 0 {
		sc.ReductionLimit = soup.DefaultConfig().ReductionLimit
	}
	return soup.FromConfig(sc)
}

// runCollision executes one scripted collision: parse the parents,
// run the full rule pipeline, commit outputs on success, and check the
// expect clause.
func runCollision(s *soup.Soup, i int, step CollisionStep, result *Result) error {
	left, err := lambda.Parse(step.Left)
	if err != nil {
		return fmt.Errorf("collisions[%d].left (%q): %w", i, step.Left, err)
	}
	right, err := lambda.Parse(step.Right)
	if err != nil {
		return fmt.Errorf("collisions[%d].right (%q): %w", i, step.Right, err)
	}

	res, ok := s.Collide(left, right)
	trace := CollisionTrace{
		Left:      left.String(),
		Right:     right.String(),
		Committed: ok,
	}
	if ok {
		for j, out := range res.Outputs {
			trace.Outputs = append(trace.Outputs, out.String())
			trace.Steps = append(trace.Steps, res.Records[j].Reductions)
		}
		s.Perturb(res.Outputs...)
	}
	result.Trace = append(result.Trace, trace)

	if step.Expect == nil {
		return nil
	}
	checkExpect(i, step.Expect, res, ok, result)
	return nil
}

func checkExpect(i int, expect *ExpectClause, res *soup.CollisionResult, ok bool, result *Result) {
	wantCommit := expect.Outcome == OutcomeCommit
	if ok != wantCommit {
		result.AddError(fmt.Sprintf("collisions[%d]: expected %s, got %s",
			i, expect.Outcome, outcomeName(ok)))
		return
	}
	if !ok {
		return
	}

	if len(expect.Outputs) > 0 {
		if len(expect.Outputs) != len(res.Outputs) {
			result.AddError(fmt.Sprintf("collisions[%d]: expected %d outputs, got %d",
				i, len(expect.Outputs), len(res.Outputs)))
		} else {
			for j, text := range expect.Outputs {
				want, err := lambda.Parse(text)
				if err != nil {
					result.AddError(fmt.Sprintf("collisions[%d].expect.outputs[%d] (%q): %v", i, j, text, err))
					continue
				}
				if !lambda.AlphaEq(res.Outputs[j], want) {
					result.AddError(fmt.Sprintf("collisions[%d]: output %d is %s, expected %s",
						i, j, res.Outputs[j], want))
				}
			}
		}
	}

	if len(expect.Steps) > 0 {
		if len(expect.Steps) != len(res.Records) {
			result.AddError(fmt.Sprintf("collisions[%d]: expected %d step counts, got %d",
				i, len(expect.Steps), len(res.Records)))
		} else {
			for j, want := range expect.Steps {
				if res.Records[j].Reductions != want {
					result.AddError(fmt.Sprintf("collisions[%d]: rule %d took %d steps, expected %d",
						i, j, res.Records[j].Reductions, want))
				}
			}
		}
	}
}

func outcomeName(ok bool) string {
	if ok {
		return OutcomeCommit
	}
	return OutcomeReject
}
