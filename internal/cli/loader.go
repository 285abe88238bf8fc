package cli

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/akratos/alchemy/internal/experiment"
	"github.com/akratos/alchemy/internal/gen"
	"github.com/akratos/alchemy/internal/lambda"
	"github.com/akratos/alchemy/internal/soup"
)

//go:embed config_schema.cue
var configSchema string

// ExperimentConfig is the YAML shape of an experiment file. Engine and
// generator sections are overlays: absent fields keep the classic
// defaults.
type ExperimentConfig struct {
	Name           string       `yaml:"name"`
	Runs           int          `yaml:"runs"`
	RunLength      int          `yaml:"run_length"`
	PollInterval   int          `yaml:"poll_interval"`
	Seed           uint64       `yaml:"seed,omitempty"`
	SeedPopulation int          `yaml:"seed_population"`
	Soup           SoupOverlay  `yaml:"soup,omitempty"`
	Gen            GenOverlay   `yaml:"gen,omitempty"`
	Probes         ProbesConfig `yaml:"probes,omitempty"`
}

// SoupOverlay overrides engine knobs. The boolean filters use pointers
// so "absent" and "explicitly false" stay distinguishable: the classic
// defaults switch most filters on.
type SoupOverlay struct {
	Rules                  []string `yaml:"rules,omitempty"`
	ReductionLimit         int      `yaml:"reduction_limit,omitempty"`
	DiscardIdentity        *bool    `yaml:"discard_identity,omitempty"`
	DiscardCopyActions     *bool    `yaml:"discard_copy_actions,omitempty"`
	DiscardFreeVariables   *bool    `yaml:"discard_free_variables,omitempty"`
	DiscardParents         *bool    `yaml:"discard_parents,omitempty"`
	MaintainPopulationSize *bool    `yaml:"maintain_population_size,omitempty"`
}

// GenOverlay overrides term generator knobs.
type GenOverlay struct {
	Size               int     `yaml:"size,omitempty"`
	FreeVarProbability float64 `yaml:"freevar_probability,omitempty"`
	MaxFreeVars        int     `yaml:"max_free_vars,omitempty"`
}

// ProbesConfig selects and parameterizes the polling probes. An empty
// section defaults to the entropy probe.
type ProbesConfig struct {
	Entropy   bool        `yaml:"entropy,omitempty"`
	Recursive bool        `yaml:"recursive,omitempty"`
	TopK      int         `yaml:"top_k,omitempty"`
	Track     []TrackSpec `yaml:"track,omitempty"`
	Motif     *MotifSpec  `yaml:"motif,omitempty"`
}

// TrackSpec follows the multiplicity of one term's class over time.
type TrackSpec struct {
	Label string `yaml:"label"`
	Term  string `yaml:"term"`
}

// MotifSpec is a track with a kill switch: the run stops once the
// class reaches the threshold.
type MotifSpec struct {
	Label     string `yaml:"label"`
	Term      string `yaml:"term"`
	Threshold int    `yaml:"threshold"`
}

// LoadExperimentConfig reads an experiment YAML file, rejects unknown
// fields, and validates it against the embedded CUE schema.
func LoadExperimentConfig(path string) (*ExperimentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read config", err)
	}

	var cfg ExperimentConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to parse config", err)
	}

	if err := validateAgainstSchema(path, data); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return &cfg, nil
}

// validateAgainstSchema unifies the YAML document with #Experiment and
// demands a concrete result.
func validateAgainstSchema(path string, data []byte) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(configSchema).LookupPath(cue.ParsePath("#Experiment"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return err
	}
	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return err
	}

	return schema.Unify(value).Validate(cue.Concrete(true))
}

// Params lowers the config into sweep parameters, applying the classic
// defaults to everything the overlays leave unset.
func (c *ExperimentConfig) Params() experiment.Params {
	sc := soup.DefaultConfig()
	if len(c.Soup.Rules) > 0 {
		sc.Rules = c.Soup.Rules
	}
	if c.Soup.ReductionLimit > 0 {
		sc.ReductionLimit = c.Soup.ReductionLimit
	}
	if c.Soup.DiscardIdentity != nil {
		sc.DiscardIdentity = *c.Soup.DiscardIdentity
	}
	if c.Soup.DiscardCopyActions != nil {
		sc.DiscardCopyActions = *c.Soup.DiscardCopyActions
	}
	if c.Soup.DiscardFreeVariables != nil {
		sc.DiscardFreeVariableExpressions = *c.Soup.DiscardFreeVariables
	}
	if c.Soup.DiscardParents != nil {
		sc.DiscardParents = *c.Soup.DiscardParents
	}
	if c.Soup.MaintainPopulationSize != nil {
		sc.MaintainConstantPopulationSize = *c.Soup.MaintainPopulationSize
	}
	sc.Seed = soup.SeedFromUint64(c.Seed)

	gc := gen.Config{
		Size:               20,
		FreeVarProbability: 0.2,
		MaxFreeVars:        6,
		Standardization:    gen.StandardizationPrefix,
		// Offset keeps the generator stream disjoint from the soup's.
		Seed: soup.SeedFromUint64(c.Seed + 1),
	}
	if c.Gen.Size > 0 {
		gc.Size = c.Gen.Size
	}
	if c.Gen.FreeVarProbability > 0 {
		gc.FreeVarProbability = c.Gen.FreeVarProbability
	}
	if c.Gen.MaxFreeVars > 0 {
		gc.MaxFreeVars = c.Gen.MaxFreeVars
	}

	return experiment.Params{
		Name:           c.Name,
		Soup:           sc,
		Gen:            gc,
		SeedPopulation: c.SeedPopulation,
		Runs:           c.Runs,
		RunLength:      c.RunLength,
		PollInterval:   c.PollInterval,
	}
}

// Probe composes the configured probes and reports the CSV column
// names their payloads produce, in a stable order.
func (c *ExperimentConfig) Probe() (experiment.Probe, []string, error) {
	var probes []experiment.Probe
	var columns []string

	p := c.Probes
	if !p.Entropy && !p.Recursive && p.TopK == 0 && len(p.Track) == 0 && p.Motif == nil {
		p.Entropy = true
	}

	if p.Entropy {
		probes = append(probes, experiment.EntropyProbe())
		columns = append(columns, "entropy", "unique", "population")
	}
	if p.Recursive {
		probes = append(probes, experiment.RecursiveCountProbe())
		columns = append(columns, "recursive")
	}
	if p.TopK > 0 {
		probes = append(probes, experiment.TopKProbe(p.TopK))
		columns = append(columns, "top")
	}
	for _, track := range p.Track {
		ref, err := lambda.Parse(track.Term)
		if err != nil {
			return nil, nil, fmt.Errorf("track %q: %w", track.Label, err)
		}
		probes = append(probes, experiment.PopulationOfProbe(track.Label, ref))
		columns = append(columns, track.Label)
	}
	if p.Motif != nil {
		ref, err := lambda.Parse(p.Motif.Term)
		if err != nil {
			return nil, nil, fmt.Errorf("motif %q: %w", p.Motif.Label, err)
		}
		probes = append(probes, experiment.MotifSearchProbe(p.Motif.Label, ref, p.Motif.Threshold))
		columns = append(columns, p.Motif.Label)
	}

	return experiment.And(probes...), columns, nil
}
