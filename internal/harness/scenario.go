package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/distlab/internal/ir"
)

// Scenario defines a conformance test scenario.
// Scenarios pin point evaluations to expected values and check the
// structural properties every distribution must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is the directory of CUE model files the scenario evaluates.
	// Relative paths are resolved against the scenario file location.
	Specs string `yaml:"specs"`

	// RunID is an optional fixed run ID for deterministic traces.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Seed seeds every rng evaluation in the scenario.
	Seed int64 `yaml:"seed,omitempty"`

	// Checks are point evaluations with expected results.
	Checks []Check `yaml:"checks,omitempty"`

	// Properties are distribution-level conformance properties.
	Properties []Property `yaml:"properties,omitempty"`
}

// Check evaluates one function of a declared distribution and compares the
// outcome with Expect, or with ExpectError when the evaluation must fail.
type Check struct {
	Spec     string    `yaml:"spec"`
	Function string    `yaml:"function"`
	Points   ValueList `yaml:"points,omitempty"`

	// Expect lists the expected outcome values. "inf", "-inf" and "nan"
	// are accepted for non-finite values.
	Expect ValueList `yaml:"expect,omitempty"`

	// Tolerance is the allowed error, absolute below 1 and relative above.
	// Defaults to DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// ExpectError is the expected runtime error code (e.g. "UNKNOWN_FUNCTION").
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Property names a conformance property of one declared distribution.
type Property struct {
	// Type is one of the Property* constants.
	Type string `yaml:"type"`

	Spec string `yaml:"spec"`

	// Points overrides the evaluation grid (cdf_monotone, complement).
	Points ValueList `yaml:"points,omitempty"`

	// Tolerance overrides the property's default tolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Draws is the sample size for moments.
	Draws int `yaml:"draws,omitempty"`

	// Stats selects the moments to compare: "mean", "variance".
	// Defaults to both.
	Stats []string `yaml:"stats,omitempty"`
}

// Property type constants.
const (
	PropertyIntegratesToOne = "integrates_to_one"
	PropertyCDFMonotone     = "cdf_monotone"
	PropertyComplement      = "complement"
	PropertyMoments         = "moments"
)

// Moment names accepted in Property.Stats.
const (
	StatMean     = "mean"
	StatVariance = "variance"
)

// DefaultTolerance is the check tolerance when none is given.
const DefaultTolerance = 1e-9

// ValueList is a list of floats that also accepts the non-finite spellings
// "inf", "-inf", "nan" and the YAML forms ".inf", "-.inf", ".nan".
type ValueList []float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *ValueList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a list of numbers", node.Line)
	}
	out := make(ValueList, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: expected a number", item.Line)
		}
		x, err := ir.ParseValue(yamlNumber(item.Value))
		if err != nil {
			return fmt.Errorf("line %d: %w", item.Line, err)
		}
		out = append(out, x)
	}
	*v = out
	return nil
}

// yamlNumber maps YAML's spellings of non-finite floats to ir.ParseValue's.
func yamlNumber(s string) string {
	switch strings.ToLower(s) {
	case ".inf", "+.inf":
		return "inf"
	case "-.inf":
		return "-inf"
	case ".nan":
		return "nan"
	}
	return s
}

// LoadScenario reads and parses a scenario YAML file.
// Relative spec directories are resolved against the scenario file's
// directory. Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the spec directory relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve the spec directory BEFORE validation
	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) && basePath != "" {
		scenario.Specs = filepath.Join(basePath, scenario.Specs)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if _, err := os.Stat(scenario.Specs); err != nil {
		return nil, fmt.Errorf("invalid scenario: spec directory not found: %s", scenario.Specs)
	}

	return scenario, nil
}

// ParseScenario decodes scenario YAML with strict field validation
// (catches typos like "check:" vs "checks:"). Spec paths are left as
// written and the spec directory is not checked for existence.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Specs == "" {
		return fmt.Errorf("specs directory is required")
	}

	if len(s.Checks) == 0 && len(s.Properties) == 0 {
		return fmt.Errorf("at least one check or property is required")
	}

	for i, c := range s.Checks {
		if err := validateCheck(i, &c); err != nil {
			return err
		}
	}

	for i, p := range s.Properties {
		if err := validateProperty(i, &p); err != nil {
			return err
		}
	}

	return nil
}

func validateCheck(index int, c *Check) error {
	if c.Spec == "" {
		return fmt.Errorf("checks[%d]: spec is required", index)
	}
	if c.Function == "" {
		return fmt.Errorf("checks[%d]: function is required", index)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("checks[%d]: tolerance must be non-negative", index)
	}
	if c.ExpectError != "" && len(c.Expect) > 0 {
		return fmt.Errorf("checks[%d]: expect and expect_error are mutually exclusive", index)
	}
	if c.ExpectError == "" && len(c.Expect) == 0 {
		return fmt.Errorf("checks[%d]: expect or expect_error is required", index)
	}
	return nil
}

// validateProperty validates a single property based on its type.
func validateProperty(index int, p *Property) error {
	if p.Type == "" {
		return fmt.Errorf("properties[%d]: type is required", index)
	}
	if p.Spec == "" {
		return fmt.Errorf("properties[%d]: spec is required", index)
	}
	if p.Tolerance < 0 {
		return fmt.Errorf("properties[%d]: tolerance must be non-negative", index)
	}

	switch p.Type {
	case PropertyIntegratesToOne, PropertyCDFMonotone, PropertyComplement:
	case PropertyMoments:
		if p.Draws < 2 {
			return fmt.Errorf("properties[%d]: draws must be at least 2 for moments", index)
		}
		for _, s := range p.Stats {
			if s != StatMean && s != StatVariance {
				return fmt.Errorf("properties[%d]: unknown stat %q", index, s)
			}
		}
	default:
		return fmt.Errorf("properties[%d]: unknown property type %q", index, p.Type)
	}

	return nil
}
