package cleaning

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicy []byte

// Action is the disposition applied to one column.
type Action string

const (
	ActionKeep         Action = "keep"
	ActionDrop         Action = "drop"
	ActionFillConstant Action = "fill_constant"
	ActionFillSentinel Action = "fill_sentinel"
	ActionFillMean     Action = "fill_mean"
)

func (a Action) valid() bool {
	switch a {
	case ActionKeep, ActionDrop, ActionFillConstant, ActionFillSentinel, ActionFillMean:
		return true
	}
	return false
}

// Rule assigns an action to a column. Value is the fill for fill_constant
// (a number) and fill_sentinel (a string).
type Rule struct {
	Column string `yaml:"column"`
	Action Action `yaml:"action"`
	Value  string `yaml:"value,omitempty"`
}

// Policy is the per-dataset rule table.
type Policy struct {
	Crime   []Rule `yaml:"crime"`
	Weather []Rule `yaml:"weather"`
}

// DefaultPolicy returns the embedded policy.
func DefaultPolicy() (Policy, error) {
	return ParsePolicy(defaultPolicy)
}

// LoadPolicy reads a policy file, or the embedded default when path is empty.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read cleaning policy %s: %w", path, err)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		return Policy{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePolicy decodes and validates a YAML policy. Unknown keys are rejected.
func ParsePolicy(data []byte) (Policy, error) {
	var p Policy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Policy{}, fmt.Errorf("parse cleaning policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks every rule in both tables.
func (p Policy) Validate() error {
	return errors.Join(
		validateRules(domain.DatasetCrime, p.Crime),
		validateRules(domain.DatasetWeather, p.Weather),
	)
}

// Rules returns the rule table for a dataset.
func (p Policy) Rules(dataset string) ([]Rule, error) {
	switch dataset {
	case domain.DatasetCrime:
		return p.Crime, nil
	case domain.DatasetWeather:
		return p.Weather, nil
	default:
		return nil, fmt.Errorf("no cleaning rules for dataset %q", dataset)
	}
}

func validateRules(dataset string, rules []Rule) error {
	if len(rules) == 0 {
		return fmt.Errorf("cleaning policy: %s has no rules", dataset)
	}
	var errs []error
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		where := fmt.Sprintf("cleaning policy: %s rule %d (%q)", dataset, i, r.Column)
		switch {
		case r.Column == "":
			errs = append(errs, fmt.Errorf("%s: empty column", where))
		case seen[r.Column]:
			errs = append(errs, fmt.Errorf("%s: duplicate column", where))
		}
		seen[r.Column] = true

		if !r.Action.valid() {
			errs = append(errs, fmt.Errorf("%s: unknown action %q", where, r.Action))
			continue
		}
		switch r.Action {
		case ActionFillConstant:
			if _, err := strconv.ParseFloat(r.Value, 64); err != nil {
				errs = append(errs, fmt.Errorf("%s: fill_constant needs a numeric value, got %q", where, r.Value))
			}
		case ActionFillSentinel:
			if r.Value == "" {
				errs = append(errs, fmt.Errorf("%s: fill_sentinel needs a value", where))
			}
		case ActionKeep, ActionDrop, ActionFillMean:
			if r.Value != "" {
				errs = append(errs, fmt.Errorf("%s: %s takes no value", where, r.Action))
			}
		}
	}
	return errors.Join(errs...)
}
