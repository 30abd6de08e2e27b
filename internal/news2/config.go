package news2

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fuzzynews/pkg/fuzzy"

	"gopkg.in/yaml.v3"
)

//go:embed news2.yaml
var defaultConfigYAML []byte

// Config is the clinical configuration of a Scorer: variables, rules,
// categories and engine settings.
type Config struct {
	Resolution       int              `yaml:"resolution" json:"resolution"`
	OxygenPoints     float64          `yaml:"oxygen_points" json:"oxygen_points"`
	Output           VariableConfig   `yaml:"output" json:"output"`
	Variables        []VariableConfig `yaml:"variables" json:"variables"`
	Categories       []CategoryConfig `yaml:"categories" json:"categories"`
	RedScoreResponse string           `yaml:"red_score_response" json:"red_score_response"`
}

// VariableConfig declares one fuzzy variable. Input variables read the
// measurement named by Field and carry their own rule block. A variable with
// SupplementalOxygen set is only used when the flag matches.
type VariableConfig struct {
	Name               string       `yaml:"name" json:"name"`
	Field              string       `yaml:"field,omitempty" json:"field,omitempty"`
	SupplementalOxygen *bool        `yaml:"supplemental_oxygen,omitempty" json:"supplemental_oxygen,omitempty"`
	Unit               string       `yaml:"unit,omitempty" json:"unit,omitempty"`
	Min                float64      `yaml:"min" json:"min"`
	Max                float64      `yaml:"max" json:"max"`
	Normal             string       `yaml:"normal,omitempty" json:"normal,omitempty"`
	Terms              []TermConfig `yaml:"terms" json:"terms"`
	Rules              []RuleConfig `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// TermConfig declares a linguistic term and its membership shape.
type TermConfig struct {
	Name   string    `yaml:"name" json:"name"`
	Shape  string    `yaml:"shape" json:"shape"`
	Params []float64 `yaml:"params" json:"params"`
}

// RuleConfig declares IF If THEN output IS Then.
type RuleConfig struct {
	If     ExprConfig `yaml:"if" json:"if"`
	Then   string     `yaml:"then" json:"then"`
	Weight float64    `yaml:"weight,omitempty" json:"weight,omitempty"`
}

// ExprConfig is the serialized form of an antecedent. Exactly one of Is, And
// or Or is set. Is takes "term" for the enclosing variable or
// "variable.term" for any other.
type ExprConfig struct {
	Is  string       `yaml:"is,omitempty" json:"is,omitempty"`
	And []ExprConfig `yaml:"and,omitempty" json:"and,omitempty"`
	Or  []ExprConfig `yaml:"or,omitempty" json:"or,omitempty"`
}

// CategoryConfig is one row of the score boundary table. A category applies
// from Min up to the next category's Min.
type CategoryConfig struct {
	Name     string  `yaml:"name" json:"name"`
	Min      float64 `yaml:"min" json:"min"`
	Response string  `yaml:"response" json:"response"`
}

// DefaultConfig returns the embedded NEWS-2 rule base.
func DefaultConfig() *Config {
	cfg, err := LoadConfig(defaultConfigYAML, ".yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded news2.yaml: %v", err))
	}
	return cfg
}

// LoadConfigFile reads a configuration file (YAML or JSON).
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadConfig(data, filepath.Ext(path))
}

// LoadConfig parses configuration bytes. ext is a format hint (".yaml",
// ".yml", ".json"); when empty the format is detected from the content.
func LoadConfig(data []byte, ext string) (*Config, error) {
	ext = strings.ToLower(ext)
	if ext == "" && strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		ext = ".json"
	}
	var cfg Config
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	return &cfg, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// buildVariable turns a declaration into a fuzzy variable.
func (vc VariableConfig) buildVariable() (*fuzzy.Variable, error) {
	v, err := fuzzy.NewVariable(vc.Name, vc.Min, vc.Max)
	if err != nil {
		return nil, err
	}
	for _, tc := range vc.Terms {
		kind, err := fuzzy.ParseKind(tc.Shape)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", vc.Name, tc.Name, err)
		}
		shape, err := fuzzy.NewShape(kind, tc.Params...)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", vc.Name, tc.Name, err)
		}
		if err := v.AddTerm(tc.Name, shape); err != nil {
			return nil, err
		}
	}
	if vc.Normal != "" {
		if _, ok := v.Term(vc.Normal); !ok {
			return nil, fmt.Errorf("%w: %s.%s declared as normal", fuzzy.ErrUnknownTerm, vc.Name, vc.Normal)
		}
	}
	return v, nil
}

// buildBlock converts the variable's rules into a rule block named after
// the measurement field.
func (vc VariableConfig) buildBlock() (fuzzy.RuleBlock, error) {
	b := fuzzy.RuleBlock{Name: vc.Field}
	for i, rc := range vc.Rules {
		expr, err := rc.If.build(vc.Name)
		if err != nil {
			return b, fmt.Errorf("%s rule %d: %w", vc.Name, i+1, err)
		}
		b.Rules = append(b.Rules, fuzzy.Rule{If: expr, Then: rc.Then, Weight: rc.Weight})
	}
	return b, nil
}

func (ec ExprConfig) build(self string) (fuzzy.Expr, error) {
	set := 0
	if ec.Is != "" {
		set++
	}
	if len(ec.And) > 0 {
		set++
	}
	if len(ec.Or) > 0 {
		set++
	}
	if set != 1 {
		return fuzzy.Expr{}, fmt.Errorf("%w: expression needs exactly one of is, and, or", fuzzy.ErrInvalidRule)
	}
	if ec.Is != "" {
		variable, term := self, ec.Is
		if i := strings.IndexByte(ec.Is, '.'); i >= 0 {
			variable, term = ec.Is[:i], ec.Is[i+1:]
		}
		return fuzzy.Is(variable, term), nil
	}
	children := ec.And
	if len(ec.Or) > 0 {
		children = ec.Or
	}
	built := make([]fuzzy.Expr, len(children))
	for i, c := range children {
		e, err := c.build(self)
		if err != nil {
			return fuzzy.Expr{}, err
		}
		built[i] = e
	}
	if len(ec.And) > 0 {
		return fuzzy.And(built...), nil
	}
	return fuzzy.Or(built...), nil
}
