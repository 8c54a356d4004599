package imloader

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// ValueType is the declared type of a variable's default value. The
// interpreter only ever reads the integer value, but the schema records
// the declared type for validation and for documentation tooling built
// on top of the engine.
type ValueType int

const (
	TypeInt ValueType = iota
	TypeSymbol
	TypeText
)

// Constraint bounds the legal values of a Variable.
type Constraint struct {
	Enum     []int // non-nil: value must be one of these
	HasRange bool
	Min, Max int
}

func (c Constraint) Allows(v int) bool {
	if len(c.Enum) > 0 {
		for _, e := range c.Enum {
			if e == v {
				return true
			}
		}
		return false
	}
	if c.HasRange {
		return v >= c.Min && v <= c.Max
	}
	return true
}

// VariableSchema is one entry of a description's `variable` section or
// of the store's global variable-schema document.
type VariableSchema struct {
	Name       string `yaml:"name"`
	Type       ValueType
	Default    int `yaml:"default"`
	Constraint Constraint
	Doc        string `yaml:"doc"`
}

// CommandSchema is one entry of the `command` top-level section: a
// user-bindable action distinct from a variable. Unlike VariableSchema it
// carries no value constraint.
type CommandSchema struct {
	Name    string `yaml:"name"`
	Default int    `yaml:"default"`
	Doc     string `yaml:"doc"`
}

// yamlSchemaDoc is the on-disk shape loaded by LoadSchemaYAML: a small
// declarative document distinct from the s-expression description format
// used for maps/states/macros, served from the store's reserved
// variable/command tags as its own document.
type yamlSchemaDoc struct {
	Variables []struct {
		Name    string `yaml:"name"`
		Type    string `yaml:"type"`
		Default int    `yaml:"default"`
		Enum    []int  `yaml:"enum"`
		Min     *int   `yaml:"min"`
		Max     *int   `yaml:"max"`
		Doc     string `yaml:"doc"`
	} `yaml:"variables"`
	Commands []CommandSchema `yaml:"commands"`
}

// LoadSchemaYAML parses a YAML schema document into variable/command
// schemas ready to merge into an InputMethodDef.
func LoadSchemaYAML(data []byte) (map[string]VariableSchema, map[string]CommandSchema, error) {
	var doc yamlSchemaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing variable/command schema: %w", err)
	}

	vars := make(map[string]VariableSchema, len(doc.Variables))
	for _, v := range doc.Variables {
		vs := VariableSchema{Name: v.Name, Default: v.Default, Doc: v.Doc}
		switch v.Type {
		case "symbol":
			vs.Type = TypeSymbol
		case "text":
			vs.Type = TypeText
		default:
			vs.Type = TypeInt
		}
		if len(v.Enum) > 0 {
			vs.Constraint.Enum = v.Enum
		} else if v.Min != nil && v.Max != nil {
			vs.Constraint.HasRange = true
			vs.Constraint.Min = *v.Min
			vs.Constraint.Max = *v.Max
		}
		vars[v.Name] = vs
	}

	cmds := make(map[string]CommandSchema, len(doc.Commands))
	for _, c := range doc.Commands {
		cmds[c.Name] = c
	}
	return vars, cmds, nil
}
