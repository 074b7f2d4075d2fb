package model

import (
	"fmt"
	"strconv"
)

// DataRow is one data row of a tabular source keyed by the header row
type DataRow map[string]string

// Value is a single typed argument value. Exactly one field is set.
type Value struct {
	StringValue *string  `json:"stringValue,omitempty" yaml:"string_value,omitempty"`
	DoubleValue *float64 `json:"doubleValue,omitempty" yaml:"double_value,omitempty"`
	IntValue    *int64   `json:"intValue,omitempty" yaml:"int_value,omitempty"`
}

// StringValue returns a Value holding s
func StringValue(s string) Value {
	return Value{StringValue: &s}
}

// DoubleValue returns a Value holding f
func DoubleValue(f float64) Value {
	return Value{DoubleValue: &f}
}

// IntValue returns a Value holding i
func IntValue(i int64) Value {
	return Value{IntValue: &i}
}

// IsZero reports whether no field is set
func (v Value) IsZero() bool {
	return v.StringValue == nil && v.DoubleValue == nil && v.IntValue == nil
}

// Text renders the value for template substitution.
// Doubles use six decimals, ints are decimal, unset values are empty.
func (v Value) Text() string {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.DoubleValue != nil:
		return fmt.Sprintf("%f", *v.DoubleValue)
	case v.IntValue != nil:
		return strconv.FormatInt(*v.IntValue, 10)
	default:
		return ""
	}
}

// Float returns the numeric content of the value
func (v Value) Float() (float64, bool) {
	switch {
	case v.DoubleValue != nil:
		return *v.DoubleValue, true
	case v.IntValue != nil:
		return float64(*v.IntValue), true
	case v.StringValue != nil:
		f, err := strconv.ParseFloat(*v.StringValue, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// clone returns a copy that shares no pointers with v
func (v Value) clone() Value {
	var out Value
	if v.StringValue != nil {
		s := *v.StringValue
		out.StringValue = &s
	}
	if v.DoubleValue != nil {
		f := *v.DoubleValue
		out.DoubleValue = &f
	}
	if v.IntValue != nil {
		i := *v.IntValue
		out.IntValue = &i
	}
	return out
}

// ArgumentSet holds the named values substituted into one template instantiation
type ArgumentSet struct {
	Values map[string]Value `json:"values" yaml:"values"`
}

// NewArgumentSet returns an empty argument set
func NewArgumentSet() ArgumentSet {
	return ArgumentSet{Values: make(map[string]Value)}
}

// Clone deep-copies the argument set
func (a ArgumentSet) Clone() ArgumentSet {
	out := ArgumentSet{Values: make(map[string]Value, len(a.Values))}
	for k, v := range a.Values {
		out.Values[k] = v.clone()
	}
	return out
}

// TemplateConfig is a sentence template, the generation strategy to apply
// to it and one argument set per candidate statement.
type TemplateConfig struct {
	TemplateString string        `json:"templateString" yaml:"template_string"`
	ClassName      string        `json:"className" yaml:"class_name"`
	Arguments      []ArgumentSet `json:"arguments" yaml:"arguments"`
}

// Clone deep-copies the template config
func (c TemplateConfig) Clone() TemplateConfig {
	out := TemplateConfig{
		TemplateString: c.TemplateString,
		ClassName:      c.ClassName,
		Arguments:      make([]ArgumentSet, len(c.Arguments)),
	}
	for i, a := range c.Arguments {
		out.Arguments[i] = a.Clone()
	}
	return out
}

// GenerationRequest asks the generation service for a mix of truths and lies
type GenerationRequest struct {
	TruthsCount uint32           `json:"truthsCount" yaml:"truths_count"`
	LiesCount   uint32           `json:"liesCount" yaml:"lies_count"`
	Configs     []TemplateConfig `json:"configs" yaml:"configs"`
}

// Clone deep-copies the request
func (r *GenerationRequest) Clone() *GenerationRequest {
	if r == nil {
		return nil
	}
	out := &GenerationRequest{
		TruthsCount: r.TruthsCount,
		LiesCount:   r.LiesCount,
		Configs:     make([]TemplateConfig, len(r.Configs)),
	}
	for i, c := range r.Configs {
		out.Configs[i] = c.Clone()
	}
	return out
}

// ArgumentCount returns the number of argument sets across all configs
func (r *GenerationRequest) ArgumentCount() int {
	n := 0
	for _, c := range r.Configs {
		n += len(c.Arguments)
	}
	return n
}

// Statement is a generated statement and whether it is true
type Statement struct {
	Statement string `json:"statement" yaml:"statement"`
	Truth     bool   `json:"truth" yaml:"truth"`
}

// GenerationResponse carries the generated statements in service order
type GenerationResponse struct {
	Statements []Statement `json:"statements" yaml:"statements"`
}
