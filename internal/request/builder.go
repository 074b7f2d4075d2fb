// Package request assembles generation requests.
package request

import (
	"strconv"
	"strings"

	"github.com/ppiankov/truthslies/internal/model"
)

// Builder holds the template half of every request it builds
type Builder struct {
	Template      string
	ClassName     string
	DefaultTruths uint32
	DefaultLies   uint32
}

// NewBuilder returns a Builder with the documented count defaults (1 truth, 0 lies)
func NewBuilder(template, className string) *Builder {
	return &Builder{
		Template:      template,
		ClassName:     className,
		DefaultTruths: 1,
		DefaultLies:   0,
	}
}

// BuildFromInput parses raw count inputs best-effort and builds the request
func (b *Builder) BuildFromInput(truthsInput, liesInput string, sets []model.ArgumentSet) *model.GenerationRequest {
	return Build(
		ParseCount(truthsInput, b.DefaultTruths),
		ParseCount(liesInput, b.DefaultLies),
		b.Template,
		b.ClassName,
		sets,
	)
}

// Build returns a request with exactly one template config carrying a copy of sets.
// Zero argument sets are allowed.
func Build(truths, lies uint32, template, className string, sets []model.ArgumentSet) *model.GenerationRequest {
	args := make([]model.ArgumentSet, len(sets))
	for i, s := range sets {
		args[i] = s.Clone()
	}

	return &model.GenerationRequest{
		TruthsCount: truths,
		LiesCount:   lies,
		Configs: []model.TemplateConfig{{
			TemplateString: template,
			ClassName:      className,
			Arguments:      args,
		}},
	}
}

// ParseCount parses a non-negative decimal count. Anything else yields def.
func ParseCount(input string, def uint32) uint32 {
	n, err := strconv.ParseUint(strings.TrimSpace(input), 10, 32)
	if err != nil {
		return def
	}
	return uint32(n)
}
