// Package engine generates truth and lie statements from template configs.
package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/ppiankov/truthslies/internal/model"
)

var (
	ErrUnknownClass      = errors.New("unknown statement generator class")
	ErrTooManyDuplicates = errors.New("generated too many duplicate statements")
	ErrNoArguments       = errors.New("no arguments to generate statements from")
)

// ApplyValues substitutes every {key} in template with the value's text
func ApplyValues(template string, values map[string]model.Value) string {
	out := template
	for key, v := range values {
		out = strings.ReplaceAll(out, "{"+key+"}", v.Text())
	}
	return out
}

// Generator renders the truth or a lie for argument set i of its config.
// Truth must be deterministic; Lie may be random.
type Generator interface {
	Truth(i int) string
	Lie(i int) string
	Size() int
	Config() model.TemplateConfig
}

// Factory creates a Generator for a config
type Factory func(cfg model.TemplateConfig, rnd *rand.Rand) Generator

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		CubingClass: newCubingGenerator,
	}
)

// Register adds or replaces the factory for a class name
func Register(className string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[className] = f
}

// Classes lists the registered class names
func Classes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewGenerator returns the generator registered for cfg.ClassName
func NewGenerator(cfg model.TemplateConfig, rnd *rand.Rand) (Generator, error) {
	registryMu.RLock()
	f, ok := registry[cfg.ClassName]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, cfg.ClassName)
	}
	return f(cfg, rnd), nil
}

// CubingClass is the class name of the speedcubing generator
const CubingClass = "CubingStatementGenerator"

const cubingTimeFormat = "%.2f seconds rounded to the nearest hundredth of a second"

// CubingGenerator renders solve times; lies shift the time by up to a second either way.
type CubingGenerator struct {
	cfg model.TemplateConfig
	rnd *rand.Rand
}

func newCubingGenerator(cfg model.TemplateConfig, rnd *rand.Rand) Generator {
	return &CubingGenerator{cfg: cfg, rnd: rnd}
}

func (g *CubingGenerator) Size() int {
	return len(g.cfg.Arguments)
}

func (g *CubingGenerator) Config() model.TemplateConfig {
	return g.cfg
}

func (g *CubingGenerator) Truth(i int) string {
	return g.render(i, 0)
}

func (g *CubingGenerator) Lie(i int) string {
	return g.render(i, g.rnd.Float64()*2-1)
}

func (g *CubingGenerator) render(i int, offset float64) string {
	args := g.cfg.Arguments[i]
	values := make(map[string]model.Value, len(args.Values))
	for k, v := range args.Values {
		values[k] = v
	}

	if t, ok := args.Values["time"].Float(); ok {
		values["time"] = model.StringValue(fmt.Sprintf(cubingTimeFormat, t+offset))
	}
	return ApplyValues(g.cfg.TemplateString, values)
}
