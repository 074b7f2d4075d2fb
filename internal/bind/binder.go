// Package bind turns header-keyed data rows into typed argument sets.
package bind

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/truthslies/internal/model"
	"github.com/spf13/cast"
)

// Kind is the value type of a slot
type Kind string

const (
	KindString Kind = "string"
	KindDouble Kind = "double"
	KindInt    Kind = "int"
)

// Slot is a named template placeholder and the type its values bind to
type Slot struct {
	Name string
	Kind Kind
}

// DefaultSlots returns the date/time slots of the default template
func DefaultSlots() []Slot {
	return []Slot{
		{Name: "date", Kind: KindString},
		{Name: "time", Kind: KindDouble},
	}
}

// SlotsFromConfig converts configured slots, rejecting unknown kinds
func SlotsFromConfig(cfg []model.SlotConfig) ([]Slot, error) {
	if len(cfg) == 0 {
		return DefaultSlots(), nil
	}

	slots := make([]Slot, 0, len(cfg))
	seen := make(map[string]bool, len(cfg))
	for _, sc := range cfg {
		name := strings.TrimSpace(sc.Name)
		if name == "" {
			return nil, fmt.Errorf("slot with empty name")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate slot: %s", name)
		}
		seen[name] = true

		kind := Kind(strings.ToLower(strings.TrimSpace(sc.Kind)))
		switch kind {
		case "":
			kind = KindString
		case KindString, KindDouble, KindInt:
		default:
			return nil, fmt.Errorf("slot %s: unknown kind %q (supported: string, double, int)", name, sc.Kind)
		}
		slots = append(slots, Slot{Name: name, Kind: kind})
	}
	return slots, nil
}

// Issue describes a recognized slot that could not be bound in one row
type Issue struct {
	Row   int // 0-based data row
	Slot  string
	Value string
}

// Report collects what Bind skipped. It never turns into an error.
type Report struct {
	Ignored []string // unrecognized columns
	Missing []Issue  // slot column absent or empty
	Invalid []Issue  // value failed coercion
}

// Clean reports whether every row bound every slot
func (r Report) Clean() bool {
	return len(r.Missing) == 0 && len(r.Invalid) == 0
}

// Binder extracts a fixed set of slots from each row
type Binder struct {
	slots []Slot
}

// NewBinder creates a binder for slots; with none it uses DefaultSlots
func NewBinder(slots ...Slot) *Binder {
	if len(slots) == 0 {
		slots = DefaultSlots()
	}
	return &Binder{slots: slots}
}

// Slots returns the binder's slots
func (b *Binder) Slots() []Slot {
	out := make([]Slot, len(b.slots))
	copy(out, b.slots)
	return out
}

// Bind produces one argument set per row, in row order, holding only recognized slots.
// Missing or malformed values leave their slot absent.
func (b *Binder) Bind(rows []model.DataRow) ([]model.ArgumentSet, Report) {
	var report Report
	known := make(map[string]bool, len(b.slots))
	for _, s := range b.slots {
		known[s.Name] = true
	}
	ignored := make(map[string]bool)

	sets := make([]model.ArgumentSet, len(rows))
	for i, row := range rows {
		set := model.NewArgumentSet()
		for col := range row {
			if !known[col] {
				ignored[col] = true
			}
		}

		for _, slot := range b.slots {
			raw, ok := row[slot.Name]
			if !ok || (slot.Kind != KindString && strings.TrimSpace(raw) == "") {
				report.Missing = append(report.Missing, Issue{Row: i, Slot: slot.Name})
				continue
			}

			v, err := coerce(slot.Kind, raw)
			if err != nil {
				report.Invalid = append(report.Invalid, Issue{Row: i, Slot: slot.Name, Value: raw})
				continue
			}
			set.Values[slot.Name] = v
		}
		sets[i] = set
	}

	for col := range ignored {
		report.Ignored = append(report.Ignored, col)
	}
	sort.Strings(report.Ignored)

	return sets, report
}

func coerce(kind Kind, raw string) (model.Value, error) {
	switch kind {
	case KindDouble:
		f, err := cast.ToFloat64E(strings.TrimSpace(raw))
		if err != nil {
			return model.Value{}, err
		}
		return model.DoubleValue(f), nil
	case KindInt:
		i, err := cast.ToInt64E(strings.TrimSpace(raw))
		if err != nil {
			return model.Value{}, err
		}
		return model.IntValue(i), nil
	default:
		return model.StringValue(raw), nil
	}
}
