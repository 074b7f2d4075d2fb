// Package present keeps the statements shown to the player and their reveal state.
package present

import (
	"fmt"
	"sync"

	"github.com/ppiankov/truthslies/internal/model"
)

// Color is the display color of a rendered statement
type Color int

const (
	ColorNeutral Color = iota
	ColorTruth
	ColorLie
)

func (c Color) String() string {
	switch c {
	case ColorTruth:
		return "truth"
	case ColorLie:
		return "lie"
	default:
		return "neutral"
	}
}

// State is the board's presentation state
type State int

const (
	StateEmpty State = iota
	StatePopulated
	StateRevealed
)

func (s State) String() string {
	switch s {
	case StatePopulated:
		return "populated"
	case StateRevealed:
		return "revealed"
	default:
		return "empty"
	}
}

// RenderedStatement is one statement on the board.
// Label is 0 for statements rendered on their own.
type RenderedStatement struct {
	Index int
	Label int
	Text  string
	Truth bool
	Color Color
}

// Display returns the text as shown, prefixed with its label when it has one
func (r RenderedStatement) Display() string {
	if r.Label == 0 {
		return r.Text
	}
	return fmt.Sprintf("%d. %s", r.Label, r.Text)
}

// Board holds rendered statements in display order
type Board struct {
	mu      sync.Mutex
	entries []RenderedStatement
}

// NewBoard returns an empty board
func NewBoard() *Board {
	return &Board{}
}

// Append renders a batch below the existing entries. In a batch of k the
// i-th statement is labeled k-i, so the batch counts down to 1.
func (b *Board) Append(statements []model.Statement) {
	b.mu.Lock()
	defer b.mu.Unlock()

	k := len(statements)
	for i, s := range statements {
		b.entries = append(b.entries, RenderedStatement{
			Index: len(b.entries),
			Label: k - i,
			Text:  s.Statement,
			Truth: s.Truth,
			Color: ColorNeutral,
		})
	}
}

// AppendOne renders a single statement without a label
func (b *Board) AppendOne(s model.Statement) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, RenderedStatement{
		Index: len(b.entries),
		Text:  s.Statement,
		Truth: s.Truth,
		Color: ColorNeutral,
	})
}

// Reveal colors every entry by its truth flag
func (b *Board) Reveal() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.entries {
		if b.entries[i].Truth {
			b.entries[i].Color = ColorTruth
		} else {
			b.entries[i].Color = ColorLie
		}
	}
}

// Clear removes every entry
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = nil
}

// Entries returns a snapshot in display order
func (b *Board) Entries() []RenderedStatement {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]RenderedStatement, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of entries
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// State derives the presentation state from the entries
func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) == 0 {
		return StateEmpty
	}
	for _, e := range b.entries {
		if e.Color == ColorNeutral {
			return StatePopulated
		}
	}
	return StateRevealed
}

// Lines returns the plain display text of every entry
func (b *Board) Lines() []string {
	entries := b.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Display()
	}
	return out
}
