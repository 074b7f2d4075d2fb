package bind

import (
	"testing"

	"github.com/ppiankov/truthslies/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinder_Bind(t *testing.T) {
	rows := []model.DataRow{
		{"date": "2021-01-02", "time": "12.34", "event": "3x3"},
		{"date": "2021-02-03", "time": "10.5"},
		{"date": "2021-03-04", "time": "9.99", "comp": "Nationals"},
	}

	sets, report := NewBinder().Bind(rows)
	require.Len(t, sets, 3)

	assert.Equal(t, "2021-01-02", *sets[0].Values["date"].StringValue)
	assert.InDelta(t, 12.34, *sets[0].Values["time"].DoubleValue, 1e-9)
	assert.Equal(t, "2021-03-04", *sets[2].Values["date"].StringValue, "row order preserved")

	for _, s := range sets {
		assert.Len(t, s.Values, 2, "only recognized slots are populated")
	}
	assert.Equal(t, []string{"comp", "event"}, report.Ignored)
	assert.True(t, report.Clean())
}

func TestBinder_MissingAndInvalid(t *testing.T) {
	rows := []model.DataRow{
		{"date": "2021-01-02"},
		{"date": "2021-02-03", "time": "fast"},
		{"time": ""},
	}

	sets, report := NewBinder().Bind(rows)
	require.Len(t, sets, 3)

	_, hasTime := sets[0].Values["time"]
	assert.False(t, hasTime)
	_, hasTime = sets[1].Values["time"]
	assert.False(t, hasTime)
	_, hasDate := sets[2].Values["date"]
	assert.False(t, hasDate)

	assert.False(t, report.Clean())
	assert.Contains(t, report.Invalid, Issue{Row: 1, Slot: "time", Value: "fast"})
	assert.Contains(t, report.Missing, Issue{Row: 0, Slot: "time"})
	assert.Contains(t, report.Missing, Issue{Row: 2, Slot: "date"})
	assert.Contains(t, report.Missing, Issue{Row: 2, Slot: "time"})
}

func TestBinder_EmptyStringSlotKept(t *testing.T) {
	sets, report := NewBinder().Bind([]model.DataRow{{"date": "", "time": "1"}})
	require.Len(t, sets, 1)

	v, ok := sets[0].Values["date"]
	require.True(t, ok)
	assert.Equal(t, "", *v.StringValue)
	assert.True(t, report.Clean())
}

func TestBinder_NoRows(t *testing.T) {
	sets, report := NewBinder().Bind(nil)
	assert.Empty(t, sets)
	assert.True(t, report.Clean())
}

func TestBinder_IntSlot(t *testing.T) {
	b := NewBinder(Slot{Name: "moves", Kind: KindInt})
	sets, _ := b.Bind([]model.DataRow{{"moves": " 42 "}})
	require.Len(t, sets, 1)
	assert.Equal(t, int64(42), *sets[0].Values["moves"].IntValue)
}

func TestSlotsFromConfig(t *testing.T) {
	slots, err := SlotsFromConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSlots(), slots)

	slots, err = SlotsFromConfig([]model.SlotConfig{{Name: "place"}, {Name: "moves", Kind: "INT"}})
	require.NoError(t, err)
	assert.Equal(t, []Slot{{Name: "place", Kind: KindString}, {Name: "moves", Kind: KindInt}}, slots)

	_, err = SlotsFromConfig([]model.SlotConfig{{Name: "x", Kind: "date"}})
	assert.Error(t, err)

	_, err = SlotsFromConfig([]model.SlotConfig{{Name: "x"}, {Name: "x"}})
	assert.Error(t, err)
}
