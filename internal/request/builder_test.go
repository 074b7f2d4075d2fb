package request

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/ppiankov/truthslies/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		def  uint32
		want uint32
	}{
		{"3", 1, 3},
		{" 0 ", 1, 0},
		{"", 1, 1},
		{"abc", 1, 1},
		{"-2", 0, 0},
		{"1.5", 1, 1},
		{"99999999999", 1, 1},
		{"007", 0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCount(tt.in, tt.def))
		})
	}
}

func TestBuild_CountsRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		truths, lies := uint32(r.Intn(1000)), uint32(r.Intn(1000))
		req := Build(truths, lies, "t", "c", nil)
		assert.Equal(t, truths, req.TruthsCount)
		assert.Equal(t, lies, req.LiesCount)
	}
}

func TestBuilder_BuildFromInput_Defaults(t *testing.T) {
	b := NewBuilder(model.DefaultTemplate, model.DefaultClassName)

	req := b.BuildFromInput("many", "", nil)
	assert.Equal(t, uint32(1), req.TruthsCount)
	assert.Equal(t, uint32(0), req.LiesCount)

	req = b.BuildFromInput(strconv.Itoa(2), "1", nil)
	assert.Equal(t, uint32(2), req.TruthsCount)
	assert.Equal(t, uint32(1), req.LiesCount)
}

func TestBuild_SingleConfig(t *testing.T) {
	sets := []model.ArgumentSet{
		{Values: map[string]model.Value{"date": model.StringValue("d1"), "time": model.DoubleValue(1)}},
		{Values: map[string]model.Value{"date": model.StringValue("d2"), "time": model.DoubleValue(2)}},
	}

	req := Build(2, 1, model.DefaultTemplate, model.DefaultClassName, sets)
	require.Len(t, req.Configs, 1)

	cfg := req.Configs[0]
	assert.Equal(t, model.DefaultTemplate, cfg.TemplateString)
	assert.Equal(t, model.DefaultClassName, cfg.ClassName)
	require.Len(t, cfg.Arguments, 2)
	assert.Equal(t, "d2", *cfg.Arguments[1].Values["date"].StringValue)
}

func TestBuild_NoSharedReferences(t *testing.T) {
	sets := []model.ArgumentSet{
		{Values: map[string]model.Value{"date": model.StringValue("d1")}},
	}
	req := Build(1, 0, "t", "c", sets)

	*sets[0].Values["date"].StringValue = "mutated"
	sets[0].Values["extra"] = model.StringValue("x")

	got := req.Configs[0].Arguments[0]
	assert.Equal(t, "d1", *got.Values["date"].StringValue)
	assert.NotContains(t, got.Values, "extra")
}

func TestBuild_EmptyDataset(t *testing.T) {
	req := Build(1, 0, "t", "c", nil)
	require.Len(t, req.Configs, 1)
	assert.NotNil(t, req.Configs[0].Arguments)
	assert.Empty(t, req.Configs[0].Arguments)
}
