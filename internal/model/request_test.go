package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Text(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"string verbatim", StringValue("2020-01-01"), "2020-01-01"},
		{"double six decimals", DoubleValue(12.5), "12.500000"},
		{"int decimal", IntValue(-7), "-7"},
		{"unset", Value{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Text())
		})
	}
}

func TestValue_Float(t *testing.T) {
	f, ok := StringValue("9.75").Float()
	assert.True(t, ok)
	assert.Equal(t, 9.75, f)

	_, ok = StringValue("fast").Float()
	assert.False(t, ok)

	f, ok = IntValue(3).Float()
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)
}

func TestGenerationRequest_CloneIsDeep(t *testing.T) {
	set := NewArgumentSet()
	set.Values["time"] = DoubleValue(10)
	req := &GenerationRequest{
		TruthsCount: 1,
		Configs: []TemplateConfig{{
			TemplateString: DefaultTemplate,
			ClassName:      DefaultClassName,
			Arguments:      []ArgumentSet{set},
		}},
	}

	clone := req.Clone()
	*clone.Configs[0].Arguments[0].Values["time"].DoubleValue = 99
	clone.Configs[0].Arguments[0].Values["date"] = StringValue("x")

	assert.Equal(t, 10.0, *req.Configs[0].Arguments[0].Values["time"].DoubleValue)
	assert.NotContains(t, req.Configs[0].Arguments[0].Values, "date")
	assert.Equal(t, 1, req.ArgumentCount())
	assert.Nil(t, (*GenerationRequest)(nil).Clone())
}

func TestGenerationRequest_WireNames(t *testing.T) {
	set := NewArgumentSet()
	set.Values["date"] = StringValue("d")
	set.Values["time"] = DoubleValue(1.5)
	req := GenerationRequest{TruthsCount: 2, LiesCount: 1, Configs: []TemplateConfig{{
		TemplateString: "t", ClassName: "c", Arguments: []ArgumentSet{set},
	}}}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"truthsCount": 2,
		"liesCount": 1,
		"configs": [{
			"templateString": "t",
			"className": "c",
			"arguments": [{"values": {"date": {"stringValue": "d"}, "time": {"doubleValue": 1.5}}}]
		}]
	}`, string(data))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultTemplate, cfg.Template.String)
	assert.EqualValues(t, 1, cfg.Defaults.Truths)
	assert.EqualValues(t, 0, cfg.Defaults.Lies)
	assert.Equal(t, "surface", cfg.Source.FailurePolicy)
	assert.Len(t, cfg.Template.Slots, 2)
}
