package ident

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type employee struct {
	ID string
}

func (e employee) RefID() string { return e.ID }

type opaque struct{}

func (opaque) String() string { return "[object Object]" }

type objectID struct{ hex string }

func (o objectID) String() string { return o.hex }

func TestNormalize(t *testing.T) {
	self := map[string]any{}
	self["id"] = self

	tests := []struct {
		name   string
		input  any
		want   string
		wantOK bool
	}{
		{"nil", nil, "", false},
		{"empty string", "", "", false},
		{"string", "e1", "e1", true},
		{"int", 42, "42", true},
		{"zero int", 0, "", false},
		{"float", float64(7), "7", true},
		{"json number", json.Number("12345678901234567890"), "12345678901234567890", true},
		{"bool", true, "", false},
		{"map id", map[string]any{"id": "t1"}, "t1", true},
		{"map _id", map[string]any{"_id": "t2"}, "t2", true},
		{"map teamId", map[string]any{"teamId": "t3"}, "t3", true},
		{"map userId", map[string]any{"userId": 9}, "9", true},
		{"map id wins over _id", map[string]any{"id": "a", "_id": "b"}, "a", true},
		{"empty id falls through", map[string]any{"id": "", "_id": "b"}, "b", true},
		{"nested", map[string]any{"id": map[string]any{"_id": "deep"}}, "deep", true},
		{"self reference", self, "", false},
		{"map without id", map[string]any{"name": "x"}, "", false},
		{"referencer", employee{ID: "e7"}, "e7", true},
		{"referencer pointer", &employee{ID: "e8"}, "e8", true},
		{"nil referencer pointer", (*employee)(nil), "", false},
		{"stringer", objectID{hex: "65f0"}, "65f0", true},
		{"object marker", opaque{}, "", false},
		{"slice", []string{"a"}, "", false},
		{"ref", Ref("r1"), "r1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRefUnmarshalJSON(t *testing.T) {
	var payload struct {
		Teams []Ref `json:"teams"`
	}
	err := json.Unmarshal([]byte(`{"teams": ["t1", 2, {"_id": "t3"}, {"name": "none"}, null]}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, []Ref{"t1", "2", "t3", "", ""}, payload.Teams)
	assert.Equal(t, []string{"t1", "2", "t3"}, Refs(payload.Teams))
}

func TestRefUnmarshalYAML(t *testing.T) {
	var payload struct {
		Members []Ref `yaml:"members"`
	}
	doc := `
members:
  - e1
  - 17
  - id: e3
  - userId: e4
`
	require.NoError(t, yaml.Unmarshal([]byte(doc), &payload))
	assert.Equal(t, []Ref{"e1", "17", "e3", "e4"}, payload.Members)
}
