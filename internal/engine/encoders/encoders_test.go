package encoders

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Saved int    `json:"saved" yaml:"saved"`
}

func TestNew(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{format: "", wantExt: "json"},
		{format: "json", wantExt: "json"},
		{format: "yaml", wantExt: "yaml"},
		{format: "toml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			encoder, err := New(tt.format)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unsupported encoding format: toml")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, encoder.FileExtension())
		})
	}
}

func TestJSONEncoder(t *testing.T) {
	tests := []struct {
		name   string
		indent string
		want   string
	}{
		{name: "compact", want: "{\"name\":\"report\",\"saved\":42}\n"},
		{name: "indented", indent: "  ", want: "{\n  \"name\": \"report\",\n  \"saved\": 42\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := NewJSON(JSONConfig{Indent: tt.indent}).Encode(context.Background(), &buf, sample{Name: "report", Saved: 42})
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())

			var decoded sample
			require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
			assert.Equal(t, 42, decoded.Saved)
		})
	}
}

func TestYAMLEncoder(t *testing.T) {
	var buf bytes.Buffer
	err := NewYAML().Encode(context.Background(), &buf, sample{Name: "deck", Saved: 7})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "name: deck")

	var decoded sample
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sample{Name: "deck", Saved: 7}, decoded)
}

func TestEncoders_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	assert.ErrorIs(t, NewJSON(JSONConfig{}).Encode(ctx, &buf, sample{}), context.Canceled)
	assert.ErrorIs(t, NewYAML().Encode(ctx, &buf, sample{}), context.Canceled)
	assert.Empty(t, buf.String())
}
