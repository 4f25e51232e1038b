package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Version int    `json:"_version"`
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Added   string `json:"added"`
}

func sampleCodec() Codec {
	return Codec{
		Version: 2,
		Migrations: map[int]Migration{
			1: func(doc map[string]any) (map[string]any, error) {
				if _, ok := doc["added"]; !ok {
					doc["added"] = "default"
				}
				return doc, nil
			},
		},
	}
}

func TestCodec_LegacyDocumentMigrates(t *testing.T) {
	var out sample
	migrated, err := sampleCodec().Decode([]byte(`{"name":"draft","count":3}`), &out)
	require.NoError(t, err)
	assert.True(t, migrated)
	assert.Equal(t, sample{Version: 2, Name: "draft", Count: 3, Added: "default"}, out)
}

func TestCodec_CurrentVersionUntouched(t *testing.T) {
	var out sample
	migrated, err := sampleCodec().Decode([]byte(`{"_version":2,"name":"x","added":"kept"}`), &out)
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Equal(t, "kept", out.Added)
}

func TestCodec_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"future version", `{"_version":3}`, ErrUnknownVersion},
		{"zero version", `{"_version":0}`, ErrUnknownVersion},
		{"fractional version", `{"_version":1.5}`, ErrUnknownVersion},
		{"string version", `{"_version":"2"}`, ErrUnknownVersion},
		{"malformed", `{"name":`, ErrMalformed},
		{"null", `null`, ErrMalformed},
		{"array", `[1,2]`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out sample
			_, err := sampleCodec().Decode([]byte(tt.data), &out)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCodec_MissingMigrationStep(t *testing.T) {
	codec := Codec{Version: 3, Migrations: map[int]Migration{1: sampleCodec().Migrations[1]}}
	var out sample
	_, err := codec.Decode([]byte(`{"name":"x"}`), &out)
	assert.ErrorIs(t, err, ErrUnknownVersion)
}

func TestCodec_MigrationError(t *testing.T) {
	boom := errors.New("boom")
	codec := Codec{Version: 2, Migrations: map[int]Migration{
		1: func(doc map[string]any) (map[string]any, error) { return nil, boom },
	}}
	var out sample
	_, err := codec.Decode([]byte(`{}`), &out)
	assert.ErrorIs(t, err, boom)
}

func TestCodec_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(0)
	codec := sampleCodec()

	var out sample
	found, err := codec.Load(ctx, s, "doc", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, codec.Save(ctx, s, "doc", sample{Name: "saved", Added: "y"}))
	raw, err := s.Get(ctx, "doc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"_version":2,"name":"saved","count":0,"added":"y"}`, string(raw))

	found, err = codec.Load(ctx, s, "doc", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "saved", out.Name)
}
