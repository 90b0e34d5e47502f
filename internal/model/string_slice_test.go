package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSliceValue(t *testing.T) {
	v, err := StringSlice{"go", "sql"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "go,sql", v)

	v, err = StringSlice(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = StringSlice{"a,b"}.Value()
	assert.ErrorIs(t, err, ErrUnsafeItem)
}

func TestStringSliceScan(t *testing.T) {
	var s StringSlice

	require.NoError(t, s.Scan([]byte("go,docker")))
	assert.Equal(t, StringSlice{"go", "docker"}, s)

	require.NoError(t, s.Scan(""))
	assert.Empty(t, s)

	require.NoError(t, s.Scan(nil))
	assert.NotNil(t, s)

	assert.Error(t, s.Scan(42))
}

func TestStringSliceJSONNeverNull(t *testing.T) {
	b, err := json.Marshal(struct {
		Skills StringSlice `json:"skills"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"skills":[]}`, string(b))
}
