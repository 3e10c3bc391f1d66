package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleState struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(sampleState{Name: "a", Count: 3})
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &env))
	assert.JSONEq(t, "1", string(env["version"]))

	var out sampleState
	require.NoError(t, Decode(data, &out))
	assert.Equal(t, sampleState{Name: "a", Count: 3}, out)
}

func TestDecodeLegacy(t *testing.T) {
	t.Run("version zero envelope", func(t *testing.T) {
		var out sampleState
		require.NoError(t, Decode([]byte(`{"state":{"name":"legacy","count":2},"version":0}`), &out))
		assert.Equal(t, "legacy", out.Name)
		assert.Equal(t, 2, out.Count)
	})

	t.Run("bare state", func(t *testing.T) {
		var out sampleState
		require.NoError(t, Decode([]byte(`{"name":"bare","count":7}`), &out))
		assert.Equal(t, "bare", out.Name)
		assert.Equal(t, 7, out.Count)
	})
}

func TestDecodeErrors(t *testing.T) {
	var out sampleState

	err := Decode([]byte(`{"version":2,"state":{}}`), &out)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))

	assert.Error(t, Decode([]byte(`not json`), &out))
	assert.Error(t, Decode([]byte(`{"version":1,"state":{"count":"x"}}`), &out))
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey(UserStoreKey))
	assert.NoError(t, ValidateKey(QuizStoreKey))
	assert.NoError(t, ValidateKey("snapsolve:user-store"))

	for _, bad := range []string{"", "../etc/passwd", "a/b", ".hidden", "with space"} {
		assert.ErrorIs(t, ValidateKey(bad), ErrInvalidKey, bad)
	}
}
