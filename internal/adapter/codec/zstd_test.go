package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outpost/internal/app/ports"
)

type sample struct {
	Hours int             `json:"hours"`
	Flags map[string]bool `json:"flags"`
	Names []string        `json:"names"`
}

func TestZstd_EncodesCompressedFrame(t *testing.T) {
	c := NewZstd()
	in := sample{Hours: 12, Flags: map[string]bool{"settled": true}, Names: []string{"Ada", "Bo"}}

	blob, err := c.Encode(in)
	require.NoError(t, err)
	assert.True(t, isFrame(blob))

	var out sample
	require.NoError(t, c.Decode(blob, &out))
	assert.Equal(t, in, out)
}

func TestZstd_DecodesPlainJSON(t *testing.T) {
	var out sample
	require.NoError(t, NewZstd().Decode([]byte(`{"hours":3}`), &out))
	assert.Equal(t, 3, out.Hours)
}

func TestZstd_RejectsGarbage(t *testing.T) {
	var out sample
	assert.ErrorIs(t, NewZstd().Decode([]byte("not a save"), &out), ports.ErrCorruptSave)
}
