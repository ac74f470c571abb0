package nmr

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("state.json")
	require.NoError(t, err)
	_, err = w.Write([]byte(`{"spectra":[]}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestProcessArchive(t *testing.T) {
	data := zipBytes(t)

	for _, name := range []string{"caffeine.nmrium.zip", "raw.ZIP"} {
		b, err := ProcessArchive(name, data)
		require.NoError(t, err, name)
		assert.Equal(t, name, b.FileName)
		assert.Equal(t, 1, b.SpectraCount)
		assert.Equal(t, data, b.Archive)
	}
}

func TestProcessArchive_Rejects(t *testing.T) {
	_, err := ProcessArchive("", nil)
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = ProcessArchive("spectrum.jdx", zipBytes(t))
	assert.ErrorIs(t, err, ErrExtension)

	_, err = ProcessArchive("fake.zip", []byte("not a zip"))
	assert.ErrorIs(t, err, ErrNotAnArchive)
}
