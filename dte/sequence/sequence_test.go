package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationCodeFormat(t *testing.T) {

	g, err := New("M001", "P001")
	require.NoError(t, err)

	code := g.GenerationCode()
	assert.Len(t, code, 36)
	assert.NotEqual(t, code, g.GenerationCode(), "unique per call")

	for _, r := range code {
		ok := (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') || r == '-'
		assert.True(t, ok, "unexpected rune %q", r)
	}
}

func TestControlNumberFormat(t *testing.T) {

	g, err := New("M001", "P001")
	require.NoError(t, err)

	first, err := g.ControlNumber("01")
	require.NoError(t, err)
	second, err := g.ControlNumber("01")
	require.NoError(t, err)

	assert.Len(t, first, 31)
	assert.Equal(t, "DTE-01-M001P001-000000000000001", first)
	assert.Equal(t, "DTE-01-M001P001-000000000000002", second)
}

func TestControlNumberPadsShortCodes(t *testing.T) {

	g, err := New("1", "2")
	require.NoError(t, err)

	n, err := g.ControlNumber("03")
	require.NoError(t, err)

	assert.Len(t, n, 31)
	assert.Equal(t, "DTE-03-00010002-000000000000001", n)
}

func TestControlNumberRejectsBadTipo(t *testing.T) {

	g, err := New("M001", "P001")
	require.NoError(t, err)

	_, err = g.ControlNumber("001")
	assert.Error(t, err)
}

func TestNewRejectsLongCodes(t *testing.T) {

	_, err := New("TOOLONG", "P001")
	assert.Error(t, err)
}
