package asn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	assert.Equal(t, "All AS from AT - TUNET-AS", Describe("AT", "TUNET-AS"))
}

func TestNormalizeCountry(t *testing.T) {
	for in, want := range map[string]string{"AT": "AT", "at": "AT", " de ": "DE"} {
		got, err := NormalizeCountry(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "A", "AUT", "A1", "Ä1", "../"} {
		_, err := NormalizeCountry(in)
		assert.Error(t, err, in)
	}
}
