package ticket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"A000", "A001"},
		{"A001", "A002"},
		{"A099", "A100"},
		{"A999", "B000"},
		{"B123", "B124"},
		{"Y999", "Z000"},
		{"Z998", "Z999"},
		{"Z999", "A000"}, // wraparound
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := NextCode(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestNextCodeRejectsMalformedInput(t *testing.T) {
	for _, in := range []string{"", "A00", "A0000", "a000", "1000", "AB00", "A0x0", "Z99é"} {
		t.Run(in, func(t *testing.T) {
			_, err := NextCode(in)
			assert.ErrorIs(t, err, ErrInvalidCodeFormat)
		})
	}
}

// codeLess orders codes by (letter, number), the sequence order.
func codeLess(a, b string) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1:] < b[1:]
}

func TestNextCodeSequenceIsStrictlyOrderedAndDistinct(t *testing.T) {
	code := "C950"
	seen := map[string]bool{code: true}
	for i := 0; i < 5000; i++ {
		next, err := NextCode(code)
		require.NoError(t, err)
		assert.True(t, codeLess(code, next), "%s should precede %s", code, next)
		assert.False(t, seen[next], "code %s issued twice", next)
		seen[next] = true
		code = next
	}
}
