package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type color string

const (
	red   color = "red"
	green color = "green"
)

func newColors() *Normalizer[color] {
	return NewNormalizer(map[string]color{"Red": red, "green": green}, red)
}

func TestNormalize(t *testing.T) {
	n := newColors()
	tests := []struct {
		in   string
		want color
	}{
		{"red", red},
		{"  GREEN ", green},
		{"RED", red},
		{"blue", red},
		{"", red},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestLookupAndParse(t *testing.T) {
	n := newColors()

	v, ok := n.Lookup(" Green")
	require.True(t, ok)
	require.Equal(t, green, v)

	_, ok = n.Lookup("blue")
	require.False(t, ok)

	_, err := n.Parse("blue")
	require.EqualError(t, err, `invalid value "blue", valid options: green, red`)
}

func TestKeys_SortedCopy(t *testing.T) {
	n := newColors()
	keys := n.Keys()
	require.Equal(t, []string{"green", "red"}, keys)
	keys[0] = "changed"
	require.Equal(t, []string{"green", "red"}, n.Keys())
}
