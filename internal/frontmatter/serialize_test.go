package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeYAML_SortsKeysRecursively(t *testing.T) {
	out, err := SerializeYAML(map[string]any{
		"title": "Hello",
		"meta":  map[string]any{"z": 1, "a": true},
		"tags":  []any{"b", "a"},
	}, Style{})
	require.NoError(t, err)
	require.Equal(t, "meta:\n  a: true\n  z: 1\ntags:\n  - b\n  - a\ntitle: Hello\n", string(out))
}

func TestSerializeYAML_CRLF(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"a": "b"}, Style{Newline: "\r\n"})
	require.NoError(t, err)
	require.Equal(t, "a: b\r\n", string(out))
}

func TestCanonical_IgnoresSourceFormatting(t *testing.T) {
	a, _, err := Parse(doc("---\ntitle:   Hello\nid: x\nfingerprint: abc\n---\n"))
	require.NoError(t, err)
	b, _, err := Parse(doc("---\nid: 'x'\ntitle: \"Hello\"\n---\n"))
	require.NoError(t, err)

	ca, err := a.Canonical(KeyFingerprint)
	require.NoError(t, err)
	cb, err := b.Canonical(KeyFingerprint)
	require.NoError(t, err)
	require.Equal(t, string(cb), string(ca))
}
