package versioning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadVersionsFile(t *testing.T) {
	dir := t.TempDir()
	names, err := ReadVersionsFile(dir)
	require.NoError(t, err)
	require.Nil(t, names)

	require.NoError(t, os.WriteFile(filepath.Join(dir, VersionsFile), []byte("[\n  \"2.0\", // newest\n  \"1.0\",\n]\n"), 0o600))
	names, err = ReadVersionsFile(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"2.0", "1.0"}, names)

	require.NoError(t, os.WriteFile(filepath.Join(dir, VersionsFile), []byte(`{"2.0": true}`), 0o600))
	_, err = ReadVersionsFile(dir)
	require.Error(t, err)
}
