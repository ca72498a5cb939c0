package versioning

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// VersionsFile is the file listing released versions, newest first.
const VersionsFile = "versions.json"

// ReadVersionsFile reads the released versions from siteDir/versions.json.
// A missing file means no released versions.
func ReadVersionsFile(siteDir string) ([]string, error) {
	p := filepath.Join(siteDir, VersionsFile)
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	var names []string
	if err := json.Unmarshal(jsonc.ToJSON(data), &names); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return names, nil
}
