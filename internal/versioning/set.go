package versioning

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrUnknownVersion is returned when a lookup names a version that is not configured.
	ErrUnknownVersion = errors.New("unknown docs version")
	// ErrNoVersions is returned when options leave no version to build.
	ErrNoVersions = errors.New("no docs versions to build")
)

// Set is the resolved, ordered list of versions. It is immutable after New.
type Set struct {
	versions []Version
	byName   map[string]int
}

// New resolves options into a Set ordered current first, then released versions as listed.
//
// Released versions read from versioned_docs/version-<name> and
// versioned_sidebars/version-<name>-sidebars.jsonc. The current version keeps
// the "next" path segment unless an override changes it.
func New(opts Options) (*Set, error) {
	last := opts.LastVersion
	if last == "" {
		if len(opts.Versions) > 0 {
			last = opts.Versions[0]
		} else {
			last = CurrentVersionName
		}
	}

	var versions []Version
	if opts.IncludeCurrent {
		dir := opts.CurrentDir
		if dir == "" {
			dir = "docs"
		}
		versions = append(versions, Version{
			Name:        CurrentVersionName,
			Label:       "Next",
			Path:        "next",
			ContentDir:  dir,
			SidebarPath: opts.CurrentSidebar,
			IsCurrent:   true,
			IsLast:      last == CurrentVersionName,
		})
	}

	seen := map[string]bool{CurrentVersionName: true}
	for _, name := range opts.Versions {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return nil, fmt.Errorf("invalid or duplicate version name %q", name)
		}
		seen[name] = true
		v := Version{
			Name:        name,
			Label:       name,
			Path:        name,
			ContentDir:  path.Join("versioned_docs", "version-"+name),
			SidebarPath: path.Join("versioned_sidebars", "version-"+name+"-sidebars.jsonc"),
			IsLast:      name == last,
		}
		if v.IsLast {
			v.Path = ""
		}
		versions = append(versions, v)
	}

	if len(versions) == 0 {
		return nil, ErrNoVersions
	}

	set := &Set{versions: versions, byName: make(map[string]int, len(versions))}
	for i := range set.versions {
		v := &set.versions[i]
		if o, ok := opts.Overrides[v.Name]; ok {
			if o.Label != "" {
				v.Label = o.Label
			}
			if o.Path != nil {
				v.Path = strings.Trim(*o.Path, "/")
			}
		}
		set.byName[v.Name] = i
	}
	if _, ok := set.byName[last]; !ok {
		return nil, fmt.Errorf("%w: last version %q", ErrUnknownVersion, last)
	}
	return set, nil
}

// All returns the versions in build order.
func (s *Set) All() []Version {
	return append([]Version(nil), s.versions...)
}

// Get returns the named version.
func (s *Set) Get(name string) (Version, error) {
	i, ok := s.byName[name]
	if !ok {
		return Version{}, fmt.Errorf("%w: %q", ErrUnknownVersion, name)
	}
	return s.versions[i], nil
}

// Last returns the version served without a path segment.
func (s *Set) Last() Version {
	for _, v := range s.versions {
		if v.IsLast {
			return v
		}
	}
	return s.versions[0]
}
