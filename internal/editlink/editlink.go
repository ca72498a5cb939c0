// Package editlink computes the "edit this page" URL of a document.
package editlink

import (
	"fmt"
	"strings"
)

// Options is the site-level edit link configuration.
type Options struct {
	// EditURL is a prefix joined with the site-relative source path.
	EditURL string
	// Repository is the web URL of the repository holding the site.
	Repository string
	Branch     string
	Forge      ForgeType
	// SiteDir is the site's location inside the repository, e.g. "website".
	SiteDir string
}

// Input describes one document.
type Input struct {
	// SitePath is the source path relative to the site root, e.g. "docs/intro.md".
	SitePath string
	// Custom is the custom_edit_url frontmatter value.
	Custom string
	// Disabled is set when custom_edit_url is an explicit null.
	Disabled bool
}

// Resolver picks the edit URL for a document: the frontmatter override, then
// the configured prefix, then a forge URL built from the repository.
type Resolver struct {
	opts  Options
	chain *DetectorChain
}

// NewResolver creates a resolver with the configured-then-heuristic detector chain.
func NewResolver(opts Options) *Resolver {
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	return &Resolver{
		opts:  opts,
		chain: NewDetectorChain().Add(ConfiguredDetector{}).Add(HeuristicDetector{}),
	}
}

// NewResolverWithChain creates a resolver using a custom detector chain.
func NewResolverWithChain(opts Options, chain *DetectorChain) *Resolver {
	r := NewResolver(opts)
	r.chain = chain
	return r
}

// Resolve returns the edit URL, or "" when none applies.
func (r *Resolver) Resolve(in Input) string {
	if in.Disabled {
		return ""
	}
	if in.Custom != "" {
		return in.Custom
	}
	if r.opts.EditURL != "" {
		return joinURL(r.opts.EditURL, in.SitePath)
	}
	if r.opts.Repository == "" {
		return ""
	}
	res := r.chain.Detect(DetectionContext{Repository: r.opts.Repository, Forge: r.opts.Forge})
	if !res.Found {
		return ""
	}
	return BuildURL(res.ForgeType, res.BaseURL, res.FullName, r.opts.Branch, repoPath(r.opts.SiteDir, in.SitePath))
}

// BuildURL renders the forge-specific edit URL for a file.
func BuildURL(ft ForgeType, baseURL, fullName, branch, filePath string) string {
	if baseURL == "" || fullName == "" || branch == "" || filePath == "" {
		return ""
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	switch ft {
	case ForgeGitHub:
		return fmt.Sprintf("%s/%s/edit/%s/%s", baseURL, fullName, branch, filePath)
	case ForgeGitLab:
		return fmt.Sprintf("%s/%s/-/edit/%s/%s", baseURL, fullName, branch, filePath)
	case ForgeForgejo:
		return fmt.Sprintf("%s/%s/_edit/%s/%s", baseURL, fullName, branch, filePath)
	case ForgeBitbucket:
		return fmt.Sprintf("%s/%s/src/%s/%s?mode=edit", baseURL, fullName, branch, filePath)
	default:
		return ""
	}
}

func repoPath(siteDir, sitePath string) string {
	siteDir = strings.Trim(siteDir, "/")
	if siteDir == "" || siteDir == "." {
		return sitePath
	}
	return siteDir + "/" + sitePath
}

// joinURL joins segments with exactly one slash between them, keeping the scheme's double slash.
func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		out += "/" + p
	}
	return out
}
