package editlink

import (
	"net/url"
	"strings"
)

// ForgeType names a git hosting product with a known edit URL layout.
type ForgeType string

const (
	ForgeGitHub    ForgeType = "github"
	ForgeGitLab    ForgeType = "gitlab"
	ForgeForgejo   ForgeType = "forgejo"
	ForgeBitbucket ForgeType = "bitbucket"
)

// ParseForgeType normalizes a configured forge name. Unknown names yield "".
func ParseForgeType(s string) ForgeType {
	switch ForgeType(strings.ToLower(strings.TrimSpace(s))) {
	case ForgeGitHub:
		return ForgeGitHub
	case ForgeGitLab:
		return ForgeGitLab
	case ForgeForgejo, "gitea":
		return ForgeForgejo
	case ForgeBitbucket:
		return ForgeBitbucket
	default:
		return ""
	}
}

// DetectionContext is the input shared by all detectors.
type DetectionContext struct {
	Repository string
	Forge      ForgeType
}

// DetectionResult identifies a repository on a forge.
type DetectionResult struct {
	ForgeType ForgeType
	BaseURL   string
	FullName  string
	Found     bool
}

// ForgeDetector recognizes a repository URL.
type ForgeDetector interface {
	Detect(ctx DetectionContext) DetectionResult
	Name() string
}

// DetectorChain asks each detector in turn until one succeeds.
type DetectorChain struct {
	detectors []ForgeDetector
}

// NewDetectorChain creates an empty chain.
func NewDetectorChain() *DetectorChain {
	return &DetectorChain{}
}

// Add appends a detector.
func (dc *DetectorChain) Add(d ForgeDetector) *DetectorChain {
	dc.detectors = append(dc.detectors, d)
	return dc
}

// Detect returns the first successful detection.
func (dc *DetectorChain) Detect(ctx DetectionContext) DetectionResult {
	for _, d := range dc.detectors {
		if res := d.Detect(ctx); res.Found {
			return res
		}
	}
	return DetectionResult{}
}

// ConfiguredDetector trusts an explicitly configured forge type.
type ConfiguredDetector struct{}

func (ConfiguredDetector) Name() string { return "configured" }

func (ConfiguredDetector) Detect(ctx DetectionContext) DetectionResult {
	if ctx.Forge == "" {
		return DetectionResult{}
	}
	base, full, ok := splitRepository(ctx.Repository)
	if !ok {
		return DetectionResult{}
	}
	return DetectionResult{ForgeType: ctx.Forge, BaseURL: base, FullName: full, Found: true}
}

// HeuristicDetector infers the forge from the repository host name.
type HeuristicDetector struct{}

func (HeuristicDetector) Name() string { return "heuristic" }

func (HeuristicDetector) Detect(ctx DetectionContext) DetectionResult {
	base, full, ok := splitRepository(ctx.Repository)
	if !ok {
		return DetectionResult{}
	}
	var ft ForgeType
	switch host := strings.ToLower(base); {
	case strings.Contains(host, "github."):
		ft = ForgeGitHub
	case strings.Contains(host, "gitlab."):
		ft = ForgeGitLab
	case strings.Contains(host, "bitbucket."):
		ft = ForgeBitbucket
	case strings.Contains(host, "forgejo"), strings.Contains(host, "gitea"), strings.Contains(host, "codeberg."):
		ft = ForgeForgejo
	default:
		return DetectionResult{}
	}
	return DetectionResult{ForgeType: ft, BaseURL: base, FullName: full, Found: true}
}

// splitRepository turns a web or SSH repository URL into scheme://host and owner/repo.
func splitRepository(repo string) (base, fullName string, ok bool) {
	repo = strings.TrimSpace(repo)
	if strings.HasPrefix(repo, "git@") {
		parts := strings.SplitN(strings.TrimPrefix(repo, "git@"), ":", 2)
		if len(parts) != 2 {
			return "", "", false
		}
		repo = "https://" + parts[0] + "/" + parts[1]
	}
	u, err := url.Parse(repo)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", "", false
	}
	full := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")
	if !strings.Contains(full, "/") {
		return "", "", false
	}
	return u.Scheme + "://" + u.Host, full, true
}
