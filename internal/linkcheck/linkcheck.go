// Package linkcheck finds internal links in rendered pages that do not
// resolve to a route of the build.
package linkcheck

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html"

	cerrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/routes"
	"git.home.luguber.info/inful/pagebuilder/internal/util/sets"
)

// Link is an anchor found in a page's article.
type Link struct {
	// Href is the attribute value as written.
	Href string
	// Target is the resolved site path without query or fragment. Empty for links that are not checked.
	Target string
}

// Extract returns the anchors inside the page's <article class="markdown">.
// Documents without such an article are scanned whole. Targets are resolved
// against permalink.
func Extract(r io.Reader, permalink string) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	root := findArticle(doc)
	if root == nil {
		root = doc
	}
	base := &url.URL{Path: permalink}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := getAttr(n, "href"); ok {
				links = append(links, Link{Href: href, Target: resolve(base, href)})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return links, nil
}

// Checker reports links whose target is not a route.
type Checker struct {
	exists func(permalink string) bool
}

// NewChecker checks targets against reg.
func NewChecker(reg *routes.Registry) *Checker {
	return &Checker{exists: func(p string) bool {
		_, ok := reg.Lookup(p)
		return ok
	}}
}

// NewCheckerFunc checks targets with exists.
func NewCheckerFunc(exists func(permalink string) bool) *Checker {
	return &Checker{exists: exists}
}

// Check scans every page and returns one error per distinct broken href per
// page, ordered by page permalink then href.
func (c *Checker) Check(ctx context.Context, pages []*page.CompiledPage) ([]*cerrors.BrokenLinkError, error) {
	var broken []*cerrors.BrokenLinkError
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		links, err := Extract(bytes.NewReader(p.HTML()), p.Permalink())
		if err != nil {
			return nil, err
		}
		seen := sets.New[string]()
		var pageBroken []*cerrors.BrokenLinkError
		for _, l := range links {
			if l.Target == "" || seen.Has(l.Href) {
				continue
			}
			seen.Add(l.Href)
			if !c.exists(l.Target) {
				pageBroken = append(pageBroken, &cerrors.BrokenLinkError{Source: p.Permalink(), Href: l.Href})
			}
		}
		sort.Slice(pageBroken, func(i, j int) bool { return pageBroken[i].Href < pageBroken[j].Href })
		broken = append(broken, pageBroken...)
	}
	sort.SliceStable(broken, func(i, j int) bool { return broken[i].Source < broken[j].Source })
	return broken, nil
}

// resolve returns the site path a link points at, or "" when it leaves the
// site, only moves within the page, or names a static asset.
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	if u.Path == "" {
		return ""
	}
	target := base.ResolveReference(u).Path
	if ext := strings.ToLower(path.Ext(target)); ext != "" && ext != ".html" && ext != ".md" && ext != ".mdx" {
		return ""
	}
	return target
}

func findArticle(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "article" {
		if class, _ := getAttr(n, "class"); hasClass(class, "markdown") {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findArticle(c); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func hasClass(attr, class string) bool {
	for _, c := range strings.Fields(attr) {
		if c == class {
			return true
		}
	}
	return false
}
