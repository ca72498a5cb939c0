package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/sink"
	"git.home.luguber.info/inful/pagebuilder/internal/testutil"
)

// scaffold writes the starter site into a temp dir and returns its CLI root.
func scaffold(t *testing.T) (*CLI, string) {
	t.Helper()
	dir := t.TempDir()
	root := &CLI{Config: filepath.Join(dir, "pagebuilder.yaml")}
	var out bytes.Buffer
	require.NoError(t, RunInit(&Global{Out: &out}, root.Config, false, true))
	require.Contains(t, out.String(), "Created")
	return root, dir
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	root, _ := scaffold(t)
	err := RunInit(&Global{Out: &bytes.Buffer{}}, root.Config, false, false)
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryConfig, ferrors.GetCategory(err))
}

func TestBuild_WritesSiteReportAndHistory(t *testing.T) {
	root, dir := scaffold(t)
	var out bytes.Buffer
	require.NoError(t, (&BuildCmd{}).Run(&Global{Out: &out}, root))
	require.Contains(t, out.String(), "outcome=success")

	testutil.NewSiteOutput(t, filepath.Join(dir, "build")).
		HasPage("docs/next/intro", "Welcome to your documentation site.").
		HasPage("docs/next/guides/first-steps", "Write your first guide here.").
		HasFile(sink.ManifestJSON)
	require.FileExists(t, filepath.Join(dir, StateDir, "build-report.json"))

	var hist bytes.Buffer
	require.NoError(t, (&HistoryCmd{JSON: true}).Run(&Global{Out: &hist}, root))
	var records []sink.BuildRecord
	require.NoError(t, json.Unmarshal(hist.Bytes(), &records))
	require.Len(t, records, 1)
	require.Equal(t, "success", records[0].Outcome)
	require.Equal(t, 2, records[0].Routes)
}

func TestBuild_OutputOverride(t *testing.T) {
	root, _ := scaffold(t)
	out := filepath.Join(t.TempDir(), "public")
	require.NoError(t, (&BuildCmd{Output: out}).Run(&Global{Out: &bytes.Buffer{}}, root))
	testutil.NewSiteOutput(t, out).HasPage("docs/next/intro", "Introduction")
}

func TestRoutes(t *testing.T) {
	root, _ := scaffold(t)

	var table bytes.Buffer
	require.NoError(t, (&RoutesCmd{}).Run(&Global{Out: &table}, root))
	require.Contains(t, table.String(), "/docs/next/intro")
	require.Contains(t, table.String(), "/docs/next/guides/first-steps")

	var raw bytes.Buffer
	require.NoError(t, (&RoutesCmd{JSON: true}).Run(&Global{Out: &raw}, root))
	var m sink.Manifest
	require.NoError(t, json.Unmarshal(raw.Bytes(), &m))
	require.Len(t, m.Routes, 2)
	require.NotEmpty(t, m.Digest)
}

func TestCheck_StrictFailsOnBrokenLink(t *testing.T) {
	root, dir := scaffold(t)
	broken := "---\ntitle: Broken\n---\n\nSee [the missing page](./missing.md).\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "broken.md"), []byte(broken), 0o644))

	var out bytes.Buffer
	require.NoError(t, (&CheckCmd{}).Run(&Global{Out: &out}, root))
	require.Contains(t, out.String(), "BROKEN")
	require.Contains(t, out.String(), "outcome=warning")

	out.Reset()
	err := (&CheckCmd{Strict: true}).Run(&Global{Out: &out}, root)
	require.Error(t, err)
	require.Equal(t, 4, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	require.NoDirExists(t, filepath.Join(dir, "build"))
}

func TestCheck_UnknownComponentExitCode(t *testing.T) {
	root, dir := scaffold(t)
	doc := "---\ntitle: Widget\n---\n\n<Widget />\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "widget.mdx"), []byte(doc), 0o644))

	var out bytes.Buffer
	err := (&CheckCmd{}).Run(&Global{Out: &out}, root)
	require.Error(t, err)
	require.Equal(t, 3, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	require.Contains(t, out.String(), "FAIL docs/widget.mdx")
}

func TestShow(t *testing.T) {
	root, _ := scaffold(t)

	var raw bytes.Buffer
	require.NoError(t, (&ShowCmd{Permalink: "/docs/next/intro", Raw: true}).Run(&Global{Out: &raw}, root))
	require.Contains(t, raw.String(), "Welcome to your documentation site.")
	require.NotContains(t, raw.String(), "title: Introduction")

	var styled bytes.Buffer
	require.NoError(t, (&ShowCmd{Permalink: "/docs/next/intro/", Width: 80}).Run(&Global{Out: &styled}, root))
	require.Contains(t, styled.String(), "Introduction")

	err := (&ShowCmd{Permalink: "/docs/next/nope"}).Run(&Global{Out: &bytes.Buffer{}}, root)
	require.Equal(t, ferrors.CategoryNotFound, ferrors.GetCategory(err))
}

func TestHistory_NothingRecorded(t *testing.T) {
	root, _ := scaffold(t)
	var out bytes.Buffer
	require.NoError(t, (&HistoryCmd{}).Run(&Global{Out: &out}, root))
	require.Equal(t, "no builds recorded\n", out.String())
}

func TestLogLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "warn")
	require.Equal(t, "WARN", (&CLI{}).logLevel("debug").String())
	require.Equal(t, "DEBUG", (&CLI{Verbose: true}).logLevel("error").String())

	t.Setenv(LogLevelEnv, "")
	require.Equal(t, "ERROR", (&CLI{}).logLevel("error").String())
}
