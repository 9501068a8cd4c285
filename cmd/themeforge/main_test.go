package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t    *testing.T
	dsn  string
	dir  string
	args []string
}

func newCLI(t *testing.T) *cli {
	dir := t.TempDir()
	return &cli{
		t:   t,
		dir: dir,
		dsn: filepath.Join(dir, "designs.db"),
	}
}

func (c *cli) exec(stdin string, args ...string) (string, error) {
	c.t.Helper()

	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--dsn", c.dsn, "--log-level", "error"}, append(c.args, args...)...))

	err := root.Execute()
	return out.String(), err
}

func (c *cli) run(args ...string) string {
	c.t.Helper()
	out, err := c.exec("", args...)
	require.NoError(c.t, err, out)
	return out
}

func TestVersionCommandOutputsBuildInfo(t *testing.T) {
	originalVersion := version
	originalCommit := commit
	t.Cleanup(func() {
		version = originalVersion
		commit = originalCommit
	})
	version = "1.2.3"
	commit = "abcdef1"

	out := newCLI(t).run("version")
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "abcdef1")
}

func TestTemplatesAndComposables(t *testing.T) {
	c := newCLI(t)

	out := c.run("templates")
	assert.Contains(t, out, "static:default")
	assert.Contains(t, out, "Dark, Light*")

	out = c.run("composables")
	assert.Contains(t, out, "dense-spacing")
	assert.Contains(t, out, "contrast-text  dynamic")
}

func TestDesignLifecycle(t *testing.T) {
	c := newCLI(t)

	assert.Contains(t, c.run("designs", "list"), "No saved designs.")
	assert.Contains(t, c.run("new", "brand", "--with", "rounded"), "Created brand")
	assert.Contains(t, c.run("designs", "list"), "brand")

	out, err := c.exec("set spacing 5\nset palette.primary.main #ff0000\ncommit\nsave\nquit\n", "edit", "brand")
	require.NoError(t, err)
	assert.Contains(t, out, "brand*> ")
	assert.Contains(t, out, "saved brand")

	mods := c.run("export", "brand", "--modifications")
	assert.Contains(t, mods, `"spacing": 5`)
	assert.Contains(t, mods, `"palette.primary.main": "#ff0000"`)

	theme := c.run("resolve", "brand", "--export")
	assert.Contains(t, theme, `"borderRadius": 12`)
	assert.Contains(t, theme, `"main": "#ff0000"`)

	assert.NotEmpty(t, c.run("preview", "brand"))

	c.run("designs", "delete", "brand")
	assert.Contains(t, c.run("designs", "list"), "No saved designs.")
}

func TestEditRefusesQuitWithUncommittedEdits(t *testing.T) {
	c := newCLI(t)

	out, err := c.exec("set spacing 3\nquit\nfield spacing\ndiscard\nquit\n", "edit")
	require.NoError(t, err)
	assert.Contains(t, out, "uncommitted changes")
	assert.Contains(t, out, "spacing = 3")
	assert.Contains(t, out, "overridden")
}

func TestEditFunctionControlledPath(t *testing.T) {
	c := newCLI(t)

	script := strings.Join([]string{
		"set shape.borderRadius theme => theme.spacing / 2",
		"commit",
		"field shape.borderRadius",
		"set shape.borderRadius 3",
		"undo",
		"quit",
	}, "\n")
	out, err := c.exec(script, "edit")
	require.NoError(t, err)
	assert.Contains(t, out, "shape.borderRadius = 4")
	assert.Contains(t, out, "function: theme => theme.spacing / 2")
	assert.Contains(t, out, "controlled by a function")
	assert.Contains(t, out, "undid commit modifications")
}

func TestImportModifications(t *testing.T) {
	c := newCLI(t)
	c.run("new", "brand")

	file := filepath.Join(c.dir, "mods.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"literals":{"spacing":6},"functions":{"shape.borderRadius":"= spacing + 1"}}`), 0o644))

	assert.Contains(t, c.run("import", "brand", file), "Imported")
	assert.Contains(t, c.run("resolve", "brand", "--export"), `"borderRadius": 7`)

	require.NoError(t, os.WriteFile(file, []byte(`[1, 2]`), 0o644))
	_, err := c.exec("", "import", "brand", file)
	assert.Error(t, err)
}

func TestImportTemplate(t *testing.T) {
	c := newCLI(t)
	c.args = []string{"--catalog", filepath.Join(c.dir, "catalog")}

	file := filepath.Join(c.dir, "theme.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"palette":{"mode":"dark","primary":{"main":"#ff5722"}}}`), 0o644))

	out := c.run("import", "-", file, "--template", "ember", "--name", "Ember")
	assert.Contains(t, out, "imported:ember")

	out = c.run("templates")
	assert.Contains(t, out, "imported:ember")
	assert.Contains(t, out, "Ember")

	c.run("new", "warm", "--base", "imported:ember")
	assert.Contains(t, c.run("resolve", "warm"), "#ff5722")
}

func TestImportTemplateNeedsCatalog(t *testing.T) {
	c := newCLI(t)
	file := filepath.Join(c.dir, "theme.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"palette":{"mode":"light"}}`), 0o644))

	_, err := c.exec("", "import", "-", file, "--template", "x")
	assert.ErrorContains(t, err, "catalog directory")
}

func TestParseSwitch(t *testing.T) {
	for _, s := range []string{"on", "ON", "true", "yes", "1"} {
		v, err := parseSwitch(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	v, err := parseSwitch("off")
	require.NoError(t, err)
	assert.False(t, v)

	_, err = parseSwitch("maybe")
	assert.Error(t, err)
}

func TestConfigShowsSources(t *testing.T) {
	c := newCLI(t)

	out := c.run("config")
	assert.Regexp(t, `storage\.dsn\s+\S+designs\.db\s+flag`, out)
	assert.Regexp(t, `logging\.level\s+error\s+flag`, out)
	assert.Regexp(t, `history\.limit\s+50\s+defaults`, out)
	assert.Regexp(t, `script\.timeout\s+250ms\s+defaults`, out)

	_, err := c.exec("", "--log-level", "loud", "config")
	assert.Error(t, err)
}
