package doctor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expath/xproj/internal/orchestrator"
	"github.com/expath/xproj/internal/project"
)

func fakeJava(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a unix shell")
	}
	path := filepath.Join(t.TempDir(), "java")
	script := "#!/bin/sh\necho 'openjdk version \"17.0.2\" 2022-01-18' >&2\necho 'OpenJDK Runtime Environment' >&2\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func pluginDir(t *testing.T, jars ...string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "repo", "functx-1.0"), 0o755))
	for _, jar := range jars {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", jar), nil, 0o644))
	}
	return dir
}

func TestDiagnoseHealthy(t *testing.T) {
	root, err := project.Scaffold(filepath.Join(t.TempDir(), "hello"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root.Private, orchestrator.ReleaserOverride), nil, 0o644))
	desc := `<project xmlns="http://expath.org/ns/project" name="http://example.org/hello" abbrev="hello" version="1.2.0"/>`
	require.NoError(t, os.WriteFile(root.Descriptor, []byte(desc), 0o644))

	d := Diagnose(Options{
		Java:      fakeJava(t),
		PluginDir: pluginDir(t, "saxon9he.jar", "calabash-1.1.jar"),
		WorkDir:   filepath.Join(root.Dir, "src"),
	})

	assert.True(t, d.Healthy, "issues: %v", d.Issues)
	assert.Equal(t, `openjdk version "17.0.2" 2022-01-18`, d.Runtime.Version)
	assert.ElementsMatch(t, []string{"saxon9he.jar", "calabash-1.1.jar"}, d.Plugin.Jars)
	assert.Equal(t, []string{"functx-1.0"}, d.Plugin.Packages)
	assert.Empty(t, d.Plugin.Missing)

	assert.True(t, d.Project.Found)
	assert.Equal(t, root.Dir, d.Project.Dir)
	assert.Equal(t, "http://example.org/hello", d.Project.Name)
	assert.Equal(t, "1.2.0", d.Project.Version)
	assert.Equal(t, []string{orchestrator.ReleaserOverride}, d.Project.Overrides)
}

func TestDiagnoseProblems(t *testing.T) {
	t.Run("missing java", func(t *testing.T) {
		d := Diagnose(Options{
			Java:      filepath.Join(t.TempDir(), "no-java"),
			PluginDir: pluginDir(t, "saxon.jar", "calabash.jar"),
			WorkDir:   t.TempDir(),
		})
		assert.False(t, d.Healthy)
		assert.False(t, d.Runtime.Installed)
		assert.Contains(t, d.Warnings, "not inside an XProject project")
	})

	t.Run("plugin without repo", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "lib"), 0o755))

		d := Diagnose(Options{Java: fakeJava(t), PluginDir: dir, WorkDir: t.TempDir()})
		assert.False(t, d.Healthy)
		assert.False(t, d.Plugin.Valid)
		require.Len(t, d.Issues, 1)
		assert.Contains(t, d.Issues[0], "not found")
	})

	t.Run("empty lib", func(t *testing.T) {
		d := Diagnose(Options{Java: fakeJava(t), PluginDir: pluginDir(t), WorkDir: t.TempDir()})
		assert.False(t, d.Healthy)
		assert.ElementsMatch(t, []string{"saxon", "calabash"}, d.Plugin.Missing)
	})
}
