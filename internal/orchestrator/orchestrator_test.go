package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expath/xproj/internal/javaproc"
	"github.com/expath/xproj/internal/project"
)

// echoArgs prints every argument on its own line.
const echoArgs = `printf '%s\n' "$@"`

type messages struct {
	mu    sync.Mutex
	infos []string
	errs  []string
}

func (m *messages) Info(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *messages) Error(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, msg)
}

// countingLauncher records how many descriptors were launched.
type countingLauncher struct {
	*javaproc.Launcher
	calls int
}

func (l *countingLauncher) Launch(d *javaproc.Descriptor) (*javaproc.Handle, error) {
	l.calls++
	return l.Launcher.Launch(d)
}

func fakeJava(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a unix shell")
	}
	path := filepath.Join(t.TempDir(), "java")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func pluginDir(t *testing.T) PluginDirs {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "repo"), 0o755))
	for _, jar := range []string{"a.jar", "b.jar"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", jar), nil, 0o644))
	}
	p, err := NewPluginDirs(dir)
	require.NoError(t, err)
	return p
}

func newProject(t *testing.T) *project.Root {
	t.Helper()
	root, err := project.Scaffold(filepath.Join(t.TempDir(), "hello"))
	require.NoError(t, err)
	return root
}

func setup(t *testing.T, script string) (*Orchestrator, *messages) {
	t.Helper()
	msgs := &messages{}
	o, err := New(newProject(t), Options{
		Plugin:   pluginDir(t),
		Launcher: javaproc.NewLauncher(fakeJava(t, script), nil),
		Messages: msgs,
		Revision: "r1",
	})
	require.NoError(t, err)
	return o, msgs
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

func lines(res Result) []string {
	return strings.Split(res.Outcome.Stdout, "\n")
}

func TestBuildPipeline(t *testing.T) {
	o, msgs := setup(t, echoArgs)
	_, err := os.Stat(o.Root().Dist())
	require.True(t, os.IsNotExist(err))

	res := o.Build(ctx(t))
	require.NoError(t, res.Err)
	assert.True(t, res.Success)

	args := lines(res)
	assert.Contains(t, args, "-Dorg.expath.pkg.saxon.repo="+o.opts.Plugin.Repo)
	assert.Contains(t, args, "-Dcom.xmlcalabash.xproc-configurer=org.expath.pkg.calabash.PkgConfigurer")
	assert.Equal(t, []string{
		calabashMain,
		"-i",
		"source=" + o.Root().DescriptorURI(),
		BuilderStd,
	}, args[len(args)-4:])

	info, err := os.Stat(o.Root().Dist())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, []string{"Build successful"}, msgs.infos)
	assert.Empty(t, msgs.errs)
}

func TestPhaseEnvironment(t *testing.T) {
	o, _ := setup(t, `echo "$EXPATH_REPO"; pwd -P`)

	res := o.Test(ctx(t))
	require.True(t, res.Success)

	want, err := filepath.EvalSymlinks(o.Root().Dir)
	require.NoError(t, err)
	assert.Equal(t, []string{o.opts.Plugin.Repo, want}, lines(res))

	// test does not write dist/
	_, err = os.Stat(o.Root().Dist())
	assert.True(t, os.IsNotExist(err))
}

func TestProjectOverride(t *testing.T) {
	tests := []struct {
		name  string
		phase Phase
		file  string
		std   string
	}{
		{name: "build", phase: PhaseBuild, file: BuilderOverride, std: BuilderStd},
		{name: "test", phase: PhaseTest, file: TesterOverride, std: TesterStd},
		{name: "doc", phase: PhaseDoc, file: DocerOverride, std: DocerStd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := setup(t, echoArgs)

			res := o.Execute(ctx(t), tt.phase)
			require.True(t, res.Success)
			assert.Equal(t, tt.std, lines(res)[len(lines(res))-1])

			override := filepath.Join(o.Root().Private, tt.file)
			require.NoError(t, os.WriteFile(override, []byte("<p:declare-step/>"), 0o644))

			res = o.Execute(ctx(t), tt.phase)
			require.True(t, res.Success)
			assert.Equal(t, project.FileURI(override), lines(res)[len(lines(res))-1])
		})
	}
}

func TestReleaseStylesheet(t *testing.T) {
	o, _ := setup(t, echoArgs)

	res := o.Release(ctx(t))
	require.True(t, res.Success)
	args := lines(res)
	assert.Equal(t, []string{
		saxonMain,
		saxonInit,
		"-xsl:" + ReleaserStd,
		"-s:" + o.Root().DescriptorURI(),
		"{http://expath.org/ns/project}revision=r1",
	}, args[len(args)-5:])

	override := filepath.Join(o.Root().Private, ReleaserOverride)
	require.NoError(t, os.WriteFile(override, []byte("<xsl:stylesheet/>"), 0o644))
	res = o.Release(ctx(t))
	require.True(t, res.Success)
	assert.Contains(t, lines(res), "-xsl:"+project.FileURI(override))
}

func TestPhaseFailure(t *testing.T) {
	o, msgs := setup(t, "echo 'no such component' >&2; exit 2")

	res := o.Doc(ctx(t))
	assert.NoError(t, res.Err)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "no such component", res.Log)
	assert.Equal(t, []string{"Doc failure: 2\n(please see the log)"}, msgs.errs)
}

func TestDistBlocked(t *testing.T) {
	o, msgs := setup(t, "exit 0")
	require.NoError(t, os.WriteFile(o.Root().Dist(), nil, 0o644))

	res := o.Build(ctx(t))
	assert.True(t, res.Success)
	require.Len(t, msgs.errs, 1)
	assert.Contains(t, msgs.errs[0], "is not a directory")
}

func TestCouldNotStart(t *testing.T) {
	msgs := &messages{}
	o, err := New(newProject(t), Options{
		Plugin:   pluginDir(t),
		Launcher: javaproc.NewLauncher(filepath.Join(t.TempDir(), "missing-java"), nil),
		Messages: msgs,
	})
	require.NoError(t, err)

	res := o.Build(ctx(t))
	assert.False(t, res.Success)
	assert.True(t, errors.Is(res.Err, ErrCouldNotStart))
	assert.True(t, res.Reported)
	require.Len(t, msgs.errs, 1)
	assert.True(t, strings.HasPrefix(msgs.errs[0], "Build could not start"))
}

func TestDeployNotImplemented(t *testing.T) {
	launcher := &countingLauncher{Launcher: javaproc.NewLauncher(fakeJava(t, "exit 0"), nil)}
	msgs := &messages{}
	o, err := New(newProject(t), Options{Plugin: pluginDir(t), Launcher: launcher, Messages: msgs})
	require.NoError(t, err)

	res := o.Deploy(ctx(t))
	assert.True(t, errors.Is(res.Err, ErrNotImplemented))
	assert.True(t, res.Reported)
	assert.Zero(t, launcher.calls)
	assert.Len(t, msgs.errs, 1)

	_, err = o.Start(PhaseDeploy)
	assert.True(t, errors.Is(err, ErrNotImplemented))
}

func TestObserversSeeEventsFirst(t *testing.T) {
	o, msgs := setup(t, "echo one")

	var seen []string
	observer := javaproc.ListenerFuncs{
		OnLine: func(_ javaproc.Stream, text string) { seen = append(seen, text) },
		OnEnded: func(int) {
			assert.Empty(t, msgs.infos)
			seen = append(seen, "ended")
		},
	}
	res := o.Execute(ctx(t), PhaseTest, observer)
	require.True(t, res.Success)
	assert.Equal(t, []string{"one", "ended"}, seen)
}

func TestSetup(t *testing.T) {
	// The fake pipeline creates the project layout from its dir= option.
	script := `for a in "$@"; do
  case "$a" in dir=*) d="${a#dir=}";; esac
done
mkdir -p "$d/xproject" && echo '<project/>' > "$d/xproject/project.xml"`

	msgs := &messages{}
	opts := Options{
		Plugin:   pluginDir(t),
		Launcher: javaproc.NewLauncher(fakeJava(t, script), nil),
		Messages: msgs,
	}
	dir := filepath.Join(t.TempDir(), "fresh")

	o, res := Setup(ctx(t), dir, opts)
	require.NoError(t, res.Err)
	require.True(t, res.Success)
	require.NotNil(t, o)
	assert.Equal(t, dir, o.Root().Dir)
	assert.Equal(t, []string{"Setup successful"}, msgs.infos)
}

func TestSetupArgs(t *testing.T) {
	msgs := &messages{}
	opts := Options{
		Plugin:   pluginDir(t),
		Launcher: javaproc.NewLauncher(fakeJava(t, echoArgs), nil),
		Messages: msgs,
	}
	dir := filepath.Join(t.TempDir(), "fresh")

	o, res := Setup(ctx(t), dir, opts)
	assert.Nil(t, o)
	// The pipeline ran but left no project behind.
	assert.Error(t, res.Err)
	assert.False(t, res.Success)
	assert.True(t, res.Reported)
	assert.Equal(t, []string{res.Err.Error()}, msgs.errs)

	args := lines(res)
	assert.Equal(t, []string{calabashMain, SetupStd, "dir=" + dir}, args[len(args)-3:])
}

func TestSetupTargetExists(t *testing.T) {
	launcher := &countingLauncher{Launcher: javaproc.NewLauncher(fakeJava(t, "exit 0"), nil)}
	dir := t.TempDir()

	o, res := Setup(ctx(t), dir, Options{Plugin: pluginDir(t), Launcher: launcher})
	assert.Nil(t, o)
	assert.True(t, errors.Is(res.Err, ErrTargetExists))
	assert.Zero(t, launcher.calls)
}

func TestNewPluginDirs(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := NewPluginDirs("")
		assert.Error(t, err)
	})

	t.Run("missing repo", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "lib"), 0o755))
		_, err := NewPluginDirs(dir)
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("lib is a file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "lib"), nil, 0o644))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "repo"), 0o755))
		_, err := NewPluginDirs(dir)
		assert.ErrorContains(t, err, "not a dir")
	})

	t.Run("classpath skips directories", func(t *testing.T) {
		p := pluginDir(t)
		require.NoError(t, os.Mkdir(filepath.Join(p.Lib, "nested"), 0o755))
		cp, err := p.Classpath()
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(p.Lib, "a.jar"), filepath.Join(p.Lib, "b.jar")}, cp)
	})
}

func TestParsePhase(t *testing.T) {
	p, err := ParsePhase(" Release ")
	require.NoError(t, err)
	assert.Equal(t, PhaseRelease, p)

	p, err = ParsePhase("deploy")
	require.NoError(t, err)
	assert.Equal(t, PhaseDeploy, p)

	_, err = ParsePhase("package")
	assert.Error(t, err)

	_, err = ParsePhase("setup")
	assert.ErrorContains(t, err, "setup <dir>")
	assert.Equal(t, "Doc", PhaseDoc.Title())
}
