package orchestrator

import (
	"fmt"
	"strings"

	"github.com/expath/xproj/internal/project"
)

// Phase is a project action.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhaseBuild   Phase = "build"
	PhaseTest    Phase = "test"
	PhaseDoc     Phase = "doc"
	PhaseRelease Phase = "release"
	PhaseDeploy  Phase = "deploy"
)

// Title is the capitalised phase name used in user messages.
func (p Phase) Title() string {
	s := string(p)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Mode selects the engine a phase runs.
type Mode int

const (
	// ModePipeline runs an XProc pipeline with Calabash.
	ModePipeline Mode = iota
	// ModeStylesheet applies an XSLT stylesheet with Saxon.
	ModeStylesheet
)

// ActionConfig describes how a phase is run.
type ActionConfig struct {
	Standard   string
	Override   string
	Mode       Mode
	WritesDist bool
}

// Standard components and their project-local override names.
const (
	SetupStd         = project.Namespace + "/setup.xproc"
	BuilderStd       = project.Namespace + "/build.xproc"
	BuilderOverride  = "build-project.xproc"
	TesterStd        = project.Namespace + "/test.xproc"
	TesterOverride   = "test-project.xproc"
	DocerStd         = project.Namespace + "/doc.xproc"
	DocerOverride    = "doc-project.xproc"
	ReleaserStd      = project.Namespace + "/release.xsl"
	ReleaserOverride = "release-project.xsl"
)

// Actions is the per-phase configuration. Deploy has no entry.
var Actions = map[Phase]ActionConfig{
	PhaseSetup:   {Standard: SetupStd, Mode: ModePipeline},
	PhaseBuild:   {Standard: BuilderStd, Override: BuilderOverride, Mode: ModePipeline, WritesDist: true},
	PhaseTest:    {Standard: TesterStd, Override: TesterOverride, Mode: ModePipeline},
	PhaseDoc:     {Standard: DocerStd, Override: DocerOverride, Mode: ModePipeline, WritesDist: true},
	PhaseRelease: {Standard: ReleaserStd, Override: ReleaserOverride, Mode: ModeStylesheet, WritesDist: true},
}

// Phases lists the project phases in toolbar order.
var Phases = []Phase{PhaseBuild, PhaseTest, PhaseDoc, PhaseRelease, PhaseDeploy}

// ParsePhase maps a name to a Phase.
func ParsePhase(name string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(name)))
	switch p {
	case PhaseDeploy:
		return p, nil
	case PhaseSetup:
		return "", fmt.Errorf("%q is not a project phase; new projects are created with setup <dir>", name)
	}
	if _, ok := Actions[p]; !ok {
		return "", fmt.Errorf("unknown phase %q", name)
	}
	return p, nil
}

// Engine entry points and arguments.
const (
	calabashMain       = "com.xmlcalabash.drivers.Main"
	saxonMain          = "net.sf.saxon.Transform"
	saxonInit          = "-init:org.expath.pkg.saxon.PkgInitializer"
	calabashConfigurer = "org.expath.pkg.calabash.PkgConfigurer"

	propSaxonRepo    = "org.expath.pkg.saxon.repo"
	propCalabashRepo = "org.expath.pkg.calabash.repo"
	propConfigurer   = "com.xmlcalabash.xproc-configurer"

	// EnvRepo names the package repository for the invoked tools.
	EnvRepo = "EXPATH_REPO"
)
