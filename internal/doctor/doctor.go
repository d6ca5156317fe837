package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/expath/xproj/internal/orchestrator"
	"github.com/expath/xproj/internal/project"
)

// lowMemory is the available memory under which a warning is issued.
const lowMemory = 256 << 20

// engineJars are name fragments of the JARs every phase needs.
var engineJars = []string{"saxon", "calabash"}

// RuntimeStatus represents the status of the Java runtime
type RuntimeStatus struct {
	Name      string
	Installed bool
	Version   string
	Path      string
}

// PluginStatus describes the xproj installation
type PluginStatus struct {
	Dir      string
	Valid    bool
	Jars     []string
	Packages []string
	Error    string
	Missing  []string // engine jars not found in lib/
}

// ProjectStatus describes the enclosing project, if any
type ProjectStatus struct {
	Dir       string
	Found     bool
	Name      string
	Version   string
	Overrides []string
}

// HostStatus is the machine the phases run on
type HostStatus struct {
	Platform        string
	MemoryTotal     uint64
	MemoryAvailable uint64
}

// Diagnosis contains the full health check results
type Diagnosis struct {
	Runtime  RuntimeStatus
	Plugin   PluginStatus
	Project  ProjectStatus
	Host     HostStatus
	Healthy  bool
	Issues   []string
	Warnings []string
}

// Options selects what to check.
type Options struct {
	Java      string
	PluginDir string
	// WorkDir is where the project lookup starts.
	WorkDir string
}

// Diagnose checks that phases can run from opts.WorkDir
func Diagnose(opts Options) Diagnosis {
	d := Diagnosis{Healthy: true}

	d.Runtime = checkJavaRuntime(opts.Java)
	if !d.Runtime.Installed {
		d.Healthy = false
		d.Issues = append(d.Issues, fmt.Sprintf("Java runtime %q is not installed or not runnable", opts.Java))
	}

	d.Plugin = checkPlugin(opts.PluginDir)
	switch {
	case !d.Plugin.Valid:
		d.Healthy = false
		d.Issues = append(d.Issues, d.Plugin.Error)
	case len(d.Plugin.Jars) == 0:
		d.Healthy = false
		d.Issues = append(d.Issues, "no JARs in "+filepath.Join(d.Plugin.Dir, "lib"))
	}
	for _, name := range d.Plugin.Missing {
		d.Warnings = append(d.Warnings, fmt.Sprintf("no %s JAR in the plugin lib/ dir", name))
	}

	d.Project = checkProject(opts.WorkDir)
	if !d.Project.Found {
		d.Warnings = append(d.Warnings, "not inside an XProject project")
	}

	d.Host = checkHost()
	if d.Host.MemoryAvailable > 0 && d.Host.MemoryAvailable < lowMemory {
		d.Warnings = append(d.Warnings, "less than 256 MB of memory available")
	}

	return d
}

// checkJavaRuntime checks if Java is installed
func checkJavaRuntime(java string) RuntimeStatus {
	if java == "" {
		java = "java"
	}
	status := RuntimeStatus{Name: "Java", Installed: false}

	path, err := exec.LookPath(java)
	if err != nil {
		return status
	}
	status.Path = path

	cmd := exec.Command(path, "-version")
	// Java outputs version to stderr
	output, err := cmd.CombinedOutput()
	if err == nil {
		status.Installed = true
		// Parse first line for version
		lines := strings.Split(strings.TrimSpace(string(output)), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}

	return status
}

func checkPlugin(dir string) PluginStatus {
	status := PluginStatus{Dir: dir}

	p, err := orchestrator.NewPluginDirs(dir)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Dir = p.Root
	status.Valid = true

	cp, err := p.Classpath()
	if err != nil {
		status.Valid = false
		status.Error = err.Error()
		return status
	}
	for _, jar := range cp {
		status.Jars = append(status.Jars, filepath.Base(jar))
	}
	for _, want := range engineJars {
		if !containsFold(status.Jars, want) {
			status.Missing = append(status.Missing, want)
		}
	}

	if entries, err := os.ReadDir(p.Repo); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				status.Packages = append(status.Packages, e.Name())
			}
		}
	}
	return status
}

func checkProject(dir string) ProjectStatus {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	status := ProjectStatus{}

	root, err := project.FindRootFromDir(dir)
	if err != nil {
		return status
	}
	status.Found = true
	status.Dir = root.Dir

	if info, err := root.ReadInfo(); err == nil {
		status.Name = info.Name
		status.Version = info.Version
	}
	for _, phase := range orchestrator.Phases {
		action, ok := orchestrator.Actions[phase]
		if !ok {
			continue
		}
		if _, ok := root.Override(action.Override); ok {
			status.Overrides = append(status.Overrides, action.Override)
		}
	}
	return status
}

func checkHost() HostStatus {
	var status HostStatus
	if info, err := host.Info(); err == nil {
		status.Platform = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemoryTotal = vm.Total
		status.MemoryAvailable = vm.Available
	}
	return status
}

func containsFold(names []string, fragment string) bool {
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), fragment) {
			return true
		}
	}
	return false
}
