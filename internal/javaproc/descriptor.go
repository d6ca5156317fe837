package javaproc

import (
	"errors"
	"maps"
	"os"
	"strings"
)

var (
	ErrNoMainClass     = errors.New("main class is not set")
	ErrAlreadyLaunched = errors.New("process descriptor already launched")
)

// Descriptor accumulates the settings of a Java process to launch. It is
// not safe for concurrent use and launches at most one process.
type Descriptor struct {
	javaArgs  []string
	classpath []string
	mainClass string
	args      []string
	env       map[string]string
	dir       string
	listener  Listener
	launched  bool
}

// NewDescriptor returns an empty descriptor.
func NewDescriptor() *Descriptor {
	return &Descriptor{env: make(map[string]string)}
}

// AddJavaArg adds a JVM argument like "-Xmx256m".
func (d *Descriptor) AddJavaArg(arg string) {
	d.javaArgs = append(d.javaArgs, arg)
}

// AddSystemProperty is a shortcut for AddJavaArg("-D<name>=<value>").
func (d *Descriptor) AddSystemProperty(name, value string) {
	d.AddJavaArg("-D" + name + "=" + value)
}

// AddClasspath adds a dir or a JAR to the classpath.
func (d *Descriptor) AddClasspath(path string) {
	d.classpath = append(d.classpath, path)
}

func (d *Descriptor) SetMainClass(class string) {
	d.mainClass = class
}

// AddArg appends a positional program argument.
func (d *Descriptor) AddArg(arg string) {
	d.args = append(d.args, arg)
}

// AddEnv sets a variable of the process environment, replacing any
// previous value for name.
func (d *Descriptor) AddEnv(name, value string) {
	if d.env == nil {
		d.env = make(map[string]string)
	}
	d.env[name] = value
}

func (d *Descriptor) SetWorkingDir(dir string) {
	d.dir = dir
}

func (d *Descriptor) SetListener(l Listener) {
	d.listener = l
}

// Build freezes the descriptor into a Command. Later changes to the
// descriptor do not affect the returned value.
func (d *Descriptor) Build() (*Command, error) {
	if d.launched {
		return nil, ErrAlreadyLaunched
	}
	if strings.TrimSpace(d.mainClass) == "" {
		return nil, ErrNoMainClass
	}
	return &Command{
		JavaArgs:  append([]string(nil), d.javaArgs...),
		ClassPath: append([]string(nil), d.classpath...),
		MainClass: d.mainClass,
		Args:      append([]string(nil), d.args...),
		Env:       maps.Clone(d.env),
		Dir:       d.dir,
		Listener:  d.listener,
	}, nil
}

// Command is the frozen form of a Descriptor.
type Command struct {
	JavaArgs  []string
	ClassPath []string
	MainClass string
	Args      []string
	Env       map[string]string
	Dir       string
	Listener  Listener
}

// Classpath joins the entries with the platform path-list separator.
func (c *Command) Classpath() string {
	return strings.Join(c.ClassPath, string(os.PathListSeparator))
}

// Argv returns the full argument vector for the given java executable.
func (c *Command) Argv(java string) []string {
	argv := []string{java}
	argv = append(argv, c.JavaArgs...)
	if len(c.ClassPath) > 0 {
		argv = append(argv, "-cp", c.Classpath())
	}
	argv = append(argv, c.MainClass)
	return append(argv, c.Args...)
}

// Summary is the human-readable command line. See JoinArgs for quoting.
func (c *Command) Summary(java string) string {
	return JoinArgs(c.Argv(java))
}

// JoinArgs joins args with a single space. Nothing is quoted or escaped:
// arguments containing spaces must be quoted by the caller.
func JoinArgs(args []string) string {
	return strings.Join(args, " ")
}
