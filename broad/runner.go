// Package broad drives the Broad Institute toolkits (GATK, Picard) the
// somatic pipeline shells out to. It resolves the installed tool generation
// and version, and spells tool invocations the way each generation expects.
package broad

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/somatic/config"
	"github.com/grailbio/somatic/do"
)

// Kind distinguishes the two supported GATK generations, which disagree on
// flag spellings and invocation style.
type Kind int

const (
	// GATK3 is the classic GenomeAnalysisTK.jar distribution (3.5+).
	GATK3 Kind = iota
	// GATK4 is the gatk launcher distribution.
	GATK4
)

func (k Kind) String() string {
	if k == GATK4 {
		return "gatk4"
	}
	return "gatk3"
}

const gatk3Jar = "GenomeAnalysisTK.jar"

// defaultJVMOpts bounds heap usage when no resource entry configures it.
var defaultJVMOpts = []string{"-Xms500m", "-Xmx3500m"}

// Runner invokes Broad tools with resolved version, generation and JVM
// settings. Construct with NewRunner.
type Runner struct {
	kind    Kind
	version Version
	cmd     string // gatk4 launcher
	javaCmd string
	jar     string // gatk3 jar path
	jvmOpts []string
	exec    do.Executor
}

// NewRunner resolves the installed GATK from the "gatk" resource entry:
// Version pins the version outright, otherwise the launcher is probed with
// --version (one external invocation, routed through exec). tool names the
// resource entry whose jvm_opts take precedence for this runner.
func NewRunner(ctx context.Context, cfg config.Config, tool string, exec do.Executor) (*Runner, error) {
	res := cfg.Resource("gatk")
	r := &Runner{
		cmd:     res.Cmd,
		javaCmd: "java",
		exec:    exec,
	}
	if r.cmd == "" {
		r.cmd = "gatk"
	}
	if res.Dir != "" {
		r.jar = filepath.Join(res.Dir, gatk3Jar)
	}
	for _, opts := range [][]string{cfg.Resource(tool).JVMOpts, res.JVMOpts, defaultJVMOpts} {
		if len(opts) > 0 {
			r.jvmOpts = opts
			break
		}
	}
	if res.Version != "" {
		r.version = ParseVersion(res.Version)
	} else {
		v, err := r.probeVersion(ctx)
		if err != nil {
			return nil, err
		}
		r.version = v
	}
	if r.version.IsZero() {
		return nil, errors.New("could not determine GATK version; set resources.gatk.version")
	}
	if r.version.Major() >= 4 {
		r.kind = GATK4
	}
	log.Debug.Printf("resolved %s version %s", r.kind, r.version)
	return r, nil
}

// Kind returns the resolved GATK generation.
func (r *Runner) Kind() Kind { return r.kind }

// Version returns the resolved GATK version.
func (r *Runner) Version() Version { return r.version }

// CheckVersion fails when the resolved version sorts below min. Callers
// consult it before building any command.
func (r *Runner) CheckVersion(min Version) error {
	if !r.version.AtLeast(min) {
		return errors.New("GATK " + min.String() + "+ required, found " + r.version.String())
	}
	return nil
}

// probeVersion asks the installed tool for its version: the jar directly
// for jar installs, the gatk launcher otherwise.
func (r *Runner) probeVersion(ctx context.Context) (Version, error) {
	var cmd *exec.Cmd
	if r.jar != "" {
		cmd = do.Command(ctx, r.javaCmd, "-jar", r.jar, "--version")
	} else {
		cmd = do.Command(ctx, r.cmd, "--version")
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := r.exec.Run(ctx, "gatk version probe", cmd); err != nil {
		return Version{}, errors.E(err, "probing GATK version")
	}
	v := parseVersionOutput(out.String())
	if v.IsZero() {
		return Version{}, errors.New("unparseable GATK version output: " + strings.TrimSpace(out.String()))
	}
	return v, nil
}

// parseVersionOutput extracts the version from --version output. The gatk4
// launcher prints a banner line "The Genome Analysis Toolkit (GATK)
// v4.1.4.1"; jar installs print the bare version string.
func parseVersionOutput(out string) Version {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if i := strings.Index(line, "(GATK) v"); i >= 0 {
			return ParseVersion(line[i+len("(GATK) v"):])
		}
		if isDigit(line[0]) {
			return ParseVersion(line)
		}
	}
	return Version{}
}

// CommandLine builds the invocation for params, which begin with the
// conventional "-T <Tool>" pair. tmpDir hosts JVM scratch so stray
// temporary files stay inside the caller's staging scope.
func (r *Runner) CommandLine(ctx context.Context, params []string, tmpDir string) (*exec.Cmd, error) {
	if len(params) < 2 || params[0] != "-T" {
		return nil, errors.New("gatk parameters must start with -T <tool>")
	}
	jvm := append([]string{}, r.jvmOpts...)
	if tmpDir != "" {
		jvm = append(jvm, "-Djava.io.tmpdir="+tmpDir)
	}
	if r.kind == GATK4 {
		args := append([]string{"--java-options", strings.Join(jvm, " "), params[1]}, params[2:]...)
		return do.Command(ctx, r.cmd, args...), nil
	}
	if r.jar == "" {
		return nil, errors.New("GATK 3 requires resources.gatk.dir pointing at the " + gatk3Jar + " install")
	}
	args := append(jvm, "-jar", r.jar)
	args = append(args, params...)
	return do.Command(ctx, r.javaCmd, args...), nil
}

// CreateSequenceDictionary builds the Picard invocation generating the
// reference dictionary. The gatk4 launcher bundles Picard tools; older
// installs ship a separate picard entry point.
func (r *Runner) CreateSequenceDictionary(ctx context.Context, ref, dict string) *exec.Cmd {
	if r.kind == GATK4 {
		return do.Command(ctx, r.cmd, "CreateSequenceDictionary", "-R", ref, "-O", dict)
	}
	return do.Command(ctx, "picard", "CreateSequenceDictionary", "R="+ref, "O="+dict)
}

// Run executes a built command through the runner's executor.
func (r *Runner) Run(ctx context.Context, desc string, cmd *exec.Cmd) error {
	return r.exec.Run(ctx, desc, cmd)
}
