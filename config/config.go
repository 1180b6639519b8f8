// Package config loads the YAML run configuration: per-tool resource
// settings (JVM options, extra command line options, install locations) and
// algorithm options shared across the somatic pipeline.
package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"
)

// Resource describes the configuration of one external tool.
type Resource struct {
	// JVMOpts are passed to the tool's JVM (for example -Xmx sizing).
	JVMOpts []string `yaml:"jvm_opts"`
	// Options are appended verbatim to the tool command line.
	Options []string `yaml:"options"`
	// Dir is the install directory for jar-distributed tools.
	Dir string `yaml:"dir"`
	// Cmd overrides the launcher binary name.
	Cmd string `yaml:"cmd"`
	// Version pins the tool version, skipping the version probe.
	Version string `yaml:"version"`
}

// Ploidy is the configured copy number. The YAML form is either a bare
// integer or a mapping with default and mitochondrial entries.
type Ploidy struct {
	Default       int `yaml:"default"`
	Mitochondrial int `yaml:"mitochondrial"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (p *Ploidy) UnmarshalYAML(node *yaml.Node) error {
	var n int
	if err := node.Decode(&n); err == nil {
		p.Default = n
		p.Mitochondrial = n
		return nil
	}
	type plain Ploidy
	var v plain
	if err := node.Decode(&v); err != nil {
		return err
	}
	*p = Ploidy(v)
	p.setDefaults()
	return nil
}

func (p *Ploidy) setDefaults() {
	if p.Default == 0 {
		p.Default = 2
	}
	if p.Mitochondrial == 0 {
		p.Mitochondrial = p.Default
	}
}

// Algorithm holds caller-independent analysis options.
type Algorithm struct {
	Ploidy Ploidy `yaml:"ploidy"`
	// Annotations overrides the version-dependent annotation set when
	// non-empty.
	Annotations []string `yaml:"annotations"`
	// IntervalPadding widens every -L target by this many bases.
	IntervalPadding int `yaml:"interval_padding"`
}

// Config is the root of the YAML configuration file.
type Config struct {
	Algorithm Algorithm           `yaml:"algorithm"`
	Resources map[string]Resource `yaml:"resources"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	c := Config{}
	c.Algorithm.Ploidy.setDefaults()
	return c
}

// Load reads and decodes a YAML configuration file.
func Load(path string) (Config, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	c := Config{}
	if err := yaml.Unmarshal(buf, &c); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %s", path)
	}
	c.Algorithm.Ploidy.setDefaults()
	return c, nil
}

// Resource returns the named tool resource, or a zero Resource when the
// tool has no entry. Callers layer their own fallbacks on top.
func (c Config) Resource(name string) Resource {
	return c.Resources[name]
}
