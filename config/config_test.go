package config_test

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/somatic/config"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func writeConfig(t *testing.T, dir, body string) string {
	path := filepath.Join(dir, "config.yaml")
	assert.NoError(t, ioutil.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	path := writeConfig(t, tmpdir, `
algorithm:
  ploidy: 2
  interval_padding: 50
resources:
  mutect2:
    jvm_opts: ["-Xms500m", "-Xmx3500m"]
    options: ["--max-reads-per-alignment-start", "0"]
  gatk:
    dir: /opt/gatk3
    version: "3.8"
`)
	c, err := config.Load(path)
	assert.NoError(t, err)
	expect.EQ(t, c.Algorithm.Ploidy.Default, 2)
	expect.EQ(t, c.Algorithm.Ploidy.Mitochondrial, 2)
	expect.EQ(t, c.Algorithm.IntervalPadding, 50)
	expect.EQ(t, c.Resource("mutect2").JVMOpts, []string{"-Xms500m", "-Xmx3500m"})
	expect.EQ(t, c.Resource("mutect2").Options, []string{"--max-reads-per-alignment-start", "0"})
	expect.EQ(t, c.Resource("gatk").Dir, "/opt/gatk3")
	expect.EQ(t, c.Resource("gatk").Version, "3.8")
	expect.EQ(t, len(c.Resource("unconfigured").Options), 0)
}

func TestPloidyMapping(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	path := writeConfig(t, tmpdir, `
algorithm:
  ploidy:
    default: 2
    mitochondrial: 1
`)
	c, err := config.Load(path)
	assert.NoError(t, err)
	expect.EQ(t, c.Algorithm.Ploidy.Default, 2)
	expect.EQ(t, c.Algorithm.Ploidy.Mitochondrial, 1)
}

func TestDefault(t *testing.T) {
	c := config.Default()
	expect.EQ(t, c.Algorithm.Ploidy.Default, 2)
	expect.EQ(t, c.Algorithm.Ploidy.Mitochondrial, 2)
}

func TestLoadErrors(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	_, err := config.Load(filepath.Join(tmpdir, "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	path := writeConfig(t, tmpdir, "resources: [not, a, mapping]")
	_, err = config.Load(path)
	if err == nil {
		t.Fatal("expected error for malformed config")
	}
}
