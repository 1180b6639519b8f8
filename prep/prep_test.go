package prep

import (
	"context"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/somatic/broad"
	"github.com/grailbio/somatic/config"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

// toolRecorder records each invocation and creates the file the real tool
// would have written. BAM indexing runs concurrently, hence the lock.
type toolRecorder struct {
	mu   sync.Mutex
	cmds [][]string
}

func (r *toolRecorder) Run(_ context.Context, _ string, cmd *exec.Cmd) error {
	r.mu.Lock()
	r.cmds = append(r.cmds, cmd.Args)
	r.mu.Unlock()
	return ioutil.WriteFile(outputArg(cmd.Args), []byte("fake"), 0644)
}

// outputArg is the path the recorded tool writes: the -O value for GATK
// invocations, the trailing positional for samtools index.
func outputArg(args []string) string {
	for i, a := range args {
		if a == "-O" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return args[len(args)-1]
}

func pinnedConfig(version string) config.Config {
	cfg := config.Default()
	cfg.Resources = map[string]config.Resource{"gatk": {Version: version}}
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	assert.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
}

func TestInputs(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()

	ref := filepath.Join(tmp, "genome.fa")
	writeFile(t, ref, ">chr1\nACGTACGTAC\nGGGG\n")
	bamA := filepath.Join(tmp, "a.bam")
	bamB := filepath.Join(tmp, "b.bam")
	writeFile(t, bamA, "bam")
	writeFile(t, bamB, "bam")

	rec := &toolRecorder{}
	gatk, err := broad.NewRunner(ctx, pinnedConfig("4.1.4.1"), "mutect2", rec)
	assert.NoError(t, err)
	assert.NoError(t, Inputs(ctx, ref, []string{bamA, bamB}, gatk, rec))

	// The .fai is computed natively, no samtools faidx invocation.
	fai, err := ioutil.ReadFile(ref + ".fai")
	assert.NoError(t, err)
	expect.EQ(t, string(fai), "chr1\t14\t6\t10\t11\n")

	expect.EQ(t, len(rec.cmds), 3)
	dict := rec.cmds[0]
	expect.EQ(t, dict[0], "gatk")
	expect.EQ(t, dict[1], "CreateSequenceDictionary")
	expect.EQ(t, dict[2], "-R")
	expect.EQ(t, dict[3], ref)
	expect.EQ(t, dict[4], "-O")
	expect.EQ(t, filepath.Base(dict[5]), "genome.dict")
	for _, path := range []string{
		filepath.Join(tmp, "genome.dict"),
		bamA + ".bai",
		bamB + ".bai",
	} {
		_, err := os.Stat(path)
		expect.NoError(t, err, path)
	}

	// The per-BAM indexing order is not deterministic.
	var indexed []string
	for _, cmd := range rec.cmds[1:] {
		expect.EQ(t, cmd[0], "samtools")
		expect.EQ(t, cmd[1], "index")
		indexed = append(indexed, cmd[2])
	}
	sort.Strings(indexed)
	expect.EQ(t, indexed, []string{bamA, bamB})
}

func TestInputsUptodate(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()

	ref := filepath.Join(tmp, "genome.fa")
	bamA := filepath.Join(tmp, "a.bam")
	writeFile(t, ref, ">chr1\nACGT\n")
	writeFile(t, bamA, "bam")
	writeFile(t, ref+".fai", "existing fai")
	writeFile(t, filepath.Join(tmp, "genome.dict"), "existing dict")
	writeFile(t, bamA+".bai", "existing bai")

	old := time.Now().Add(-time.Hour)
	assert.NoError(t, os.Chtimes(ref, old, old))
	assert.NoError(t, os.Chtimes(bamA, old, old))

	rec := &toolRecorder{}
	gatk, err := broad.NewRunner(ctx, pinnedConfig("4.1.4.1"), "mutect2", rec)
	assert.NoError(t, err)
	assert.NoError(t, Inputs(ctx, ref, []string{bamA}, gatk, rec))

	expect.EQ(t, len(rec.cmds), 0)
	fai, err := ioutil.ReadFile(ref + ".fai")
	assert.NoError(t, err)
	expect.EQ(t, string(fai), "existing fai")
}

func TestInputsStale(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()

	ref := filepath.Join(tmp, "genome.fa")
	writeFile(t, ref, ">chr1\nACGT\n")
	writeFile(t, ref+".fai", "stale fai")
	old := time.Now().Add(-time.Hour)
	assert.NoError(t, os.Chtimes(ref+".fai", old, old))

	rec := &toolRecorder{}
	gatk, err := broad.NewRunner(ctx, pinnedConfig("4.1.4.1"), "mutect2", rec)
	assert.NoError(t, err)
	assert.NoError(t, Inputs(ctx, ref, nil, gatk, rec))

	fai, err := ioutil.ReadFile(ref + ".fai")
	assert.NoError(t, err)
	expect.EQ(t, string(fai), "chr1\t4\t6\t4\t5\n")
}

func TestContigs(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	chr1, err := sam.NewReference("chr1", "", "", 248956422, nil, nil)
	assert.NoError(t, err)
	chrM, err := sam.NewReference("chrM", "", "", 16569, nil, nil)
	assert.NoError(t, err)
	hdr, err := sam.NewHeader(nil, []*sam.Reference{chr1, chrM})
	assert.NoError(t, err)

	path := filepath.Join(tmp, "sample.bam")
	f, err := os.Create(path)
	assert.NoError(t, err)
	w, err := bam.NewWriter(f, hdr, 1)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, f.Close())

	contigs, err := Contigs(context.Background(), path)
	assert.NoError(t, err)
	expect.EQ(t, contigs, []Contig{{"chr1", 248956422}, {"chrM", 16569}})
}
