// Package mutect orchestrates somatic variant calling with GATK MuTect2.
// It assembles the generation-appropriate command line from batch metadata,
// stages output through a transaction, runs the caller (plus the separate
// FilterMutectCalls pass on GATK4), and leaves a block-compressed, indexed
// VCF at the output path.
package mutect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/somatic/broad"
	"github.com/grailbio/somatic/config"
	"github.com/grailbio/somatic/do"
	"github.com/grailbio/somatic/encoding/bgzf"
	"github.com/grailbio/somatic/fileutil"
	"github.com/grailbio/somatic/prep"
	"github.com/grailbio/somatic/regions"
	"github.com/grailbio/somatic/sample"
	"github.com/grailbio/somatic/transaction"
	"github.com/grailbio/somatic/vcf"
	"github.com/klauspost/compress/gzip"
)

// tool is the resource entry consulted for JVM options and extra command
// line options.
const tool = "mutect2"

// minVersion is the oldest GATK generation shipping MuTect2.
var minVersion = broad.ParseVersion("3.5")

// Opts configures one calling run.
type Opts struct {
	// Batch is the set of samples called together, carrying tumor/normal
	// phenotypes and per-sample metadata.
	Batch []sample.Sample
	// Reference is the FASTA the batch was aligned against.
	Reference string
	// Region optionally restricts calling to one genomic target.
	Region regions.Entry
	// OutFile is the final .vcf.gz path. When empty it is derived from the
	// first alignment file in the batch.
	OutFile string
	// DBSNP and Cosmic are population variant databases. See assocParams.
	DBSNP  string
	Cosmic string
	// Config carries resource and algorithm settings.
	Config config.Config
	// Scratch optionally hosts staging directories.
	Scratch string
	// Exec runs external commands; nil means run them for real.
	Exec do.Executor
}

// Run calls somatic variants for the batch and returns the path of the
// block-compressed, indexed VCF. An output that already exists is not
// recomputed.
func Run(ctx context.Context, opts Opts) (string, error) {
	exec := opts.Exec
	if exec == nil {
		exec = do.Local{}
	}
	bams := sample.BAMs(opts.Batch)
	if len(bams) == 0 {
		return "", errors.E("batch has no alignment files")
	}
	out := opts.OutFile
	if out == "" {
		base, _ := fileutil.SplitextPlus(bams[0])
		out = base + "-variants.vcf.gz"
	}
	if fileutil.Exists(out) {
		log.Printf("%s exists, skipping somatic calling", out)
		return vcf.BgzipAndIndex(ctx, out, exec)
	}

	gatk, err := broad.NewRunner(ctx, opts.Config, tool, exec)
	if err != nil {
		return "", err
	}
	if err := gatk.CheckVersion(minVersion); err != nil {
		return "", err
	}
	pair, err := sample.Paired(opts.Batch)
	if err != nil {
		return "", err
	}
	if !opts.Region.IsZero() {
		if err := checkRegion(ctx, opts.Region, pair.TumorBAM); err != nil {
			return "", err
		}
	}
	if err := prep.Inputs(ctx, opts.Reference, bams, gatk, exec); err != nil {
		return "", err
	}

	tx, err := transaction.New(filepath.Dir(out), opts.Scratch)
	if err != nil {
		return "", err
	}
	defer tx.Abort()
	params, err := callerParams(ctx, opts, pair, gatk.Kind(), out)
	if err != nil {
		return "", err
	}
	txOut := tx.Path(out)
	if gatk.Kind() == broad.GATK4 {
		err = runGATK4(ctx, gatk, params, tx, txOut)
	} else {
		err = runGATK3(ctx, gatk, params, tx, txOut)
	}
	if err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return vcf.BgzipAndIndex(ctx, out, exec)
}

// callerParams assembles the MuTect2 parameter list shared by both GATK
// generations. The order mirrors the command lines long-running production
// pipelines were tuned on.
func callerParams(ctx context.Context, opts Opts, pair sample.Pair, kind broad.Kind, outFile string) ([]string, error) {
	toolName := "MuTect2"
	if kind == broad.GATK4 {
		toolName = "Mutect2"
	}
	params := []string{
		"-T", toolName,
		"-R", opts.Reference,
		"--annotation", "ClippingRankSumTest",
		"--annotation", "DepthPerSampleHC",
	}
	for _, a := range annotations(opts.Config, kind) {
		params = append(params, "--annotation", a)
	}
	if kind == broad.GATK4 {
		params = append(params, "--read-validation-stringency", "LENIENT")
	}
	params = append(params, tumorParams(pair, kind)...)
	rp, err := regionParams(ctx, opts.Batch, opts.Region, outFile, kind, opts.Config.Algorithm.IntervalPadding)
	if err != nil {
		return nil, err
	}
	params = append(params, rp...)
	// Keep dbSNP/COSMIC out of the caller command: fed to MuTect2 they
	// would flow into the somatic filtering pass.
	// params = append(params, assocParams(opts.DBSNP, opts.Cosmic)...)
	params = append(params, "-ploidy", strconv.Itoa(sample.Ploidy(opts.Batch, opts.Config.Algorithm.Ploidy, opts.Region.Chrom)))
	params = append(params, opts.Config.Resource(tool).Options...)
	return params, nil
}

// annotations returns the configured annotation set, or the
// generation-appropriate default.
func annotations(cfg config.Config, kind broad.Kind) []string {
	if len(cfg.Algorithm.Annotations) > 0 {
		return cfg.Algorithm.Annotations
	}
	return broad.Annotations(kind, false)
}

// checkRegion rejects calling targets that name contigs absent from the
// alignments before any compute is spent.
func checkRegion(ctx context.Context, region regions.Entry, bam string) error {
	contigs, err := prep.Contigs(ctx, bam)
	if err != nil {
		return err
	}
	for _, c := range contigs {
		if c.Name != region.Chrom {
			continue
		}
		if region.End > c.Len {
			return errors.E(fmt.Sprintf("region %s ends beyond %s length %d", region.GATK(), c.Name, c.Len))
		}
		return nil
	}
	return errors.E(fmt.Sprintf("region contig %s is not in %s", region.Chrom, bam))
}

// runGATK4 runs the caller into a raw staging file, then FilterMutectCalls
// from raw to the staged output. The raw file stays inside the staging
// directory and dies with it.
func runGATK4(ctx context.Context, gatk *broad.Runner, params []string, tx *transaction.T, txOut string) error {
	base, ext := fileutil.SplitextPlus(txOut)
	raw := base + "-raw" + ext
	cmd, err := gatk.CommandLine(ctx, append(params, "-O", raw), tx.Dir())
	if err != nil {
		return err
	}
	if err := gatk.Run(ctx, "MuTect2", cmd); err != nil {
		return err
	}
	return Filter(ctx, gatk, raw, txOut, tx.Dir())
}

// runGATK3 streams the caller's stdout through the block-gzip writer into
// the staged output. GATK3 MuTect2 writes plain VCF text to stdout when no
// output flag is given.
func runGATK3(ctx context.Context, gatk *broad.Runner, params []string, tx *transaction.T, txOut string) error {
	cmd, err := gatk.CommandLine(ctx, params, tx.Dir())
	if err != nil {
		return err
	}
	out, err := os.Create(txOut)
	if err != nil {
		return errors.E(err, "creating "+txOut)
	}
	bw, err := bgzf.NewWriter(out, gzip.DefaultCompression)
	if err != nil {
		out.Close()
		return err
	}
	cmd.Stdout = bw
	rErr := gatk.Run(ctx, "MuTect2", cmd)
	if e := bw.Close(); rErr == nil {
		rErr = e
	}
	if e := out.Close(); rErr == nil {
		rErr = e
	}
	return rErr
}

// Filter runs FilterMutectCalls, the separate GATK4 filtering pass, reading
// raw calls from in and writing filtered calls to out.
func Filter(ctx context.Context, gatk *broad.Runner, in, out, tmpDir string) error {
	params := []string{"-T", "FilterMutectCalls", "--variant", in, "--output", out}
	cmd, err := gatk.CommandLine(ctx, params, tmpDir)
	if err != nil {
		return err
	}
	return gatk.Run(ctx, "FilterMutectCalls", cmd)
}
