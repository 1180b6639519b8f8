package main

import (
	"fmt"
	"path/filepath"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/somatic/config"
	"github.com/grailbio/somatic/fileutil"
	"github.com/grailbio/somatic/mutect"
	"github.com/grailbio/somatic/regions"
	"github.com/grailbio/somatic/sample"
	"v.io/x/lib/cmdline"
)

type callFlags struct {
	batch      *string
	tumor      *string
	tumorName  *string
	normal     *string
	normalName *string
	pon        *string
	reference  *string
	region     *string
	out        *string
	configPath *string
	dbSNP      *string
	cosmic     *string
	scratch    *string
}

func newCmdCall() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "call",
		Short: "Call somatic variants for a tumor/normal batch",
	}
	flags := callFlags{
		batch:      cmd.Flags.String("batch", "", "YAML batch file listing the samples called together. Mutually exclusive with -tumor/-normal."),
		tumor:      cmd.Flags.String("tumor", "", "Tumor BAM path"),
		tumorName:  cmd.Flags.String("tumor-name", "", "Tumor sample name. Defaults to the BAM basename."),
		normal:     cmd.Flags.String("normal", "", "Matched normal BAM path. Omit for tumor-only calling."),
		normalName: cmd.Flags.String("normal-name", "", "Normal sample name. Defaults to the BAM basename."),
		pon:        cmd.Flags.String("pon", "", "Panel-of-normals VCF"),
		reference:  cmd.Flags.String("reference", "", "Reference FASTA the batch was aligned against (required)"),
		region: cmd.Flags.String("region", "", `Restrict calling to a region. Format as <contig>,
<contig>:<1-based pos> or <contig>:<1-based first pos>-<last pos>.`),
		out:        cmd.Flags.String("out", "", "Output .vcf.gz path. Defaults next to the first BAM of the batch."),
		configPath: cmd.Flags.String("config", "", "YAML configuration with resources and algorithm settings"),
		dbSNP:      cmd.Flags.String("dbsnp", "", "dbSNP VCF"),
		cosmic:     cmd.Flags.String("cosmic", "", "COSMIC VCF"),
		scratch:    cmd.Flags.String("scratch", "", "Directory hosting staging space. Defaults next to the output."),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("call takes no positional arguments, but got %v", argv)
		}
		return call(flags)
	})
	return cmd
}

func call(flags callFlags) error {
	ctx := vcontext.Background()
	if *flags.reference == "" {
		return fmt.Errorf("-reference is required")
	}
	batch, err := loadBatch(flags)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(*flags.configPath)
	if err != nil {
		return err
	}
	var region regions.Entry
	if *flags.region != "" {
		if region, err = regions.ParseRegionString(*flags.region); err != nil {
			return err
		}
	}
	out, err := mutect.Run(ctx, mutect.Opts{
		Batch:     batch,
		Reference: *flags.reference,
		Region:    region,
		OutFile:   *flags.out,
		DBSNP:     *flags.dbSNP,
		Cosmic:    *flags.cosmic,
		Config:    cfg,
		Scratch:   *flags.scratch,
	})
	if err != nil {
		return err
	}
	log.Printf("somatic calls written to %s", out)
	return nil
}

// loadBatch resolves the batch from either the YAML batch file or the
// direct tumor/normal flags.
func loadBatch(flags callFlags) ([]sample.Sample, error) {
	if *flags.batch != "" {
		if *flags.tumor != "" || *flags.normal != "" || *flags.pon != "" {
			return nil, fmt.Errorf("-batch and -tumor/-normal/-pon are mutually exclusive")
		}
		return sample.LoadBatch(*flags.batch)
	}
	if *flags.tumor == "" {
		return nil, fmt.Errorf("either -batch or -tumor is required")
	}
	batch := []sample.Sample{{
		Name:        sampleName(*flags.tumorName, *flags.tumor),
		BAM:         *flags.tumor,
		Phenotype:   sample.Tumor,
		NormalPanel: *flags.pon,
	}}
	if *flags.normal != "" {
		batch = append(batch, sample.Sample{
			Name:      sampleName(*flags.normalName, *flags.normal),
			BAM:       *flags.normal,
			Phenotype: sample.Normal,
		})
	}
	return batch, nil
}

func sampleName(name, bam string) string {
	if name != "" {
		return name
	}
	base, _ := fileutil.SplitextPlus(filepath.Base(bam))
	return base
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
