package main

import (
	"fmt"
	"path/filepath"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/somatic/broad"
	"github.com/grailbio/somatic/do"
	"github.com/grailbio/somatic/mutect"
	"github.com/grailbio/somatic/transaction"
	"github.com/grailbio/somatic/vcf"
	"v.io/x/lib/cmdline"
)

func newCmdFilter() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "filter",
		Short:    "Run FilterMutectCalls on raw MuTect2 output (GATK4 only)",
		ArgsName: "raw.vcf[.gz] filtered.vcf.gz",
	}
	configPath := cmd.Flags.String("config", "", "YAML configuration with resources and algorithm settings")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("filter takes raw and filtered paths, but got %v", argv)
		}
		return filter(*configPath, argv[0], argv[1])
	})
	return cmd
}

func filter(configPath, in, out string) error {
	ctx := vcontext.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	exec := do.Local{}
	gatk, err := broad.NewRunner(ctx, cfg, "mutect2", exec)
	if err != nil {
		return err
	}
	if gatk.Kind() != broad.GATK4 {
		return fmt.Errorf("FilterMutectCalls requires GATK4, found %s", gatk.Version())
	}
	tx, err := transaction.New(filepath.Dir(out), "")
	if err != nil {
		return err
	}
	defer tx.Abort()
	if err := mutect.Filter(ctx, gatk, in, tx.Path(out), tx.Dir()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	indexed, err := vcf.BgzipAndIndex(ctx, out, exec)
	if err != nil {
		return err
	}
	log.Printf("filtered calls written to %s", indexed)
	return nil
}
