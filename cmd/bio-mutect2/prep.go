package main

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/somatic/broad"
	"github.com/grailbio/somatic/do"
	"github.com/grailbio/somatic/prep"
	"v.io/x/lib/cmdline"
)

func newCmdPrep() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "prep",
		Short:    "Build the reference and alignment indexes calling needs",
		ArgsName: "ref.fa [aligned.bam ...]",
	}
	configPath := cmd.Flags.String("config", "", "YAML configuration with resources and algorithm settings")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) < 1 {
			return fmt.Errorf("prep takes a reference and optional BAM paths, but got %v", argv)
		}
		return prepare(*configPath, argv[0], argv[1:])
	})
	return cmd
}

func prepare(configPath, ref string, bams []string) error {
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
	return prep.Inputs(ctx, ref, bams, gatk, exec)
}
