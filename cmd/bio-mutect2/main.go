package main

import (
	"github.com/grailbio/base/grail"
	"v.io/x/lib/cmdline"
)

func main() {
	shutdown := grail.Init()
	defer shutdown()
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(&cmdline.Command{
		Name:     "bio-mutect2",
		Short:    "Somatic variant calling with GATK MuTect2",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdCall(),
			newCmdFilter(),
			newCmdPrep(),
		},
	})
}
