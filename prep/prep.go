// Package prep materializes the companion files GATK expects next to its
// inputs: the .fai index and sequence dictionary for the reference, and a
// .bai index for every alignment file.
package prep

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/somatic/broad"
	"github.com/grailbio/somatic/do"
	"github.com/grailbio/somatic/fileutil"
	"github.com/grailbio/somatic/transaction"
)

// Inputs ensures ref carries a .fai index and a .dict sequence dictionary,
// and that every BAM in bams carries a .bai index. Companion files that are
// already newer than their source are left alone. BAM indexing runs in
// parallel.
func Inputs(ctx context.Context, ref string, bams []string, gatk *broad.Runner, exec do.Executor) error {
	if err := ensureFaidx(ctx, ref); err != nil {
		return err
	}
	if err := ensureDict(ctx, ref, gatk); err != nil {
		return err
	}
	return traverse.Each(len(bams), func(i int) error {
		return ensureBAMIndex(ctx, bams[i], exec)
	})
}

// ensureFaidx writes ref.fai next to the reference. The index is computed
// natively rather than shelling out to samtools faidx.
func ensureFaidx(ctx context.Context, ref string) (err error) {
	fai := ref + ".fai"
	if fileutil.Uptodate(fai, ref) {
		return nil
	}
	log.Printf("indexing reference %s", ref)
	in, err := file.Open(ctx, ref)
	if err != nil {
		return errors.E(err, "opening reference "+ref)
	}
	defer file.CloseAndReport(ctx, in, &err)
	tx, err := transaction.New(filepath.Dir(fai), "")
	if err != nil {
		return err
	}
	defer tx.Abort()
	out, err := os.Create(tx.Path(fai))
	if err != nil {
		return errors.E(err, "creating "+fai)
	}
	werr := writeFaidx(out, in.Reader(ctx))
	if cerr := out.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return errors.E(werr, "indexing "+ref)
	}
	return tx.Commit()
}

// ensureDict writes the Picard sequence dictionary for ref. The dictionary
// replaces the reference extension, so genome.fa gets genome.dict.
func ensureDict(ctx context.Context, ref string, gatk *broad.Runner) error {
	dict := fileutil.ReplaceSuffix(ref, ".dict")
	if fileutil.Uptodate(dict, ref) {
		return nil
	}
	tx, err := transaction.New(filepath.Dir(dict), "")
	if err != nil {
		return err
	}
	defer tx.Abort()
	cmd := gatk.CreateSequenceDictionary(ctx, ref, tx.Path(dict))
	if err := gatk.Run(ctx, "CreateSequenceDictionary "+ref, cmd); err != nil {
		return err
	}
	return tx.Commit()
}

func ensureBAMIndex(ctx context.Context, bam string, exec do.Executor) error {
	bai := bam + ".bai"
	if fileutil.Uptodate(bai, bam) {
		return nil
	}
	tx, err := transaction.New(filepath.Dir(bam), "")
	if err != nil {
		return err
	}
	defer tx.Abort()
	cmd := do.Command(ctx, "samtools", "index", bam, tx.Path(bai))
	if err := exec.Run(ctx, "samtools index "+filepath.Base(bam), cmd); err != nil {
		return err
	}
	return tx.Commit()
}
