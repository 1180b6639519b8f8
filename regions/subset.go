package regions

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/somatic/fileutil"
	"github.com/grailbio/somatic/transaction"
)

// Population merges the per-sample variant-regions BEDs of a batch into one
// target file placed next to outFile. When every sample names the same BED
// (the common case) that path is returned unchanged; an already generated,
// up-to-date merge is reused.
func Population(ctx context.Context, beds []string, outFile string) (string, error) {
	var uniq []string
	seen := map[string]bool{}
	for _, b := range beds {
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		uniq = append(uniq, b)
	}
	if len(uniq) == 0 {
		return "", nil
	}
	if len(uniq) == 1 {
		return uniq[0], nil
	}
	base, _ := fileutil.SplitextPlus(outFile)
	out := base + "-population.bed"
	current := true
	for _, b := range uniq {
		if !fileutil.Uptodate(out, b) {
			current = false
			break
		}
	}
	if current {
		return out, nil
	}
	u := NewUnion()
	for _, b := range uniq {
		bu, err := ReadBED(ctx, b)
		if err != nil {
			return "", err
		}
		for _, e := range bu.Entries() {
			u.Add(e)
		}
	}
	if err := writeBEDFile(out, u.Entries()); err != nil {
		return "", err
	}
	return out, nil
}

// Subset resolves the target that reaches the caller's -L flag: the
// configured variant regions restricted to the requested region. The result
// is empty (no restriction), a locus string, or a BED path. When both a BED
// and a region are present their intersection is written next to outFile;
// an empty intersection still yields the file, so the caller sees an empty
// target rather than the whole genome.
func Subset(ctx context.Context, variantRegions string, region Entry, outFile string) (string, error) {
	if region.IsZero() {
		return variantRegions, nil
	}
	if variantRegions == "" {
		return region.GATK(), nil
	}
	base, _ := fileutil.SplitextPlus(outFile)
	out := base + "-regions.bed"
	if !fileutil.Uptodate(out, variantRegions) {
		u, err := ReadBED(ctx, variantRegions)
		if err != nil {
			return "", err
		}
		sub := u.Overlap(region)
		if len(sub) == 0 {
			log.Printf("no variant regions overlap %s; caller target is empty", region.GATK())
		}
		if err := writeBEDFile(out, sub); err != nil {
			return "", err
		}
	}
	return out, nil
}

// writeBEDFile stages entries through a transaction so partially written
// target files never survive.
func writeBEDFile(out string, entries []Entry) error {
	tx, err := transaction.New(filepath.Dir(out), "")
	if err != nil {
		return err
	}
	defer tx.Abort()
	f, err := os.Create(tx.Path(out))
	if err != nil {
		return errors.E(err, "creating "+out)
	}
	if err := WriteBED(f, entries); err != nil {
		f.Close() // nolint: errcheck
		return errors.E(err, "writing "+out)
	}
	if err := f.Close(); err != nil {
		return errors.E(err, "closing "+out)
	}
	return tx.Commit()
}
