// Package vcf post-processes variant call files: block compression and
// tabix indexing of finished VCFs.
package vcf

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/somatic/do"
	"github.com/grailbio/somatic/encoding/bgzf"
	"github.com/grailbio/somatic/fileutil"
	"github.com/grailbio/somatic/transaction"
	"github.com/klauspost/compress/gzip"
)

// BgzipAndIndex makes sure the VCF at path is block-compressed and
// tabix-indexed, and returns the compressed path. A plain-text input is
// compressed to path+".gz" and removed; an input already ending in .gz is
// only indexed.
func BgzipAndIndex(ctx context.Context, path string, exec do.Executor) (string, error) {
	out := path
	if !strings.HasSuffix(path, ".gz") {
		out = path + ".gz"
		if err := compress(ctx, path, out); err != nil {
			return "", err
		}
		if err := os.Remove(path); err != nil {
			return "", errors.E(err, "removing "+path)
		}
	}
	if err := ensureTabix(ctx, out, exec); err != nil {
		return "", err
	}
	return out, nil
}

// compress writes a block-gzipped copy of in at out. The compression runs
// in-process rather than shelling out to bgzip.
func compress(ctx context.Context, in, out string) (err error) {
	if fileutil.Exists(out) {
		return nil
	}
	log.Printf("compressing %s", in)
	src, err := file.Open(ctx, in)
	if err != nil {
		return errors.E(err, "opening "+in)
	}
	defer file.CloseAndReport(ctx, src, &err)
	tx, err := transaction.New(filepath.Dir(out), "")
	if err != nil {
		return err
	}
	defer tx.Abort()
	dst, err := os.Create(tx.Path(out))
	if err != nil {
		return errors.E(err, "creating "+out)
	}
	bw, err := bgzf.NewWriter(dst, gzip.DefaultCompression)
	if err != nil {
		dst.Close()
		return err
	}
	_, cErr := io.Copy(bw, src.Reader(ctx))
	if e := bw.Close(); cErr == nil {
		cErr = e
	}
	if e := dst.Close(); cErr == nil {
		cErr = e
	}
	if cErr != nil {
		return errors.E(cErr, "compressing "+in)
	}
	return tx.Commit()
}

// ensureTabix writes path+".tbi" unless it is already newer than path. The
// VCF is symlinked into the staging directory and indexed there, so a
// failed tabix run leaves no partial index behind.
func ensureTabix(ctx context.Context, path string, exec do.Executor) error {
	tbi := path + ".tbi"
	if fileutil.Uptodate(tbi, path) {
		return nil
	}
	tx, err := transaction.New(filepath.Dir(path), "")
	if err != nil {
		return err
	}
	defer tx.Abort()
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	link := filepath.Join(tx.Dir(), filepath.Base(path))
	if err := os.Symlink(abs, link); err != nil {
		return errors.E(err, "linking "+path+" for indexing")
	}
	// tabix writes <input>.tbi next to its input, which is the staged
	// symlink, so registering the final path promotes exactly that file.
	_ = tx.Path(tbi)
	cmd := do.Command(ctx, "tabix", "-f", "-p", "vcf", link)
	if err := exec.Run(ctx, "tabix "+filepath.Base(path), cmd); err != nil {
		return err
	}
	return tx.Commit()
}
