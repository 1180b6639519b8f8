// Package fileutil provides small filesystem helpers shared by the
// orchestration packages: existence and freshness checks, and compound
// extension handling for genomics file names.
package fileutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Exists reports whether path names an existing, non-empty regular file.
// Zero-length files count as absent; a truncated staging file must not
// short-circuit a rerun.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// Uptodate reports whether path exists and is at least as new as dep.
func Uptodate(path, dep string) bool {
	pi, err := os.Stat(path)
	if err != nil || pi.Size() == 0 {
		return false
	}
	di, err := os.Stat(dep)
	if err != nil {
		return false
	}
	return !pi.ModTime().Before(di.ModTime())
}

// SplitextPlus splits path into base and extension, keeping compound
// extensions together so that sample-1.vcf.gz yields ("sample-1", ".vcf.gz").
func SplitextPlus(path string) (base, ext string) {
	base = path
	switch e := filepath.Ext(base); e {
	case ".gz", ".bz2", ".zip":
		ext = e
		base = strings.TrimSuffix(base, e)
	}
	if e := filepath.Ext(base); e != "" {
		ext = e + ext
		base = strings.TrimSuffix(base, e)
	}
	return base, ext
}

// ReplaceSuffix returns path with its final (simple) extension replaced by
// suffix. The suffix should include the leading dot.
func ReplaceSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}
