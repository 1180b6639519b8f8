// Package transaction stages output files in a scoped temporary directory
// and promotes them to their final paths only on success. A failed run is
// discarded wholesale, so callers never observe a partial output file.
package transaction

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"golang.org/x/sys/unix"
)

// sidecarExts are index and stats files promoted alongside a staged file
// when the producing tool left them next to it.
var sidecarExts = []string{".tbi", ".idx", ".bai", ".csi", ".stats"}

// T is a single output transaction. It is not safe for concurrent use.
type T struct {
	dir    string
	staged map[string]string // staging path -> final path
}

// New creates a transaction for outputs under destDir. The staging directory
// is placed on the same filesystem as destDir so Commit can promote files
// with an atomic rename; scratch, when non-empty and on that same
// filesystem, hosts the staging directory instead.
func New(destDir, scratch string) (*T, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, errors.E(err, "creating output directory "+destDir)
	}
	base := destDir
	if scratch != "" {
		if ok, err := sameDevice(destDir, scratch); err == nil && ok {
			base = scratch
		} else {
			log.Debug.Printf("scratch %s not usable for atomic rename into %s; staging next to output", scratch, destDir)
		}
	}
	dir, err := ioutil.TempDir(base, "tx-")
	if err != nil {
		return nil, errors.E(err, "creating staging directory in "+base)
	}
	return &T{dir: dir, staged: map[string]string{}}, nil
}

// Dir returns the staging directory. External tools also use it as their
// java.io.tmpdir so stray temporary files die with the transaction.
func (tx *T) Dir() string { return tx.dir }

// Path registers final as a transaction output and returns the staging path
// the caller should write instead.
func (tx *T) Path(final string) string {
	p := filepath.Join(tx.dir, filepath.Base(final))
	tx.staged[p] = final
	return p
}

// Commit promotes every registered output, and any index sidecars written
// next to it, to its final path, then removes the staging directory. A
// registered output that was never produced is an error.
func (tx *T) Commit() error {
	for staging, final := range tx.staged {
		if _, err := os.Stat(staging); err != nil {
			return errors.E(err, "no output was produced at "+staging)
		}
		if err := os.Rename(staging, final); err != nil {
			return errors.E(err, "promoting "+staging)
		}
		for _, ext := range sidecarExts {
			if _, err := os.Stat(staging + ext); err != nil {
				continue
			}
			if err := os.Rename(staging+ext, final+ext); err != nil {
				return errors.E(err, "promoting index "+staging+ext)
			}
		}
	}
	return os.RemoveAll(tx.dir)
}

// Abort discards the staging directory and everything in it. It is safe to
// call after Commit, so callers can unconditionally defer it.
func (tx *T) Abort() {
	if err := os.RemoveAll(tx.dir); err != nil {
		log.Error.Printf("removing staging directory %s: %v", tx.dir, err)
	}
}

func sameDevice(a, b string) (bool, error) {
	var sa, sb unix.Stat_t
	if err := unix.Stat(a, &sa); err != nil {
		return false, err
	}
	if err := unix.Stat(b, &sb); err != nil {
		return false, err
	}
	return sa.Dev == sb.Dev, nil
}
