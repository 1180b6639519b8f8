package prep

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	biogobam "github.com/grailbio/hts/bam"
)

// Contig is one reference sequence declared in a BAM header.
type Contig struct {
	Name string
	Len  int
}

// Contigs returns the reference sequences declared in the BAM header at
// path, in header order. Callers use it to reject calling regions that name
// contigs the alignments were never mapped against.
func Contigs(ctx context.Context, path string) (contigs []Contig, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "opening "+path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	r, err := biogobam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return nil, errors.E(err, "reading BAM header from "+path)
	}
	for _, ref := range r.Header().Refs() {
		contigs = append(contigs, Contig{Name: ref.Name(), Len: ref.Len()})
	}
	return contigs, nil
}
