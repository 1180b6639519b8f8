package prep

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// faiEntry is one row of a samtools-style FASTA index: contig name, base
// count, file offset of the first base, and the line geometry of the record.
type faiEntry struct {
	name      string
	bases     int64
	offset    int64
	lineBases int
	lineBytes int
}

func (e *faiEntry) write(w *tsv.Writer) error {
	w.WriteString(e.name)
	w.WriteInt64(e.bases)
	w.WriteInt64(e.offset)
	w.WriteInt64(int64(e.lineBases))
	w.WriteInt64(int64(e.lineBytes))
	return w.EndLine()
}

// writeFaidx generates a samtools-style index (*.fai) for the FASTA data in
// in. GATK requires the index next to the reference. The format is defined
// by "samtools faidx" (http://www.htslib.org/doc/faidx.html).
func writeFaidx(out io.Writer, in io.Reader) error {
	var (
		w      = tsv.NewWriter(out)
		r      = bufio.NewReader(in)
		cur    *faiEntry
		offset int64
		wrote  bool
	)
	for {
		fullLine, rerr := r.ReadBytes('\n')
		if rerr != nil && rerr != io.EOF {
			return rerr
		}
		offset += int64(len(fullLine))
		line := bytes.TrimRight(fullLine, "\r\n")
		switch {
		case len(line) == 0:
		case line[0] == '>':
			if cur != nil {
				if err := cur.write(w); err != nil {
					return err
				}
				wrote = true
			}
			cur = &faiEntry{
				name:   strings.SplitN(string(line[1:]), " ", 2)[0],
				offset: offset,
			}
		case cur == nil:
			return errors.E("malformed FASTA file: sequence data before first header")
		default:
			if cur.lineBytes == 0 {
				cur.lineBytes = len(fullLine)
				cur.lineBases = len(line)
			}
			cur.bases += int64(len(line))
		}
		if rerr == io.EOF {
			break
		}
	}
	if cur != nil {
		if err := cur.write(w); err != nil {
			return err
		}
		wrote = true
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if !wrote {
		return errors.E("empty FASTA file")
	}
	return nil
}
