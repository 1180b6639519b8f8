// Package regions handles the genomic target selection fed to the caller's
// -L flag: region strings, BED ingestion with interval merging, and
// intersection of configured variant regions with a requested region.
package regions

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
)

// Entry is one genomic interval with 0-based half-open coordinates. A zero
// Start and End with a non-empty Chrom selects the whole chromosome.
type Entry struct {
	Chrom string
	Start int
	End   int
}

// IsZero reports whether no region was specified at all.
func (e Entry) IsZero() bool { return e.Chrom == "" }

// WholeChrom reports whether the entry selects an entire chromosome.
func (e Entry) WholeChrom() bool { return e.Chrom != "" && e.End <= 0 }

// GATK renders the entry the way GATK expects -L targets: 1-based inclusive
// coordinates, or the bare chromosome name.
func (e Entry) GATK() string {
	if e.WholeChrom() {
		return e.Chrom
	}
	return fmt.Sprintf("%s:%d-%d", e.Chrom, e.Start+1, e.End)
}

// ParseRegionString parses a region of one of the forms
//
//	[chrom]
//	[chrom]:[1-based pos]
//	[chrom]:[1-based first pos]-[last pos]
//
// into a 0-based Entry.
func ParseRegionString(region string) (Entry, error) {
	if region == "" {
		return Entry{}, fmt.Errorf("empty region string")
	}
	colon := strings.IndexByte(region, ':')
	if colon == -1 {
		return Entry{Chrom: region}, nil
	}
	if colon == 0 {
		return Entry{}, fmt.Errorf("region %s: empty chromosome", region)
	}
	e := Entry{Chrom: region[:colon]}
	rangeStr := region[colon+1:]
	dash := strings.IndexByte(rangeStr, '-')
	if dash == -1 {
		pos, err := strconv.Atoi(rangeStr)
		if err != nil || pos <= 0 {
			return Entry{}, fmt.Errorf("region %s: bad position %q", region, rangeStr)
		}
		e.Start = pos - 1
		e.End = pos
		return e, nil
	}
	start, err := strconv.Atoi(rangeStr[:dash])
	if err != nil || start <= 0 {
		return Entry{}, fmt.Errorf("region %s: bad start %q", region, rangeStr[:dash])
	}
	end, err := strconv.Atoi(rangeStr[dash+1:])
	if err != nil || end < start {
		return Entry{}, fmt.Errorf("region %s: bad range %q", region, rangeStr)
	}
	e.Start = start - 1
	e.End = end
	return e, nil
}

// ival is an llrb tree key ordered by start, then end, so distinct
// intervals never collapse on insert.
type ival struct {
	start, end int
}

func (iv ival) Compare(c llrb.Comparable) int {
	o := c.(ival)
	if iv.start != o.start {
		return iv.start - o.start
	}
	return iv.end - o.end
}

// Union accumulates intervals per chromosome, in any input order, and
// yields them merged and sorted. Chromosomes keep first-seen order so
// output files follow their inputs.
type Union struct {
	chroms map[string]*llrb.Tree
	order  []string
}

// NewUnion returns an empty Union.
func NewUnion() *Union {
	return &Union{chroms: map[string]*llrb.Tree{}}
}

// Add inserts one interval. Empty intervals are dropped.
func (u *Union) Add(e Entry) {
	if e.End <= e.Start {
		return
	}
	tree, ok := u.chroms[e.Chrom]
	if !ok {
		tree = &llrb.Tree{}
		u.chroms[e.Chrom] = tree
		u.order = append(u.order, e.Chrom)
	}
	tree.Insert(ival{e.Start, e.End})
}

// Empty reports whether the union covers no bases.
func (u *Union) Empty() bool { return len(u.order) == 0 }

// chromEntries returns the merged, sorted intervals of one chromosome.
func (u *Union) chromEntries(chrom string) []Entry {
	tree := u.chroms[chrom]
	if tree == nil {
		return nil
	}
	var out []Entry
	cur := Entry{}
	tree.Do(func(c llrb.Comparable) bool {
		iv := c.(ival)
		if cur.Chrom == "" {
			cur = Entry{Chrom: chrom, Start: iv.start, End: iv.end}
			return false
		}
		if iv.start > cur.End {
			out = append(out, cur)
			cur = Entry{Chrom: chrom, Start: iv.start, End: iv.end}
			return false
		}
		if iv.end > cur.End {
			cur.End = iv.end
		}
		return false
	})
	if cur.Chrom != "" {
		out = append(out, cur)
	}
	return out
}

// Entries returns every merged interval, chromosomes in first-seen order.
func (u *Union) Entries() []Entry {
	var out []Entry
	for _, chrom := range u.order {
		out = append(out, u.chromEntries(chrom)...)
	}
	return out
}

// Overlap clips the union to region. A whole-chromosome region selects all
// of that chromosome's intervals.
func (u *Union) Overlap(region Entry) []Entry {
	merged := u.chromEntries(region.Chrom)
	if region.WholeChrom() {
		return merged
	}
	var out []Entry
	for _, e := range merged {
		if e.End <= region.Start || e.Start >= region.End {
			continue
		}
		clipped := e
		if clipped.Start < region.Start {
			clipped.Start = region.Start
		}
		if clipped.End > region.End {
			clipped.End = region.End
		}
		out = append(out, clipped)
	}
	return out
}

// AddBED merges BED records from r into the union. Coordinates are the
// usual 0-based half-open BED convention; columns past the third and
// track/browser/comment lines are ignored.
func (u *Union) AddBED(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return fmt.Errorf("bed line %d: fewer than 3 columns", lineIdx)
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil || start < 0 {
			return fmt.Errorf("bed line %d: bad start %q", lineIdx, fields[1])
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil || end < start {
			return fmt.Errorf("bed line %d: bad end %q", lineIdx, fields[2])
		}
		u.Add(Entry{Chrom: fields[0], Start: start, End: end})
	}
	return scanner.Err()
}

// ReadBED loads a plain or gzip-compressed BED into a merged Union.
func ReadBED(ctx context.Context, path string) (*Union, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "opening bed "+path)
	}
	defer in.Close(ctx) // nolint: errcheck
	reader := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, errors.E(err, "decompressing bed "+path)
		}
		defer gz.Close() // nolint: errcheck
		reader = gz
	}
	u := NewUnion()
	if err := u.AddBED(reader); err != nil {
		return nil, errors.E(err, "reading bed "+path)
	}
	return u, nil
}

// WriteBED writes entries as three-column BED records.
func WriteBED(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\n", e.Chrom, e.Start, e.End); err != nil {
			return err
		}
	}
	return bw.Flush()
}
