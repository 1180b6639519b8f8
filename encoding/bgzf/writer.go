// Package bgzf includes a Writer for the .bgzf (block gzipped) file
// format.  A .bgzf file consists of one or more complete gzip blocks
// concatenated together.  Each of the gzip blocks must represent at
// most 64KB of uncompressed data, and the compressed size of the
// block must be at most 64KB.  The payload of the .bgzf file is equal
// to the uncompressed content of each block, concatenated together in
// order.  A valid .bgzf file ends with the 28 byte .bgzf terminator
// shown below; the terminator is a valid gzip block containing an
// empty payload.
//
// The .bgzf format is what htslib tools expect for compressed VCFs: a
// .vcf.gz produced by this writer can be indexed with "tabix -p vcf"
// and read back with any gzip reader.
//
// For more information about the .bgzf file format, see the SAM/BAM
// spec here: https://samtools.github.io/hts-specs/SAMv1.pdf
//
// Example use:
//   var bgzfFile bytes.Buffer
//   w, err := NewWriter(&bgzfFile, flate.DefaultCompression)
//   n, err := w.Write([]byte("Foo bar"))
//   err = w.Close()
package bgzf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

const (
	// DefaultUncompressedBlockSize is the default number of payload
	// bytes per bgzf block, the value chosen by both sambamba and
	// biogo.  See the SAM/BAM specification for details.
	DefaultUncompressedBlockSize = 0x0ff00

	// compressedBlockSize is the maximum size of the compressed data
	// for a bgzf block.  See the SAM/BAM specification for details.
	compressedBlockSize = 0x10000
)

var (
	// bgzfExtra goes into the gzip's Extra subfield, with subfield
	// ids: 66, 67, and length 2.  See the SAM/BAM spec.
	bgzfExtra       = [...]byte{66, 67, 2, 0, 0, 0}
	bgzfExtraPrefix = [...]byte{66, 67, 2, 0}

	// terminator is the bgzf EOF terminator.  It belongs at the end
	// of a valid bgzf file.  See the SAM/BAM spec.
	terminator = []byte{
		0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00, 0x42, 0x43,
		0x02, 0x00, 0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
)

// Writer compresses data into .bgzf format.  The .bgzf format
// consists of gzip blocks concatenated together.  Each gzip block has
// an uncompressed size of at most 64KB.  The .bgzf format adds an
// Extra header field to each of the gzip headers; the Extra field
// contains the total size of the compressed block in bytes - 1.  The
// payload data of the .bgzf file is equal to the in-order
// concatenation of all the uncompressed payloads of the gzip blocks.
// A .bgzf file also contains an EOF terminator at the end of the
// file.
type Writer struct {
	uncompressedSize int
	w                io.Writer
	gz               *gzip.Writer
	original         bytes.Buffer
	compressed       bytes.Buffer
}

// NewWriter returns a new .bgzf writer with the given compression
// level.  Returns nil, error if there is a problem.
func NewWriter(w io.Writer, level int) (*Writer, error) {
	bw := &Writer{
		uncompressedSize: DefaultUncompressedBlockSize,
		w:                w,
	}
	gz, err := gzip.NewWriterLevel(&bw.compressed, level)
	if err != nil {
		return nil, err
	}
	bw.gz = gz
	return bw, nil
}

// Write writes buf to the .bgzf payload.  Returns the number of bytes
// consumed from buf and any error encountered.
func (w *Writer) Write(buf []byte) (int, error) {
	for i := 0; i < len(buf); {
		// Write one block at a time to avoid creating an entire copy of the input
		// buf.
		end := len(buf)

		// Account for straggler bytes left over from the previous
		// Write call.
		limit := i + w.uncompressedSize - w.original.Len()
		if limit < end {
			end = limit
		}
		n, _ := w.original.Write(buf[i:end])
		i += n
		if err := w.compressPending(false); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

// Close closes the current .bgzf block and appends the .bgzf
// terminator.  It does not close the underlying io.Writer.
func (w *Writer) Close() error {
	if err := w.compressPending(true); err != nil {
		return err
	}
	_, err := w.w.Write(terminator)
	return err
}

// newBlock readies w.gz to compress the next gzip block into
// w.compressed.  Reset clears the gzip header, so the bgzf Extra
// subfield must be restored each time.
func (w *Writer) newBlock() {
	w.gz.Reset(&w.compressed)
	w.gz.Extra = make([]byte, len(bgzfExtra))
	copy(w.gz.Extra, bgzfExtra[:])
	w.gz.OS = 0xff // Unknown OS value
}

// Removes a block from w.original, compresses the block, and writes
// the compressed block to w.w.
func (w *Writer) compressPending(compressRemainder bool) error {
	for w.original.Len() >= w.uncompressedSize || (compressRemainder && w.original.Len() > 0) {
		w.newBlock()

		// Compress one block.
		if _, err := w.gz.Write(w.original.Next(w.uncompressedSize)); err != nil {
			return err
		}
		if err := w.gz.Close(); err != nil {
			return err
		}

		// Replace bgzf BSIZE header with compressed length - 1.
		b := w.compressed.Bytes()
		offset := 12 // This is the offset of the Extra field in the gzip header.
		bsize := w.compressed.Len() - 1
		if bsize >= compressedBlockSize {
			return fmt.Errorf("bgzf compressed block is too big: %d > %d", bsize,
				compressedBlockSize)
		}
		if w.compressed.Len() < (offset + len(bgzfExtra)) {
			log.Panicf("compressed length is too short: %d < %d", w.compressed.Len(),
				offset+len(bgzfExtra))
		}
		if !bytes.Equal(b[offset:offset+len(bgzfExtraPrefix)], bgzfExtraPrefix[:]) {
			log.Panicf("could not find bgzf extra prefix")
		}
		b[offset+4] = byte(bsize)
		b[offset+5] = byte(bsize >> 8)

		// Write out the compressed block.
		if _, err := w.compressed.WriteTo(w.w); err != nil {
			return err
		}
	}
	return nil
}
