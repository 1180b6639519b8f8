package prep

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
)

func TestWriteFaidx(t *testing.T) {
	faidx := func(fa string) string {
		idx := bytes.Buffer{}
		assert.NoError(t, writeFaidx(&idx, strings.NewReader(fa)))
		return idx.String()
	}

	fa := `>chr1 Homo sapiens chromosome 1
GGTGAAATCC
CCTGAAATCC
AAAATTGC
>chr2
GTCCCTCCCCAGACATGGCCCTGGGAGGC
>MT
GATCACAGGTCTATCACCCT
`
	assert.EQ(t, faidx(fa), `chr1	28	32	10	11
chr2	29	69	29	30
MT	20	103	20	21
`)

	// Windows newline encoding.
	assert.EQ(t, faidx(">chr1\r\nGGGG\r\n"), `chr1	4	7	4	6
`)

	// No newline at the end.
	assert.EQ(t, faidx(">chr1\nGGGG\n>chr2\nCCCCC\nAAAAA"), `chr1	4	6	4	5
chr2	10	17	5	6
`)

	idx := bytes.Buffer{}
	assert.Regexp(t, writeFaidx(&idx, strings.NewReader("")), "empty FASTA")
	assert.Regexp(t, writeFaidx(&idx, strings.NewReader("ACGT\n>chr1\nAC\n")), "malformed FASTA")
}
