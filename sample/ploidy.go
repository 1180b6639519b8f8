package sample

import (
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/somatic/config"
)

// contig classes with ploidy special cases.
const (
	contigAuto = ""
	contigX    = "X"
	contigY    = "Y"
	contigMito = "mitochondrial"
)

func contigClass(chrom string) string {
	switch chrom {
	case "MT", "M", "chrM", "chrMT":
		return contigMito
	case "X", "chrX":
		return contigX
	case "Y", "chrY":
		return contigY
	}
	return contigAuto
}

func isMale(sex string) bool {
	s := strings.ToLower(sex)
	return s == "male" || s == "m"
}

func isFemale(sex string) bool {
	s := strings.ToLower(sex)
	return s == "female" || s == "f"
}

// halved is the haploid copy number of a sex chromosome carried singly.
func halved(base int) int {
	if h := base / 2; h > 0 {
		return h
	}
	return 1
}

func onePloidy(s Sample, cfg config.Ploidy, chrom string) int {
	base := s.Ploidy
	if base <= 0 {
		base = cfg.Default
	}
	if base <= 0 {
		base = 2
	}
	switch contigClass(chrom) {
	case contigMito:
		if cfg.Mitochondrial > 0 {
			return cfg.Mitochondrial
		}
		return base
	case contigX:
		if isMale(s.Sex) {
			return halved(base)
		}
		return base
	case contigY:
		if isFemale(s.Sex) {
			return 0
		}
		return halved(base)
	}
	return base
}

// Ploidy returns the copy number the caller should assume for the batch
// over chrom ("" means genome-wide): the minimum across samples, honoring
// sex chromosome and mitochondrial conventions. The result is floored at 1
// since the external caller rejects a zero ploidy; a region carrying none
// (chrY in an all-female batch) is expected to be excluded upstream.
func Ploidy(batch []Sample, cfg config.Ploidy, chrom string) int {
	min := 0
	for i, s := range batch {
		p := onePloidy(s, cfg, chrom)
		if i == 0 || p < min {
			min = p
		}
	}
	if min < 1 {
		log.Printf("ploidy %d on %s floored to 1 for calling", min, chrom)
		return 1
	}
	return min
}
