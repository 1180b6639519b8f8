package sample_test

import (
	"testing"

	"github.com/grailbio/somatic/config"
	"github.com/grailbio/somatic/sample"
	"github.com/grailbio/testutil/expect"
)

func TestPloidy(t *testing.T) {
	cfg := config.Ploidy{Default: 2, Mitochondrial: 1}
	male := sample.Sample{Name: "t", Sex: "male"}
	female := sample.Sample{Name: "n", Sex: "female"}
	unknown := sample.Sample{Name: "u"}

	tests := []struct {
		name  string
		batch []sample.Sample
		chrom string
		want  int
	}{
		{"autosome", []sample.Sample{male, female}, "chr7", 2},
		{"genome-wide", []sample.Sample{male, female}, "", 2},
		{"chrX male", []sample.Sample{male}, "chrX", 1},
		{"chrX female", []sample.Sample{female}, "chrX", 2},
		{"chrX mixed takes min", []sample.Sample{male, female}, "X", 1},
		{"chrY male", []sample.Sample{male}, "chrY", 1},
		{"chrY unknown sex", []sample.Sample{unknown}, "Y", 1},
		{"mitochondrial", []sample.Sample{male, female}, "chrM", 1},
		{"MT alias", []sample.Sample{female}, "MT", 1},
	}
	for _, tt := range tests {
		expect.EQ(t, sample.Ploidy(tt.batch, cfg, tt.chrom), tt.want, tt.name)
	}
}

func TestPloidyFloor(t *testing.T) {
	cfg := config.Ploidy{Default: 2, Mitochondrial: 2}
	// chrY in an all-female batch computes to zero and must be floored for
	// the external caller.
	batch := []sample.Sample{{Name: "n", Sex: "female"}}
	expect.EQ(t, sample.Ploidy(batch, cfg, "chrY"), 1)
}

func TestPloidyOverrides(t *testing.T) {
	cfg := config.Ploidy{Default: 2, Mitochondrial: 2}
	batch := []sample.Sample{{Name: "t", Ploidy: 4, Sex: "male"}}
	expect.EQ(t, sample.Ploidy(batch, cfg, "chr1"), 4)
	expect.EQ(t, sample.Ploidy(batch, cfg, "chrX"), 2)

	// Zero-valued config falls back to the diploid default.
	expect.EQ(t, sample.Ploidy([]sample.Sample{{Name: "x"}}, config.Ploidy{}, "chr1"), 2)
}
