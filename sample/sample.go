// Package sample models the sequenced samples of a somatic calling batch:
// loading batch metadata, resolving the tumor/normal pairing the caller
// requires, and computing region-aware ploidy.
package sample

import (
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"
)

// Phenotype values recognized in batch metadata.
const (
	Tumor  = "tumor"
	Normal = "normal"
)

// Sample is one sequenced sample in a batch.
type Sample struct {
	Name      string `yaml:"name"`
	BAM       string `yaml:"bam"`
	Phenotype string `yaml:"phenotype"`
	Sex       string `yaml:"sex"`
	// Ploidy overrides the configured default copy number when positive.
	Ploidy int `yaml:"ploidy"`
	// VariantRegions is an optional BED restricting calling for this sample.
	VariantRegions string `yaml:"variant_regions"`
	// NormalPanel is an optional panel-of-normals VCF.
	NormalPanel string `yaml:"panel_of_normals"`
}

// LoadBatch reads a YAML batch file: a list of samples, each requiring at
// least a name and a BAM path.
func LoadBatch(path string) ([]Sample, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading batch %s", path)
	}
	var batch []Sample
	if err := yaml.Unmarshal(buf, &batch); err != nil {
		return nil, errors.Wrapf(err, "parsing batch %s", path)
	}
	if len(batch) == 0 {
		return nil, errors.Errorf("batch %s contains no samples", path)
	}
	for i, s := range batch {
		if s.Name == "" {
			return nil, errors.Errorf("batch %s: sample %d has no name", path, i)
		}
		if s.BAM == "" {
			return nil, errors.Errorf("batch %s: sample %s has no bam", path, s.Name)
		}
	}
	return batch, nil
}

// Pair is the resolved tumor/normal input of one somatic calling run. The
// normal side and the panel of normals are optional.
type Pair struct {
	TumorBAM    string
	TumorName   string
	NormalBAM   string
	NormalName  string
	NormalPanel string
}

// HasNormal reports whether a matched normal sample is present.
func (p Pair) HasNormal() bool { return p.NormalBAM != "" }

// Paired resolves the tumor/normal pairing of a batch. Somatic calling
// requires exactly one tumor-phenotype sample; the error for a missing or
// ambiguous tumor names the samples seen so misconfigured metadata is easy
// to spot.
func Paired(batch []Sample) (Pair, error) {
	var p Pair
	names := make([]string, 0, len(batch))
	for _, s := range batch {
		names = append(names, s.Name)
		switch strings.ToLower(s.Phenotype) {
		case Tumor:
			if p.TumorBAM != "" {
				return Pair{}, errors.Errorf("multiple tumor phenotypes in batch (samples: %s)",
					strings.Join(names, ", "))
			}
			p.TumorBAM = s.BAM
			p.TumorName = s.Name
			if s.NormalPanel != "" {
				p.NormalPanel = s.NormalPanel
			}
		case Normal:
			if p.NormalBAM != "" {
				return Pair{}, errors.Errorf("multiple normal phenotypes in batch (samples: %s)",
					strings.Join(names, ", "))
			}
			p.NormalBAM = s.BAM
			p.NormalName = s.Name
		}
	}
	if p.TumorBAM == "" {
		return Pair{}, errors.Errorf("'tumor' phenotype not present in batch (samples: %s)",
			strings.Join(names, ", "))
	}
	return p, nil
}

// BAMs returns the aligned input files of the batch, in batch order.
func BAMs(batch []Sample) []string {
	out := make([]string, 0, len(batch))
	for _, s := range batch {
		out = append(out, s.BAM)
	}
	return out
}
