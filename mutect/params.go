package mutect

import (
	"context"
	"strconv"

	"github.com/grailbio/somatic/broad"
	"github.com/grailbio/somatic/regions"
	"github.com/grailbio/somatic/sample"
)

// tumorParams spells the alignment inputs. GATK4 takes plain -I inputs with
// the roles named through sample flags; GATK3 tags the input files with
// roles instead.
func tumorParams(pair sample.Pair, kind broad.Kind) []string {
	var params []string
	if kind == broad.GATK4 {
		params = append(params, "-I", pair.TumorBAM)
		params = append(params, "--tumor-sample", pair.TumorName)
	} else {
		params = append(params, "-I:tumor", pair.TumorBAM)
	}
	if pair.HasNormal() {
		if kind == broad.GATK4 {
			params = append(params, "-I", pair.NormalBAM)
			params = append(params, "--normal-sample", pair.NormalName)
		} else {
			params = append(params, "-I:normal", pair.NormalBAM)
		}
	}
	if pair.NormalPanel != "" {
		if kind == broad.GATK4 {
			params = append(params, "--panel-of-normals", pair.NormalPanel)
		} else {
			params = append(params, "--normal_panel", pair.NormalPanel)
		}
	}
	return params
}

// regionParams restricts calling to the intersection of the batch's variant
// regions and the requested target. Without a target the caller walks the
// whole genome and no interval flags are emitted.
func regionParams(ctx context.Context, batch []sample.Sample, region regions.Entry, outFile string, kind broad.Kind, padding int) ([]string, error) {
	var beds []string
	for _, s := range batch {
		beds = append(beds, s.VariantRegions)
	}
	variantRegions, err := regions.Population(ctx, beds, outFile)
	if err != nil {
		return nil, err
	}
	target, err := regions.Subset(ctx, variantRegions, region, outFile)
	if err != nil {
		return nil, err
	}
	if target == "" {
		return nil, nil
	}
	params := []string{"-L", target}
	if kind == broad.GATK4 {
		params = append(params, "--interval-set-rule", "INTERSECTION")
	} else {
		params = append(params, "--interval_set_rule", "INTERSECTION")
	}
	if padding > 0 {
		if kind == broad.GATK4 {
			params = append(params, "--interval-padding", strconv.Itoa(padding))
		} else {
			params = append(params, "--interval_padding", strconv.Itoa(padding))
		}
	}
	return params, nil
}

// assocParams spells the population-database inputs. Run keeps them out of
// the caller command: fed to MuTect2 they would flow into the somatic
// filtering pass.
func assocParams(dbSNP, cosmic string) []string {
	var params []string
	if dbSNP != "" {
		params = append(params, "--dbsnp", dbSNP)
	}
	if cosmic != "" {
		params = append(params, "--cosmic", cosmic)
	}
	return params
}
