package broad

// Annotations returns the standard annotation set shared by GATK callers
// for the given generation. The two generations renamed and split several
// annotations, so the lists only partially overlap. MuTect2 runs pass
// includeBaseQualRankSum=false to leave BaseQualityRankSumTest out.
func Annotations(kind Kind, includeBaseQualRankSum bool) []string {
	anns := []string{
		"MappingQualityRankSumTest",
		"MappingQualityZero",
		"QualByDepth",
		"ReadPosRankSumTest",
		"RMSMappingQuality",
	}
	if includeBaseQualRankSum {
		anns = append(anns, "BaseQualityRankSumTest")
	}
	anns = append(anns, "FisherStrand")
	if kind == GATK4 {
		anns = append(anns, "MappingQuality")
	} else {
		anns = append(anns, "GCContent", "HaplotypeScore", "HomopolymerRun")
	}
	anns = append(anns, "DepthPerAlleleBySample", "Coverage")
	return anns
}
