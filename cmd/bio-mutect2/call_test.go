package main

import (
	"testing"

	"github.com/grailbio/somatic/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() callFlags {
	empty := func() *string { s := ""; return &s }
	return callFlags{
		batch:      empty(),
		tumor:      empty(),
		tumorName:  empty(),
		normal:     empty(),
		normalName: empty(),
		pon:        empty(),
	}
}

func TestLoadBatchDirect(t *testing.T) {
	flags := testFlags()
	*flags.tumor = "/data/tumor.bam"
	*flags.normal = "/data/normal.bam"
	*flags.normalName = "n1"
	*flags.pon = "/data/pon.vcf.gz"

	batch, err := loadBatch(flags)
	require.NoError(t, err)
	assert.Equal(t, []sample.Sample{
		{Name: "tumor", BAM: "/data/tumor.bam", Phenotype: sample.Tumor, NormalPanel: "/data/pon.vcf.gz"},
		{Name: "n1", BAM: "/data/normal.bam", Phenotype: sample.Normal},
	}, batch)
}

func TestLoadBatchTumorOnly(t *testing.T) {
	flags := testFlags()
	*flags.tumor = "/data/tumor.bam"
	*flags.tumorName = "t1"

	batch, err := loadBatch(flags)
	require.NoError(t, err)
	assert.Equal(t, []sample.Sample{
		{Name: "t1", BAM: "/data/tumor.bam", Phenotype: sample.Tumor},
	}, batch)
}

func TestLoadBatchExclusive(t *testing.T) {
	flags := testFlags()
	*flags.batch = "batch.yaml"
	*flags.tumor = "/data/tumor.bam"
	_, err := loadBatch(flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLoadBatchMissingTumor(t *testing.T) {
	_, err := loadBatch(testFlags())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either -batch or -tumor is required")
}

func TestSampleName(t *testing.T) {
	assert.Equal(t, "t1", sampleName("t1", "/data/tumor.bam"))
	assert.Equal(t, "tumor", sampleName("", "/data/tumor.bam"))
	assert.Equal(t, "sample.sorted", sampleName("", "/data/sample.sorted.bam"))
}
