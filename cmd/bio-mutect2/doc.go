/*
bio-mutect2 orchestrates somatic variant calling with GATK MuTect2 for a
tumor/normal batch. It prepares the reference and alignment indexes calling
needs, assembles the generation-appropriate MuTect2 command line (GATK 3.5+
and GATK4 are both supported), runs the separate FilterMutectCalls pass on
GATK4, and leaves a block-compressed, tabix-indexed VCF at the output path.

Sample usage:

	bio-mutect2 call \
	    -batch batch.yaml \
	    -reference ref.fa \
	    -region chr5:1000000-2000000 \
	    -out tumor-variants.vcf.gz

or, without a batch file:

	bio-mutect2 call \
	    -tumor tumor.bam -normal normal.bam \
	    -reference ref.fa
*/
package main
