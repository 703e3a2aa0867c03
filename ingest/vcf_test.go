package ingest

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/varden/eds/elastic"
	"github.com/varden/eds/transform"
)

const vcfHeader = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

const vcfHeaderSamples = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\tS2\n"

func vcfLine(fields ...string) string {
	return strings.Join(fields, "\t") + "\n"
}

func TestVCFToEDS_MultiAllelicMerge(t *testing.T) {
	vcf := vcfHeader +
		vcfLine("ref", "2", ".", "A", "C", ".", ".", ".") +
		vcfLine("ref", "2", ".", "A", "G", ".", ".", ".")
	fasta := ">ref\nAAAA\n"

	res, err := VCFToEDS(strings.NewReader(vcf), strings.NewReader(fasta))
	require.NoError(t, err)

	require.Equal(t, "{A}{A,C,G}{AA}", res.EDS)
	require.Equal(t, "{0}{0}{0}{0}{0}", res.Sources)
	require.Equal(t, 2, res.Stats.Records)
	require.Equal(t, 1, res.Stats.Groups)

	// The emitted pair must parse back cleanly.
	e, err := elastic.ParseWithSources(strings.NewReader(res.EDS), strings.NewReader(res.Sources))
	require.NoError(t, err)
	require.Equal(t, 3, e.Len())
	require.True(t, e.IsDegenerate(1))
}

func TestVCFToEDS_Genotypes(t *testing.T) {
	vcf := vcfHeaderSamples +
		vcfLine("ref", "2", ".", "A", "C", ".", ".", ".", "GT", "0|1", "1|1")
	fasta := ">ref\nAAAA\n"

	res, err := VCFToEDS(strings.NewReader(vcf), strings.NewReader(fasta))
	require.NoError(t, err)

	require.Equal(t, "{A}{A,C}{AA}", res.EDS)
	require.Equal(t, "{0}{1}{1,2}{0}", res.Sources)
	require.Equal(t, 2, res.Stats.Samples)
}

func TestVCFToEDS_SampleWithoutCalls(t *testing.T) {
	// S2 has only missing genotypes: it realizes the reference.
	vcf := vcfHeaderSamples +
		vcfLine("ref", "2", ".", "A", "C", ".", ".", ".", "GT", "1|1", ".|.")
	fasta := ">ref\nAAAA\n"

	res, err := VCFToEDS(strings.NewReader(vcf), strings.NewReader(fasta))
	require.NoError(t, err)

	require.Equal(t, "{A}{A,C}{AA}", res.EDS)
	require.Equal(t, "{0}{2}{1}{0}", res.Sources)
}

func TestVCFToEDS_UnphasedGenotypes(t *testing.T) {
	vcf := vcfHeaderSamples +
		vcfLine("ref", "2", ".", "A", "C", ".", ".", ".", "GT:DP", "0/1:12", "0/0:7")
	fasta := ">ref\nAAAA\n"

	res, err := VCFToEDS(strings.NewReader(vcf), strings.NewReader(fasta))
	require.NoError(t, err)
	require.Equal(t, "{A}{A,C}{AA}", res.EDS)
	require.Equal(t, "{0}{1,2}{1}{0}", res.Sources)
}

func TestVCFToEDS_Deletion(t *testing.T) {
	vcf := vcfHeader + vcfLine("ref", "2", ".", "A", "<DEL>", ".", ".", ".")
	fasta := ">ref\nAAAA\n"

	res, err := VCFToEDS(strings.NewReader(vcf), strings.NewReader(fasta))
	require.NoError(t, err)
	require.Equal(t, "{A}{A,}{AA}", res.EDS)
}

func TestVCFToEDS_SkipsUnsupportedSymbolicALT(t *testing.T) {
	vcf := vcfHeader +
		vcfLine("ref", "2", ".", "A", "<INV>", ".", ".", ".") +
		vcfLine("ref", "3", ".", "A", "T", ".", ".", ".")
	fasta := ">ref\nAAAA\n"

	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	res, err := VCFToEDS(strings.NewReader(vcf), strings.NewReader(fasta), WithLogger(logger))
	require.NoError(t, err)

	require.Equal(t, 1, res.Stats.Skipped)
	require.Equal(t, 1, res.Stats.Records)
	require.Equal(t, "{AA}{A,T}{A}", res.EDS)
}

func TestVCFToEDS_OverlapGrouping(t *testing.T) {
	// [1,4) and [3,5) intersect: one group spanning [1,5).
	vcf := vcfHeader +
		vcfLine("ref", "2", ".", "CGT", "C", ".", ".", ".") +
		vcfLine("ref", "4", ".", "TA", "T", ".", ".", ".")
	fasta := ">ref\nACGTACGT\n"

	res, err := VCFToEDS(strings.NewReader(vcf), strings.NewReader(fasta))
	require.NoError(t, err)

	require.Equal(t, 1, res.Stats.Groups)
	require.Equal(t, "{A}{CGTA,CA,CGT}{CGT}", res.EDS)
}

func TestVCFToEDS_NestedRecordJoinsGroup(t *testing.T) {
	// The second record sits inside the first record's REF span.
	vcf := vcfHeader +
		vcfLine("ref", "2", ".", "CGTA", "C", ".", ".", ".") +
		vcfLine("ref", "3", ".", "G", "T", ".", ".", ".")
	fasta := ">ref\nACGTACGT\n"

	res, err := VCFToEDS(strings.NewReader(vcf), strings.NewReader(fasta))
	require.NoError(t, err)
	require.Equal(t, 1, res.Stats.Groups)

	// Reference haplotype leads the group symbol.
	require.True(t, strings.HasPrefix(res.EDS, "{A}{CGTA,"), "got %s", res.EDS)
}

func TestVCFToEDS_NoVariants(t *testing.T) {
	res, err := VCFToEDS(strings.NewReader(vcfHeader), strings.NewReader(">ref\nACGT\n"))
	require.NoError(t, err)
	require.Equal(t, "{ACGT}", res.EDS)
	require.Equal(t, "{0}", res.Sources)
}

func TestVCFToEDS_WrappedFASTA(t *testing.T) {
	vcf := vcfHeader + vcfLine("ref", "5", ".", "A", "T", ".", ".", ".")
	fasta := ">ref\nACGT\nACGT\n"

	res, err := VCFToEDS(strings.NewReader(vcf), strings.NewReader(fasta))
	require.NoError(t, err)
	require.Equal(t, "{ACGT}{A,T}{CGT}", res.EDS)
}

func TestVCFToLEDS_Pipeline(t *testing.T) {
	vcf := vcfHeaderSamples +
		vcfLine("ref", "3", ".", "G", "C", ".", ".", ".", "GT", "0|1", "1|1") +
		vcfLine("ref", "5", ".", "A", "T", ".", ".", ".", "GT", "0|0", "0|1")
	fasta := ">ref\nACGTACGT\n"

	res, err := VCFToLEDS(strings.NewReader(vcf), strings.NewReader(fasta), 2)
	require.NoError(t, err)

	e, err := elastic.ParseWithSources(strings.NewReader(res.EDS), strings.NewReader(res.Sources))
	require.NoError(t, err)
	require.True(t, transform.IsLEDS(e, 2))
	require.Equal(t, res.Stats.Symbols, e.Len())
}

func TestParseGenotype(t *testing.T) {
	require.Equal(t, []int{0, 1}, parseGenotype("0|1"))
	require.Equal(t, []int{1, 2}, parseGenotype("1/2"))
	require.Nil(t, parseGenotype(".|."))
	require.Equal(t, []int{1}, parseGenotype(".|1"))
	require.Nil(t, parseGenotype(""))
}

func TestParseALTField(t *testing.T) {
	alts, err := parseALTField("C,G", "A")
	require.NoError(t, err)
	require.Equal(t, []string{"C", "G"}, alts)

	alts, err = parseALTField("<DEL>", "A")
	require.NoError(t, err)
	require.Equal(t, []string{""}, alts)

	alts, err = parseALTField("<INS>", "ACG")
	require.NoError(t, err)
	require.Equal(t, []string{"ACG"}, alts)

	_, err = parseALTField("<CN0>", "A")
	require.Error(t, err)
}

func TestVCFToEDS_WhitespaceFallback(t *testing.T) {
	// Loose inputs separated by spaces instead of tabs still parse.
	vcf := "#CHROM POS ID REF ALT QUAL FILTER INFO\n" +
		"ref 2 . A C . . .\n"
	fasta := ">ref\nAAAA\n"

	res, err := VCFToEDS(strings.NewReader(vcf), strings.NewReader(fasta))
	require.NoError(t, err)
	require.Equal(t, "{A}{A,C}{AA}", res.EDS)
}
