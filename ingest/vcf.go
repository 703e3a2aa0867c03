package ingest

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/varden/eds/elastic"
	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
	"github.com/varden/eds/internal/hash"
	"github.com/varden/eds/transform"
)

// vcfVariant is one parsed VCF record.
type vcfVariant struct {
	chrom     string
	pos       int      // 1-indexed, as in the file
	ref       string   // reference allele
	alts      []string // concrete ALT alleles; "" encodes <DEL>
	genotypes [][]int  // per sample: allele indices (0 = REF)
}

// variantGroup is a maximal run of records whose reference spans overlap,
// collapsed into one degenerate symbol.
type variantGroup struct {
	start    int // 0-indexed inclusive
	end      int // 0-indexed exclusive
	variants []vcfVariant
}

// VCFToEDS converts a VCF stream plus its FASTA reference into EDS text
// with sample-level path ids (1-indexed sample columns). Records with
// unsupported symbolic ALTs are skipped with a warning; reference
// stretches between variant groups become non-degenerate symbols with the
// universal source.
func VCFToEDS(vcf io.Reader, fasta io.ReadSeeker, opts ...Option) (*Result, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	ix, err := indexFASTA(fasta)
	if err != nil {
		return nil, err
	}

	stats := Stats{}
	variants, nSamples, err := parseVCF(vcf, cfg, &stats)
	if err != nil {
		return nil, err
	}
	stats.Samples = nSamples

	slices.SortStableFunc(variants, func(a, b vcfVariant) int { return a.pos - b.pos })

	return emitVariants(fasta, ix, variants, &stats)
}

// VCFToLEDS converts VCF+FASTA to l-EDS via the mandatory two-stage
// pipeline: VCF → EDS text, then the linear (source-filtered) fixed-point
// driver. The VCF path cannot compute context lengths ahead of assembly.
func VCFToLEDS(vcf io.Reader, fasta io.ReadSeeker, contextLength format.Length, opts ...Option) (*Result, error) {
	res, err := VCFToEDS(vcf, fasta, opts...)
	if err != nil {
		return nil, err
	}

	e, err := elastic.ParseWithSources(strings.NewReader(res.EDS), strings.NewReader(res.Sources))
	if err != nil {
		return nil, err
	}

	led, err := transform.Linear(e, contextLength)
	if err != nil {
		return nil, err
	}

	text, err := led.Text(format.FormatCompact)
	if err != nil {
		return nil, err
	}

	out := &Result{EDS: text, Stats: res.Stats}
	out.Stats.Symbols = led.Len()

	var seds strings.Builder
	if err := led.SaveSources(&seds); err != nil {
		return nil, err
	}
	out.Sources = strings.TrimRight(seds.String(), "\n")

	return out, nil
}

// parseVCF reads every record, learning the sample count from the #CHROM
// header line. Malformed or unsupported records are skipped and counted.
func parseVCF(r io.Reader, cfg *config, stats *Stats) ([]vcfVariant, int, error) {
	var (
		variants []vcfVariant
		nSamples int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if line[0] == '#' {
			if strings.HasPrefix(line, "#CHROM") {
				cols := strings.Fields(line)
				if len(cols) > 9 {
					nSamples = len(cols) - 9
				}
			}

			continue
		}

		v, ok := parseVCFRecord(line, cfg, stats)
		if ok {
			stats.Records++
			variants = append(variants, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: reading VCF: %w", errs.ErrIO, err)
	}

	return variants, nSamples, nil
}

// parseVCFRecord splits one data line. VCF requires tabs; whitespace
// splitting is the fallback for loose inputs.
func parseVCFRecord(line string, cfg *config, stats *Stats) (vcfVariant, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		fields = strings.Fields(line)
	}
	if len(fields) < 5 {
		stats.Skipped++
		cfg.warn("skipping truncated VCF record", "line", truncateForLog(line))

		return vcfVariant{}, false
	}

	pos, err := strconv.Atoi(fields[1])
	if err != nil || pos < 1 {
		stats.Skipped++
		cfg.warn("skipping VCF record with bad POS", "pos", fields[1])

		return vcfVariant{}, false
	}

	v := vcfVariant{
		chrom: fields[0],
		pos:   pos,
		ref:   fields[3],
	}

	v.alts, err = parseALTField(fields[4], v.ref)
	if err != nil {
		stats.Skipped++
		cfg.warn("skipping VCF record", "chrom", v.chrom, "pos", v.pos, "reason", err.Error())

		return vcfVariant{}, false
	}

	// Columns 10+ carry per-sample data; GT is the first ':'-separated
	// field. FORMAT itself (column 9) is not inspected.
	if len(fields) >= 10 {
		for _, sample := range fields[9:] {
			gt, _, _ := strings.Cut(sample, ":")
			v.genotypes = append(v.genotypes, parseGenotype(gt))
		}
	}

	return v, true
}

// parseALTField expands a (possibly multi-allelic) ALT value. <DEL> maps
// to the empty string, <INS> to the REF sequence inserted; any other
// symbolic ALT is unsupported and skips the record.
func parseALTField(alt, ref string) ([]string, error) {
	var alts []string
	for _, a := range strings.Split(alt, ",") {
		if len(a) >= 2 && a[0] == '<' && a[len(a)-1] == '>' {
			switch a[1 : len(a)-1] {
			case "DEL":
				alts = append(alts, "")
			case "INS":
				alts = append(alts, ref)
			default:
				return nil, fmt.Errorf("unsupported structural variant type %s", a)
			}

			continue
		}
		alts = append(alts, a)
	}

	return alts, nil
}

// parseGenotype splits a GT value on '|' or '/' into allele indices.
// Missing alleles (".") are dropped; malformed tokens are ignored.
func parseGenotype(gt string) []int {
	sep := "|"
	if strings.Contains(gt, "/") {
		sep = "/"
	}

	var alleles []int
	for _, tok := range strings.Split(gt, sep) {
		if tok == "." || tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		alleles = append(alleles, n)
	}

	return alleles
}

// groupVariants walks the POS-sorted records, opening a new group
// whenever the next record's reference interval clears the union of the
// current group's intervals. A record nested inside a prior record's span
// joins that record's group even when it starts later.
func groupVariants(variants []vcfVariant) []variantGroup {
	var groups []variantGroup

	i := 0
	for i < len(variants) {
		g := variantGroup{
			start:    variants[i].pos - 1,
			end:      variants[i].pos - 1 + len(variants[i].ref),
			variants: []vcfVariant{variants[i]},
		}

		j := i + 1
		for j < len(variants) {
			next := variants[j]
			nextStart := next.pos - 1
			if nextStart >= g.end {
				break
			}
			g.variants = append(g.variants, next)
			if nextEnd := nextStart + len(next.ref); nextEnd > g.end {
				g.end = nextEnd
			}
			j++
		}

		groups = append(groups, g)
		i = j
	}

	return groups
}

// applyVariant substitutes one allele of one record into the group's
// reference span. Allele 0 and out-of-range indices yield the span
// unchanged.
func applyVariant(refSpan string, spanStart int, v *vcfVariant, allele int) string {
	if allele <= 0 || allele > len(v.alts) {
		return refSpan
	}

	off := v.pos - 1 - spanStart
	if off < 0 || off > len(refSpan) {
		return refSpan
	}

	var sb strings.Builder
	sb.WriteString(refSpan[:off])
	sb.WriteString(v.alts[allele-1])
	if after := off + len(v.ref); after < len(refSpan) {
		sb.WriteString(refSpan[after:])
	}

	return sb.String()
}

// emitVariants renders the grouped variants and the surrounding reference
// stretches into EDS + sEDS text.
func emitVariants(fasta io.ReadSeeker, ix *fastaIndex, variants []vcfVariant, stats *Stats) (*Result, error) {
	var (
		eds  strings.Builder
		seds strings.Builder
	)

	groups := groupVariants(variants)
	stats.Groups = len(groups)

	cursor := 0
	for gi := range groups {
		g := &groups[gi]

		if g.start > cursor {
			refRegion, err := ix.readRegion(fasta, cursor, g.start-cursor)
			if err != nil {
				return nil, err
			}
			if refRegion != "" {
				eds.WriteByte(format.SetOpen)
				eds.WriteString(refRegion)
				eds.WriteByte(format.SetClose)
				seds.WriteString("{0}")
				stats.Symbols++
			}
			cursor = g.start
		}

		refSpan, err := ix.readRegion(fasta, g.start, g.end-g.start)
		if err != nil {
			return nil, err
		}

		if err := emitGroup(&eds, &seds, g, refSpan); err != nil {
			return nil, err
		}
		stats.Symbols++
		cursor = g.end
	}

	if cursor < ix.size {
		refRegion, err := ix.readRegion(fasta, cursor, ix.size-cursor)
		if err != nil {
			return nil, err
		}
		if refRegion != "" {
			eds.WriteByte(format.SetOpen)
			eds.WriteString(refRegion)
			eds.WriteByte(format.SetClose)
			seds.WriteString("{0}")
			stats.Symbols++
		}
	}

	return &Result{EDS: eds.String(), Sources: seds.String(), Stats: *stats}, nil
}

// emitGroup writes one degenerate symbol. Haplotypes are enumerated
// reference-first and deduplicated in first-seen order; each carries the
// set of 1-indexed samples that can realize it, or the universal source
// when the VCF has no sample columns.
func emitGroup(eds, seds *strings.Builder, g *variantGroup, refSpan string) error {
	haplotypes := hash.NewInterner()
	_, _ = haplotypes.Intern(refSpan) // index 0 is always the reference

	for vi := range g.variants {
		v := &g.variants[vi]
		for a := 1; a <= len(v.alts); a++ {
			_, _ = haplotypes.Intern(applyVariant(refSpan, g.start, v, a))
		}
	}

	nSamples := 0
	for vi := range g.variants {
		if len(g.variants[vi].genotypes) > nSamples {
			nSamples = len(g.variants[vi].genotypes)
		}
	}

	// samplesFor[h] collects the samples that can realize haplotype h.
	samplesFor := make([][]format.PathID, haplotypes.Len())
	for sample := 0; sample < nSamples; sample++ {
		realized := make(map[int]struct{})
		for vi := range g.variants {
			v := &g.variants[vi]
			if sample >= len(v.genotypes) {
				continue
			}
			for _, allele := range v.genotypes[sample] {
				hap := applyVariant(refSpan, g.start, v, allele)
				if idx, ok := haplotypes.Lookup(hap); ok {
					realized[idx] = struct{}{}
				}
			}
		}
		if len(realized) == 0 {
			realized[0] = struct{}{} // no relevant calls: reference
		}
		for idx := range realized {
			samplesFor[idx] = append(samplesFor[idx], format.PathID(sample+1))
		}
	}

	// With samples, keep the reference plus every realized haplotype;
	// without, every haplotype applies to all paths.
	type alt struct {
		hap     string
		samples []format.PathID
	}
	var alts []alt
	for idx, hap := range haplotypes.Entries() {
		switch {
		case nSamples == 0:
			alts = append(alts, alt{hap: hap, samples: []format.PathID{0}})
		case idx == 0 && len(samplesFor[0]) == 0:
			alts = append(alts, alt{hap: hap, samples: []format.PathID{0}})
		case len(samplesFor[idx]) > 0:
			slices.Sort(samplesFor[idx])
			alts = append(alts, alt{hap: hap, samples: samplesFor[idx]})
		}
	}

	eds.WriteByte(format.SetOpen)
	for i, a := range alts {
		if i > 0 {
			eds.WriteByte(format.SetSeparator)
		}
		eds.WriteString(a.hap)

		seds.WriteByte(format.SetOpen)
		for p, id := range a.samples {
			if p > 0 {
				seds.WriteByte(format.SetSeparator)
			}
			fmt.Fprintf(seds, "%d", id)
		}
		seds.WriteByte(format.SetClose)
	}
	eds.WriteByte(format.SetClose)

	return nil
}

func truncateForLog(s string) string {
	if len(s) > 80 {
		return s[:80] + "…"
	}

	return s
}
