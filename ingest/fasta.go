package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/varden/eds/errs"
)

// fastaIndex holds what random access into a single-contig FASTA file
// needs: the sequence name, its total length, the characters per line and
// the byte offset of the first sequence byte.
type fastaIndex struct {
	name      string
	size      int
	lineWidth int
	seqStart  int64
}

// indexFASTA scans the reference once. The line width is taken from the
// first data line; wrapped lines must share it (standard FASTA).
func indexFASTA(r io.ReadSeeker) (*fastaIndex, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	br := bufio.NewReader(r)
	var offset int64

	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	line := strings.TrimRight(header, "\r\n")
	if len(line) == 0 || line[0] != '>' {
		return nil, fmt.Errorf("%w: FASTA: expected '>' header line", errs.ErrInvalidFormat)
	}
	offset += int64(len(header))

	ix := &fastaIndex{seqStart: offset}
	if name, _, found := strings.Cut(line[1:], " "); found {
		ix.name = name
	} else {
		ix.name = line[1:]
	}

	first := true
	for {
		raw, err := br.ReadString('\n')
		if len(raw) > 0 {
			data := strings.TrimRight(raw, "\r\n")
			if len(data) > 0 && data[0] == '>' {
				break // next contig; only the first is indexed
			}
			if len(data) > 0 {
				if first {
					ix.lineWidth = len(data)
					first = false
				}
				ix.size += len(data)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
		}
	}

	if ix.size == 0 {
		return nil, fmt.Errorf("%w: FASTA: no sequence data", errs.ErrInvalidFormat)
	}

	return ix, nil
}

// readRegion reads [start, start+length) of the sequence, skipping the
// newlines embedded by line wrapping. Out-of-range spans clamp at the
// sequence end.
func (ix *fastaIndex) readRegion(r io.ReadSeeker, start, length int) (string, error) {
	if start >= ix.size || length <= 0 {
		return "", nil
	}
	if start+length > ix.size {
		length = ix.size - start
	}

	fileOff := ix.seqStart + int64(start) + int64(start/ix.lineWidth)
	if _, err := r.Seek(fileOff, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: seeking reference: %w", errs.ErrIO, err)
	}

	var sb strings.Builder
	sb.Grow(length)

	br := bufio.NewReader(r)
	for sb.Len() < length {
		c, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: reading reference: %w", errs.ErrIO, err)
		}
		if c != '\n' && c != '\r' {
			sb.WriteByte(c)
		}
	}

	return sb.String(), nil
}
