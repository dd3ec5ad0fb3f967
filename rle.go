package tdfbundle

import "fmt"

const (
	// minRun is the shortest run worth an escape triple.
	minRun = 3
	// maxRun is the longest run one escape triple can hold.
	maxRun = 255 + minRun
)

// EncodeRLE compresses a sequence of palette indices. Runs of three or
// more equal indices become (EscapeIndex, length-3, index) triples, shorter
// runs are copied literally. The escape index itself is always written as
// a triple, so a run of one or two escape indices can only be encoded at
// the end of the sequence, where the decoder's cell count cuts it short;
// anywhere else it fails with ErrUnencodableRun.
func EncodeRLE(indices []byte) ([]byte, error) {
	out := make([]byte, 0, len(indices))
	for i := 0; i < len(indices); {
		v := indices[i]
		j := i + 1
		for j < len(indices) && indices[j] == v {
			j++
		}
		run := j - i
		last := j == len(indices)
		i = j

		if v == EscapeIndex && run < minRun && !last {
			return nil, fmt.Errorf("%w: %d at position %d", ErrUnencodableRun, run, j-run)
		}

		for run > 0 {
			if run < minRun && v != EscapeIndex {
				for ; run > 0; run-- {
					out = append(out, v)
				}
				break
			}
			n := min(run, maxRun)
			if v == EscapeIndex && run > maxRun && run-maxRun < minRun {
				// Leave a remainder long enough for its own triple.
				n = run - minRun
			}
			out = append(out, EscapeIndex, byte(max(n-minRun, 0)), v)
			run -= n
		}
	}
	return out, nil
}

// DecodeRLE expands a stream into exactly count indices. It returns the
// indices and the number of stream bytes consumed. A stream that runs out
// early is padded with index 0 and reported; a run that overshoots count
// is cut short.
func DecodeRLE(stream []byte, count int) ([]byte, int, Diagnostics) {
	var diags Diagnostics
	out := make([]byte, 0, count)
	pos := 0
	for len(out) < count && pos < len(stream) {
		b := stream[pos]
		if b != EscapeIndex {
			out = append(out, b)
			pos++
			continue
		}
		if pos+3 > len(stream) {
			diags.add(KindShortStream, "", 0, "escape at byte %d cut off by end of data", pos)
			pos = len(stream)
			break
		}
		n := min(int(stream[pos+1])+minRun, count-len(out))
		v := stream[pos+2]
		for k := 0; k < n; k++ {
			out = append(out, v)
		}
		pos += 3
	}
	if missing := count - len(out); missing > 0 {
		diags.add(KindShortStream, "", 0, "stream decoded %d of %d cells, padding with index 0", len(out), count)
		out = append(out, make([]byte, missing)...)
	}
	return out, pos, diags
}
