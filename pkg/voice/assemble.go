package voice

import "sort"

// Chunk is one segment's synthesized audio, tagged with its ordinal position
// in the segment list. Ownership transfers to Assemble, which consumes each
// chunk exactly once.
type Chunk struct {
	Index int
	Data  []byte
}

// Assemble concatenates chunk buffers strictly in ordinal order, regardless
// of the order calls completed in. The output length is exactly the sum of
// the input lengths.
func Assemble(chunks []Chunk) []byte {
	sorted := make([]Chunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})

	total := 0
	for _, c := range sorted {
		total += len(c.Data)
	}

	out := make([]byte, 0, total)
	for _, c := range sorted {
		out = append(out, c.Data...)
	}
	return out
}
