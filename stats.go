package vpk0

import (
	"io"
)

// Stats describes how an input packs under one method.
type Stats struct {
	Method     Method
	Size       int // input length
	PackedSize int // container length
	Literals   int
	Matches    int
	MatchBytes int // bytes covered by matches

	LengthHist   map[int]int // match length -> count
	DistanceHist map[int]int // match distance -> count
	OffsetWidths []int       // offset samples per bit width
	LengthWidths []int       // lengths per bit width

	Trees Trees
}

// Analyze runs the encoder's matching and tree building over src and
// reports what it chose, without keeping the output.
func Analyze(src []byte, m Method) (*Stats, error) {
	pol, err := m.policy()
	if err != nil {
		return nil, err
	}
	tokens := tokenizeGreedy(src, limitsFor(pol, nil, nil))
	offFreq, lenFreq := widthFrequencies(pol, tokens)
	offsets, lengths := BuildTree(offFreq), BuildTree(lenFreq)

	st := &Stats{
		Method:       m,
		Size:         len(src),
		LengthHist:   make(map[int]int),
		DistanceHist: make(map[int]int),
		OffsetWidths: offFreq,
		LengthWidths: lenFreq,
		Trees:        Trees{Offsets: offsets.String(), Lengths: lengths.String()},
	}
	for _, t := range tokens {
		if t.isMatch {
			st.Matches++
			st.MatchBytes += t.len
			st.LengthHist[t.len]++
			st.DistanceHist[t.off]++
		} else {
			st.Literals++
		}
	}

	bw := newBitWriter(io.Discard)
	if err := offsets.write(bw); err != nil {
		return nil, err
	}
	if err := lengths.write(bw); err != nil {
		return nil, err
	}
	if err := writeTokens(bw, pol, offsets, lengths, tokens); err != nil {
		return nil, err
	}
	st.PackedSize = HeaderSize + (bw.BitCount()+7)/8
	return st, nil
}
