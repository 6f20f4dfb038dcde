package vpk0

import (
	"bytes"
	"fmt"
	"math"
)

// Encoder packs data into a VPK0 container.
//
// Offsets and Lengths take tree text as reported by Info. When set, that
// tree is used as given instead of one built from the input, and the
// matcher avoids anything it cannot represent. Together with the original
// input and method this reproduces a container bit for bit.
type Encoder struct {
	Method  Method
	Offsets string // optional offsets tree text
	Lengths string // optional lengths tree text
}

// EncodeBytes packs src with DefaultMethod and trees built from src.
func EncodeBytes(src []byte) ([]byte, error) {
	e := Encoder{Method: DefaultMethod}
	return e.Encode(src)
}

// Encode packs src into a new container.
func (e *Encoder) Encode(src []byte) ([]byte, error) {
	pol, err := e.Method.policy()
	if err != nil {
		return nil, err
	}
	if uint64(len(src)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes do not fit the size field", ErrEncode, len(src))
	}
	offsets, err := parseOptionalTree("offsets", e.Offsets)
	if err != nil {
		return nil, err
	}
	lengths, err := parseOptionalTree("lengths", e.Lengths)
	if err != nil {
		return nil, err
	}

	tokens := tokenizeGreedy(src, limitsFor(pol, offsets, lengths))
	if offsets == nil || lengths == nil {
		offFreq, lenFreq := widthFrequencies(pol, tokens)
		if offsets == nil {
			offsets = BuildTree(offFreq)
		}
		if lengths == nil {
			lengths = BuildTree(lenFreq)
		}
	}

	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(src)/2 + 16)
	if err := writeHeader(&buf, Header{Size: uint32(len(src)), Method: e.Method}); err != nil {
		return nil, err
	}
	bw := newBitWriter(&buf)
	if err := offsets.write(bw); err != nil {
		return nil, err
	}
	if err := lengths.write(bw); err != nil {
		return nil, err
	}
	if err := writeTokens(bw, pol, offsets, lengths, tokens); err != nil {
		return nil, err
	}
	if err := bw.close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseOptionalTree(name, text string) (*Tree, error) {
	if text == "" {
		return nil, nil
	}
	t, err := ParseTree(text)
	if err != nil {
		return nil, fmt.Errorf("%s tree: %w", name, err)
	}
	return t, nil
}

// limitsFor narrows the method's search to what supplied trees can pack.
// Nil trees add no constraint.
func limitsFor(pol *methodPolicy, offsets, lengths *Tree) matchLimits {
	lim := matchLimits{window: pol.window, maxLength: pol.maxLength, maxChain: pol.maxChain}
	if offsets != nil {
		oc := newSampleCoder(offsets)
		var samples []uint32
		lim.accept = func(off int) bool {
			samples = pol.splitOffset(samples[:0], off)
			for _, s := range samples {
				if !oc.fits(s) {
					return false
				}
			}
			return true
		}
	}
	if lengths != nil {
		if mv := newSampleCoder(lengths).maxValue(); mv < int64(lim.maxLength) {
			lim.maxLength = int(mv)
		}
	}
	return lim
}

// widthFrequencies counts, per bit width, the offset samples and lengths
// the tokens need.
func widthFrequencies(pol *methodPolicy, tokens []token) (offsets, lengths []int) {
	offsets = make([]int, MaxWidth+1)
	lengths = make([]int, MaxWidth+1)
	var samples []uint32
	for _, t := range tokens {
		if !t.isMatch {
			continue
		}
		samples = pol.splitOffset(samples[:0], t.off)
		for _, s := range samples {
			offsets[widthOf(s)]++
		}
		lengths[widthOf(uint32(t.len))]++
	}
	return offsets, lengths
}

func writeTokens(bw *bitWriter, pol *methodPolicy, offsets, lengths *Tree, tokens []token) error {
	oc := newSampleCoder(offsets)
	lc := newSampleCoder(lengths)
	var samples []uint32
	for _, t := range tokens {
		if !t.isMatch {
			if err := bw.writeBit(false); err != nil {
				return err
			}
			if err := bw.writeBits(uint64(t.lit), 8); err != nil {
				return err
			}
			continue
		}
		if err := bw.writeBit(true); err != nil {
			return err
		}
		samples = pol.splitOffset(samples[:0], t.off)
		for _, s := range samples {
			if err := oc.write(bw, s); err != nil {
				return err
			}
		}
		if err := lc.write(bw, uint32(t.len)); err != nil {
			return err
		}
	}
	return nil
}
