package vpk0

import (
	"bytes"
	"fmt"
)

// Output is grown on demand past this, so a lying size field cannot force
// a huge allocation up front.
const maxPrealloc = 1 << 20

// DecodeBytes unpacks a complete container with no size limit.
func DecodeBytes(src []byte) ([]byte, error) {
	var d Decoder
	return d.Decode(src)
}

// Decoder unpacks containers. A header claiming more than MaxSize bytes is
// rejected before any output is produced; zero means no limit.
type Decoder struct {
	MaxSize int
}

// Decode unpacks a complete container.
func (d *Decoder) Decode(src []byte) ([]byte, error) {
	r := bytes.NewReader(src)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if d.MaxSize > 0 && int64(h.Size) > int64(d.MaxSize) {
		return nil, fmt.Errorf("%w: header claims %d bytes, limit %d", ErrSizeLimit, h.Size, d.MaxSize)
	}
	pol, err := h.Method.policy()
	if err != nil {
		return nil, err
	}
	br := newBitReader(r)
	offsets, lengths, err := readTrees(br)
	if err != nil {
		return nil, err
	}
	return decodeTokens(br, h, pol, offsets, lengths)
}

func readTrees(br *bitReader) (offsets, lengths *Tree, err error) {
	offsets, err = readTree(br)
	if err != nil {
		return nil, nil, fmt.Errorf("offsets tree: %w", err)
	}
	lengths, err = readTree(br)
	if err != nil {
		return nil, nil, fmt.Errorf("lengths tree: %w", err)
	}
	return offsets, lengths, nil
}

// decodeTokens replays the token stream until h.Size bytes exist.
func decodeTokens(br *bitReader, h Header, pol *methodPolicy, offsets, lengths *Tree) ([]byte, error) {
	size := int(h.Size)
	out := make([]byte, 0, min(size, maxPrealloc))
	next := func() (uint32, error) {
		return offsets.readSample(br)
	}
	for len(out) < size {
		isMatch, err := br.readBit()
		if err != nil {
			return nil, tokenError(len(out), err)
		}
		if !isMatch {
			b, err := br.readBits(8)
			if err != nil {
				return nil, tokenError(len(out), err)
			}
			out = append(out, byte(b))
			continue
		}

		dist, err := pol.joinOffset(next)
		if err != nil {
			return nil, tokenError(len(out), err)
		}
		n, err := lengths.readSample(br)
		if err != nil {
			return nil, tokenError(len(out), err)
		}
		if dist < 1 || dist > len(out) {
			return nil, fmt.Errorf("%w: distance %d at output byte %d", ErrCorruptStream, dist, len(out))
		}
		if int64(n) > int64(size-len(out)) {
			return nil, fmt.Errorf("%w: length %d at output byte %d overruns size %d", ErrCorruptStream, n, len(out), size)
		}
		start := len(out) - dist
		for i := 0; i < int(n); i++ {
			out = append(out, out[start+i])
		}
	}
	return out, nil
}

func tokenError(pos int, err error) error {
	return fmt.Errorf("token at output byte %d: %w", pos, err)
}
