package vpk0

import "io"

// Trees holds the text form of a container's trees.
type Trees struct {
	Offsets string
	Lengths string
}

// Info reads the header and both trees from r and stops there; the token
// stream is neither read nor unpacked.
func Info(r io.Reader) (Header, Trees, error) {
	h, err := readHeader(r)
	if err != nil {
		return Header{}, Trees{}, err
	}
	offsets, lengths, err := readTrees(newBitReader(r))
	if err != nil {
		return Header{}, Trees{}, err
	}
	return h, Trees{Offsets: offsets.String(), Lengths: lengths.String()}, nil
}
