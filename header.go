package vpk0

import (
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderSize is the byte length of the fixed container header.
const HeaderSize = 9

var magic = [4]byte{'v', 'p', 'k', '0'}

// Header is the fixed part of a container.
type Header struct {
	Size   uint32 // original uncompressed length
	Method Method
}

// rawHeader mirrors the on-disk layout.
type rawHeader struct {
	Magic  [4]byte
	Size   uint32
	Method uint8
}

func writeHeader(w io.Writer, h Header) error {
	return binary.Write(w, binary.BigEndian, rawHeader{Magic: magic, Size: h.Size, Method: uint8(h.Method)})
}

// readHeader checks the magic and the method before anything else is read.
func readHeader(r io.Reader) (Header, error) {
	var raw rawHeader
	if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
		return Header{}, eofError(err)
	}
	if raw.Magic != magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrFormat, raw.Magic[:])
	}
	m, err := LookupMethod(int(raw.Method))
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return Header{Size: raw.Size, Method: m}, nil
}
