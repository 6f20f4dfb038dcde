package vpk0

import (
	"errors"
	"io"

	"github.com/icza/bitio"
)

// bitWriter packs values MSB first. The final byte is zero-padded on close.
type bitWriter struct {
	w        *bitio.Writer
	bitCount int
}

func newBitWriter(out io.Writer) *bitWriter {
	return &bitWriter{w: bitio.NewWriter(out)}
}

// writeBits appends the low n bits of value, n <= 64.
func (w *bitWriter) writeBits(value uint64, n int) error {
	if n == 0 {
		return nil
	}
	if n < 64 {
		value &= (uint64(1) << n) - 1
	}
	w.bitCount += n
	return w.w.WriteBits(value, uint8(n))
}

func (w *bitWriter) writeBit(b bool) error {
	w.bitCount++
	return w.w.WriteBool(b)
}

// BitCount returns the number of bits written so far, excluding padding.
func (w *bitWriter) BitCount() int {
	return w.bitCount
}

func (w *bitWriter) close() error {
	return w.w.Close()
}

// bitReader is the counterpart of bitWriter. It only pulls bytes from the
// underlying reader as bits are requested.
type bitReader struct {
	r        *bitio.Reader
	bitCount int
}

func newBitReader(in io.Reader) *bitReader {
	return &bitReader{r: bitio.NewReader(in)}
}

// readBits returns the next n bits, n <= 64.
func (r *bitReader) readBits(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	v, err := r.r.ReadBits(uint8(n))
	if err != nil {
		return 0, eofError(err)
	}
	r.bitCount += n
	return v, nil
}

func (r *bitReader) readBit() (bool, error) {
	b, err := r.r.ReadBool()
	if err != nil {
		return false, eofError(err)
	}
	r.bitCount++
	return b, nil
}

// eofError folds both flavours of io EOF into ErrUnexpectedEOF: the format
// has no end marker, so running dry is always premature.
func eofError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}
	return err
}
