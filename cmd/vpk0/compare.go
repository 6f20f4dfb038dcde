package main

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// lz4PackedSize is the LZ4 block size of src, used as a reference point in
// the stats report. Incompressible input reports its own length.
func lz4PackedSize(src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		return 0, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 {
		return len(src), nil
	}
	return n, nil
}
