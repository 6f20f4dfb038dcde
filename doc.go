// Package vpk0 packs and unpacks VPK0 containers, the LZ format with
// Huffman-coded sample widths found in N64 game data.
//
// A container is a 9 byte header ("vpk0", big-endian original size,
// method byte) followed by one MSB-first bitstream: the offsets tree, the
// lengths tree, then the tokens. Each token is a flag bit and either an
// 8 bit literal or a back-reference whose offset and length are sent as
// samples: a tree code choosing a bit width, then that many raw bits.
//
// Trees print as nested pairs of widths, for example "((4, 7), 12)", and
// parse back to the identical tree:
//
//	h, trees, _ := vpk0.Info(bytes.NewReader(packed))
//	e := vpk0.Encoder{Method: h.Method, Offsets: trees.Offsets, Lengths: trees.Lengths}
//	again, _ := e.Encode(original) // bytes.Equal(again, packed)
//
// The same triple is persisted as a three line text file by Config, which
// lets a decoded file be packed again with its original trees.
package vpk0
