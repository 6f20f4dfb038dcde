package vpk0

import (
	"fmt"
	"math/bits"
	"sort"
	"strconv"
	"strings"

	"github.com/icza/huffman"
)

// MaxWidth is the widest raw sample a tree leaf may describe.
const MaxWidth = 32

// Tree is a prefix tree whose leaves hold sample bit widths. Walking the
// tree selects a width; that many raw bits follow in the stream.
// The zero Tree is empty.
type Tree struct {
	root *node
}

type node struct {
	left, right *node
	width       uint8
}

func (n *node) isLeaf() bool {
	return n.left == nil
}

// Empty reports whether the tree has no leaves.
func (t *Tree) Empty() bool {
	return t == nil || t.root == nil
}

// String returns the text form: a leaf is its width, a node is
// "(left, right)" and the empty tree is "()".
func (t *Tree) String() string {
	if t.Empty() {
		return "()"
	}
	var sb strings.Builder
	t.root.format(&sb)
	return sb.String()
}

func (n *node) format(sb *strings.Builder) {
	if n.isLeaf() {
		sb.WriteString(strconv.Itoa(int(n.width)))
		return
	}
	sb.WriteByte('(')
	n.left.format(sb)
	sb.WriteString(", ")
	n.right.format(sb)
	sb.WriteByte(')')
}

// ParseTree reads the text form produced by String.
func ParseTree(s string) (*Tree, error) {
	if strings.Join(strings.Fields(s), "") == "()" {
		return &Tree{}, nil
	}
	p := treeParser{src: s}
	root, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return &Tree{root: root}, nil
}

type treeParser struct {
	src string
	pos int
}

func (p *treeParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *treeParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *treeParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *treeParser) finish() error {
	p.skipSpace()
	if p.pos != len(p.src) {
		return p.errorf("trailing text")
	}
	return nil
}

func (p *treeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrParse, fmt.Sprintf(format, args...), p.pos, p.src)
}

func (p *treeParser) parseNode() (*node, error) {
	p.skipSpace()
	if p.peek() == '(' {
		p.pos++
		left, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		right, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &node{left: left, right: right}, nil
	}

	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return nil, p.errorf("expected width or '('")
	}
	text := p.src[start:p.pos]
	w, err := strconv.Atoi(text)
	if err != nil || w > MaxWidth {
		p.pos = start
		return nil, p.errorf("width %s out of range", text)
	}
	return &node{width: uint8(w)}, nil
}

// readTree decodes the post-order bit form: 0 + 8 bit width pushes a leaf,
// 1 joins the top two entries, or ends the tree when fewer than two remain.
func readTree(br *bitReader) (*Tree, error) {
	var stack []*node
	for {
		join, err := br.readBit()
		if err != nil {
			return nil, err
		}
		if !join {
			w, err := br.readBits(8)
			if err != nil {
				return nil, err
			}
			if w > MaxWidth {
				return nil, fmt.Errorf("%w: leaf width %d exceeds %d", ErrParse, w, MaxWidth)
			}
			stack = append(stack, &node{width: uint8(w)})
			continue
		}
		if len(stack) < 2 {
			break
		}
		n := len(stack)
		stack[n-2] = &node{left: stack[n-2], right: stack[n-1]}
		stack = stack[:n-1]
	}
	if len(stack) == 0 {
		return &Tree{}, nil
	}
	return &Tree{root: stack[0]}, nil
}

// write emits the tree in the form readTree expects.
func (t *Tree) write(bw *bitWriter) error {
	if !t.Empty() {
		if err := t.root.write(bw); err != nil {
			return err
		}
	}
	return bw.writeBit(true)
}

func (n *node) write(bw *bitWriter) error {
	if n.isLeaf() {
		if err := bw.writeBit(false); err != nil {
			return err
		}
		return bw.writeBits(uint64(n.width), 8)
	}
	if err := n.left.write(bw); err != nil {
		return err
	}
	if err := n.right.write(bw); err != nil {
		return err
	}
	return bw.writeBit(true)
}

// readSample walks the tree to a leaf and reads the raw sample behind it.
func (t *Tree) readSample(br *bitReader) (uint32, error) {
	if t.Empty() {
		return 0, fmt.Errorf("%w: sample requested from an empty tree", ErrCorruptStream)
	}
	n := t.root
	for !n.isLeaf() {
		right, err := br.readBit()
		if err != nil {
			return 0, err
		}
		if right {
			n = n.right
		} else {
			n = n.left
		}
	}
	v, err := br.readBits(int(n.width))
	return uint32(v), err
}

// leafCode is the path to one leaf, MSB first.
type leafCode struct {
	code  uint64
	len   int
	width uint8
}

// codes lists every leaf reachable with a code of at most 64 bits, in
// left-to-right order.
func (t *Tree) codes() []leafCode {
	var out []leafCode
	if t.Empty() {
		return out
	}
	var walk func(n *node, code uint64, depth int)
	walk = func(n *node, code uint64, depth int) {
		if n.isLeaf() {
			out = append(out, leafCode{code: code, len: depth, width: n.width})
			return
		}
		if depth == 64 {
			return
		}
		walk(n.left, code<<1, depth+1)
		walk(n.right, code<<1|1, depth+1)
	}
	walk(t.root, 0, 0)
	return out
}

// BuildTree returns the canonical tree for the given width frequencies,
// where freqs[w] counts samples needing w bits. Widths with a zero count get
// no leaf. No counts gives the empty tree.
func BuildTree(freqs []int) *Tree {
	lengths := codeLengths(freqs)
	return canonicalTree(lengths)
}

// codeLengths runs a Huffman construction over the used widths. Leaves go
// in by width and the build is stable, so equal counts resolve toward the
// narrower width and the result depends only on the frequency table. Unused
// widths get length -1.
func codeLengths(freqs []int) []int {
	lengths := make([]int, len(freqs))
	var leaves []*huffman.Node
	for w, f := range freqs {
		lengths[w] = -1
		if f > 0 {
			leaves = append(leaves, &huffman.Node{Value: huffman.ValueType(w), Count: f})
		}
	}
	switch len(leaves) {
	case 0:
		return lengths
	case 1:
		lengths[leaves[0].Value] = 0
		return lengths
	}
	// Build reorders the slice it is given.
	huffman.Build(append([]*huffman.Node(nil), leaves...))
	for _, n := range leaves {
		_, depth := n.Code()
		lengths[n.Value] = int(depth)
	}
	return lengths
}

// canonicalTree shapes a tree from code lengths alone: leaves sorted by
// (length, width) take consecutive codes. Negative lengths mark unused
// widths.
func canonicalTree(lengths []int) *Tree {
	type sym struct{ width, len int }
	var syms []sym
	for w, l := range lengths {
		if l >= 0 {
			syms = append(syms, sym{w, l})
		}
	}
	if len(syms) == 0 {
		return &Tree{}
	}
	sort.Slice(syms, func(i, j int) bool {
		if syms[i].len != syms[j].len {
			return syms[i].len < syms[j].len
		}
		return syms[i].width < syms[j].width
	})

	root := &node{}
	var code uint64
	prevLen := syms[0].len
	for i, s := range syms {
		if i > 0 {
			code++
			code <<= uint(s.len - prevLen)
		}
		prevLen = s.len
		insertLeaf(root, code, s.len, uint8(s.width))
	}
	return &Tree{root: root}
}

// insertLeaf places a leaf at the path given by the top n bits of code.
// Intermediate nodes carry a sentinel width until they gain children.
func insertLeaf(root *node, code uint64, n int, width uint8) {
	cur := root
	for i := n - 1; i >= 0; i-- {
		if cur.left == nil {
			cur.left = &node{}
			cur.right = &node{}
		}
		if code>>uint(i)&1 == 1 {
			cur = cur.right
		} else {
			cur = cur.left
		}
	}
	cur.width = width
}

// sampleCoder packs values through a tree. For each value bit length it
// keeps the cheapest leaf wide enough to hold it.
type sampleCoder struct {
	leaves   []leafCode
	best     [MaxWidth + 1]int // index into leaves, -1 if none fits
	maxWidth int               // widest usable leaf, -1 for none
}

func newSampleCoder(t *Tree) *sampleCoder {
	c := &sampleCoder{leaves: t.codes(), maxWidth: -1}
	for b := range c.best {
		c.best[b] = -1
		for i, l := range c.leaves {
			if int(l.width) < b {
				continue
			}
			j := c.best[b]
			if j < 0 {
				c.best[b] = i
				continue
			}
			cost, bestCost := l.len+int(l.width), c.leaves[j].len+int(c.leaves[j].width)
			if cost < bestCost || (cost == bestCost && l.width < c.leaves[j].width) {
				c.best[b] = i
			}
		}
	}
	for _, l := range c.leaves {
		if int(l.width) > c.maxWidth {
			c.maxWidth = int(l.width)
		}
	}
	return c
}

func (c *sampleCoder) fits(v uint32) bool {
	return c.best[bits.Len32(v)] >= 0
}

// maxValue is the largest value the coder can pack, or -1.
func (c *sampleCoder) maxValue() int64 {
	if c.maxWidth < 0 {
		return -1
	}
	return int64(1)<<uint(c.maxWidth) - 1
}

// cost is the bit count for v, which must fit.
func (c *sampleCoder) cost(v uint32) int {
	l := c.leaves[c.best[bits.Len32(v)]]
	return l.len + int(l.width)
}

func (c *sampleCoder) write(bw *bitWriter, v uint32) error {
	i := c.best[bits.Len32(v)]
	if i < 0 {
		return fmt.Errorf("%w: value %d has no leaf wide enough", ErrEncode, v)
	}
	l := c.leaves[i]
	if err := bw.writeBits(l.code, l.len); err != nil {
		return err
	}
	return bw.writeBits(uint64(v), int(l.width))
}

// widthOf is the number of bits a sample needs on its own.
func widthOf(v uint32) int {
	return bits.Len32(v)
}
