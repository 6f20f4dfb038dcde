package vpk0

import (
	"bytes"
	"errors"
	"testing"
)

func widths(pairs ...int) []int {
	freqs := make([]int, MaxWidth+1)
	for i := 0; i < len(pairs); i += 2 {
		freqs[pairs[i]] = pairs[i+1]
	}
	return freqs
}

func TestBuildTree(t *testing.T) {
	var trees = []struct {
		name  string
		freqs []int
		want  string
	}{
		{"empty", widths(), "()"},
		{"single", widths(4, 7), "4"},
		{"single zero width", widths(0, 1), "0"},
		{"pair sorted by width", widths(9, 1, 2, 1), "(2, 9)"},
		{"skewed", widths(3, 10, 5, 5, 8, 1, 12, 1), "(3, (5, (8, 12)))"},
		{"balanced", widths(1, 4, 2, 4, 3, 4, 4, 4), "((1, 2), (3, 4))"},
		{"node ties leaf", widths(1, 1, 2, 1, 3, 2), "(3, (1, 2))"},
	}
	for _, tt := range trees {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildTree(tt.freqs).String()
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			again := BuildTree(tt.freqs).String()
			if again != got {
				t.Errorf("not deterministic: %s then %s", got, again)
			}
		})
	}
}

func TestCodeLengthsDependOnlyOnLengths(t *testing.T) {
	// Different frequencies with the same code lengths give the same tree.
	a := BuildTree(widths(3, 10, 5, 5, 8, 1, 12, 1))
	b := BuildTree(widths(3, 100, 5, 40, 8, 3, 12, 2))
	if a.String() != b.String() {
		t.Errorf("got %s and %s", a, b)
	}
}

func TestCodeLengthsComplete(t *testing.T) {
	// Every length table with two or more used widths fills the code space
	// exactly, and rebuilding gives the same table.
	x := uint32(7)
	for round := 0; round < 200; round++ {
		freqs := make([]int, MaxWidth+1)
		used := 0
		for w := range freqs {
			x = x*1103515245 + 12345
			if x>>28 < 6 {
				freqs[w] = int(x>>16&0xff) + 1
				used++
			}
		}
		if used < 2 {
			continue
		}
		lengths := codeLengths(freqs)
		var kraft uint64
		for w, l := range lengths {
			if (l >= 0) != (freqs[w] > 0) {
				t.Fatalf("round %d: width %d has count %d and length %d", round, w, freqs[w], l)
			}
			if l > 0 {
				kraft += uint64(1) << uint(48-l)
			}
		}
		if kraft != uint64(1)<<48 {
			t.Fatalf("round %d: lengths %v do not form a complete code", round, lengths)
		}
		again := codeLengths(freqs)
		for w := range lengths {
			if lengths[w] != again[w] {
				t.Fatalf("round %d: not deterministic at width %d", round, w)
			}
		}
	}
}

func TestParseTree(t *testing.T) {
	var texts = []struct {
		in, want string
	}{
		{"()", "()"},
		{" ( ) ", "()"},
		{"7", "7"},
		{"(1, 2)", "(1, 2)"},
		{" ( 1 ,2 ) ", "(1, 2)"},
		{"((4, 7), 12)", "((4, 7), 12)"},
		{"(0,(32,\n(1,1)))", "(0, (32, (1, 1)))"},
	}
	for _, tt := range texts {
		t.Run(tt.in, func(t *testing.T) {
			tree, err := ParseTree(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got := tree.String(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseTreeErrors(t *testing.T) {
	for _, in := range []string{"", " ", "(", "(1)", "(1, )", "x", "33", "-1", "1.5", "(1, 2) 3", "(1, 2", "(1 2)", "()()", "99999999999999999999"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTree(in)
			if !errors.Is(err, ErrParse) {
				t.Errorf("got %v, want ErrParse", err)
			}
		})
	}
}

func TestTreeBitsRoundTrip(t *testing.T) {
	for _, text := range []string{"()", "0", "8", "(1, 2)", "((4, 7), 12)", "(3, (5, (8, 12)))"} {
		t.Run(text, func(t *testing.T) {
			tree, err := ParseTree(text)
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			bw := newBitWriter(&buf)
			if err := tree.write(bw); err != nil {
				t.Fatal(err)
			}
			bw.close()
			got, err := readTree(newBitReader(bytes.NewReader(buf.Bytes())))
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != text {
				t.Errorf("got %s, want %s", got, text)
			}
		})
	}
}

func TestEmptyTreeBits(t *testing.T) {
	var buf bytes.Buffer
	bw := newBitWriter(&buf)
	(&Tree{}).write(bw)
	if bw.BitCount() != 1 {
		t.Errorf("empty tree: got %d bits, want 1", bw.BitCount())
	}
}

func TestReadTreeBadWidth(t *testing.T) {
	var buf bytes.Buffer
	bw := newBitWriter(&buf)
	bw.writeBit(false)
	bw.writeBits(40, 8)
	bw.writeBit(true)
	bw.close()
	_, err := readTree(newBitReader(bytes.NewReader(buf.Bytes())))
	if !errors.Is(err, ErrParse) {
		t.Errorf("got %v, want ErrParse", err)
	}
}

func TestSampleCoder(t *testing.T) {
	tree, err := ParseTree("(3, (5, (8, 12)))")
	if err != nil {
		t.Fatal(err)
	}
	c := newSampleCoder(tree)
	var samples = []struct {
		value uint32
		fits  bool
		cost  int
	}{
		{0, true, 1 + 3},
		{4, true, 1 + 3},
		{7, true, 1 + 3},
		{8, true, 2 + 5},
		{20, true, 2 + 5},
		{200, true, 3 + 8},
		{4095, true, 3 + 12},
		{4096, false, 0},
	}
	for _, tt := range samples {
		if got := c.fits(tt.value); got != tt.fits {
			t.Errorf("fits(%d): got %v, want %v", tt.value, got, tt.fits)
			continue
		}
		if tt.fits {
			if got := c.cost(tt.value); got != tt.cost {
				t.Errorf("cost(%d): got %d, want %d", tt.value, got, tt.cost)
			}
		}
	}
	if c.maxValue() != 4095 {
		t.Errorf("maxValue: got %d, want 4095", c.maxValue())
	}
	if newSampleCoder(&Tree{}).maxValue() != -1 {
		t.Errorf("empty tree should pack nothing")
	}
}

func TestSampleCoderPrefersCheaperWiderLeaf(t *testing.T) {
	// A 3 bit value can use the 3 bit leaf (cost 3+3) or the 4 bit leaf
	// (cost 1+4).
	tree, _ := ParseTree("(4, (2, (3, 1)))")
	c := newSampleCoder(tree)
	if got := c.cost(5); got != 5 {
		t.Errorf("cost(5): got %d, want 5", got)
	}
}

func TestSampleRoundTrip(t *testing.T) {
	tree, _ := ParseTree("((0, 4), (9, 16))")
	c := newSampleCoder(tree)
	values := []uint32{0, 1, 15, 16, 300, 511, 512, 65535}
	var buf bytes.Buffer
	bw := newBitWriter(&buf)
	for _, v := range values {
		if err := c.write(bw, v); err != nil {
			t.Fatal(err)
		}
	}
	bw.close()
	br := newBitReader(bytes.NewReader(buf.Bytes()))
	for _, want := range values {
		got, err := tree.readSample(br)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
}
