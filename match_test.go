package vpk0

import (
	"bytes"
	"testing"
)

var wideOpen = matchLimits{window: 1 << 16, maxLength: 1 << 12}

func lit(b byte) token { return token{lit: b} }
func ref(n, off int) token { return token{isMatch: true, len: n, off: off} }

func literals(s string) []token {
	var out []token
	for i := 0; i < len(s); i++ {
		out = append(out, lit(s[i]))
	}
	return out
}

func tokensEqual(a, b []token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokenizeGreedy(t *testing.T) {
	tooFar := wideOpen
	tooFar.window = 5
	short := wideOpen
	short.maxLength = 4
	noFour := wideOpen
	noFour.accept = func(off int) bool { return off != 4 }
	shallow := wideOpen
	shallow.maxChain = 2
	shallowNoFour := noFour
	shallowNoFour.maxChain = 2

	var cases = []struct {
		name  string
		input string
		lim   matchLimits
		want  []token
	}{
		{"empty", "", wideOpen, nil},
		{"alternating", "ABABABAB", wideOpen, []token{lit('A'), lit('B'), ref(6, 2)}},
		{"nearest wins ties", "abcXabcYabc", wideOpen,
			append(literals("abcX"), ref(3, 4), lit('Y'), ref(3, 4))},
		{"below minimum", "abXab", wideOpen, literals("abXab")},
		{"outside window", "abcdefabc", tooFar, literals("abcdefabc")},
		{"length cap", "AAAAAAAAAA", short, []token{lit('A'), ref(4, 1), ref(4, 1), lit('A')}},
		{"rejected distance", "abcXabcYabc", noFour,
			append(literals("abcXabcY"), ref(3, 8))},
		{"deep chain", "abcdabc1abc2abcd", wideOpen,
			append(literals("abcd"), ref(3, 4), lit('1'), ref(3, 4), lit('2'), ref(4, 12))},
		{"chain limit", "abcdabc1abc2abcd", shallow,
			append(literals("abcd"), ref(3, 4), lit('1'), ref(3, 4), lit('2'), ref(3, 4), lit('d'))},
		{"rejected entries count toward chain", "abcdabc1abc2abcd", shallowNoFour,
			append(literals("abcdabc1"), ref(3, 8), lit('2'), ref(3, 8), lit('d'))},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenizeGreedy([]byte(tt.input), tt.lim)
			if !tokensEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokensCoverInput(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 50)
	data = append(data, sampleNoise(2000)...)
	tokens := tokenizeGreedy(data, wideOpen)

	var out []byte
	for _, tk := range tokens {
		if !tk.isMatch {
			out = append(out, tk.lit)
			continue
		}
		if tk.off < 1 || tk.off > len(out) {
			t.Fatalf("distance %d with %d bytes produced", tk.off, len(out))
		}
		if tk.len < minMatch {
			t.Fatalf("match of %d bytes below minimum", tk.len)
		}
		start := len(out) - tk.off
		for i := 0; i < tk.len; i++ {
			out = append(out, out[start+i])
		}
	}
	if !bytes.Equal(out, data) {
		t.Errorf("tokens do not rebuild the input")
	}
}

func TestLongRun(t *testing.T) {
	data := bytes.Repeat([]byte{0x41}, 10000)
	tokens := tokenizeGreedy(data, wideOpen)
	// One literal, then runs of the maximum length.
	if want := 1 + (9999+4095)/4096; len(tokens) != want {
		t.Errorf("got %d tokens, want %d", len(tokens), want)
	}
}
