package vpk0

// Describes a literal byte or a back-reference.
type token struct {
	isMatch bool
	len     int  // length in bytes if isMatch
	off     int  // distance back from the output position if isMatch
	lit     byte // literal value otherwise
}

// Describes a Match run.
type match struct {
	len int
	off int
}

// matchLimits bounds what the matcher may emit.
type matchLimits struct {
	window    int
	maxLength int
	maxChain  int // chain entries visited per search, 0 for no limit
	// accept filters candidate distances; nil accepts all.
	accept func(off int) bool
}

const hashBits = 15

// matcher finds back-references through 3-byte hash chains.
type matcher struct {
	data []byte
	lim  matchLimits
	head [1 << hashBits]int // newest position per hash, -1 if none
	prev []int              // next older position with the same hash
}

func newMatcher(data []byte, lim matchLimits) *matcher {
	m := &matcher{data: data, lim: lim, prev: make([]int, len(data))}
	for i := range m.head {
		m.head[i] = -1
	}
	return m
}

func hash3(b []byte) uint32 {
	v := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	return (v * 2654435761) >> (32 - hashBits)
}

// insert makes pos visible to later searches.
func (m *matcher) insert(pos int) {
	if pos+minMatch > len(m.data) {
		return
	}
	h := hash3(m.data[pos:])
	m.prev[pos] = m.head[h]
	m.head[h] = pos
}

// findLongestMatch returns the longest match for the bytes at head, or a
// zero match if none reaches minMatch. Chains run newest first, so among
// equal lengths the nearest candidate wins. Rejected candidates count toward
// maxChain too, so a constrained search visits the same entries.
func (m *matcher) findLongestMatch(head int) match {
	var best match
	maxLen := min(m.lim.maxLength, len(m.data)-head)
	if maxLen < minMatch {
		return best
	}
	h := hash3(m.data[head:])
	visited := 0
	for cand := m.head[h]; cand >= 0; cand = m.prev[cand] {
		off := head - cand
		if off > m.lim.window {
			break
		}
		if m.lim.maxChain > 0 && visited == m.lim.maxChain {
			break
		}
		visited++
		if m.lim.accept != nil && !m.lim.accept(off) {
			continue
		}
		length := 0
		for length < maxLen && m.data[cand+length] == m.data[head+length] {
			length++
		}
		if length > best.len {
			best = match{len: length, off: off}
			if length == maxLen {
				break
			}
		}
	}
	if best.len < minMatch {
		return match{}
	}
	return best
}

// tokenizeGreedy takes the longest match at every position. The parse only
// depends on matches that are emitted, so constraining the search to what a
// given tree pair can pack leaves it unchanged.
func tokenizeGreedy(data []byte, lim matchLimits) []token {
	var tokens []token
	m := newMatcher(data, lim)
	head := 0
	for head < len(data) {
		best := m.findLongestMatch(head)
		if best.len != 0 {
			tokens = append(tokens, token{isMatch: true, len: best.len, off: best.off})
			for end := head + best.len; head < end; head++ {
				m.insert(head)
			}
		} else {
			tokens = append(tokens, token{lit: data[head]})
			m.insert(head)
			head++
		}
	}
	return tokens
}
