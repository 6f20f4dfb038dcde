package vpk0

import (
	"fmt"
)

// Method selects how back-reference offsets are sampled.
type Method uint8

const (
	// OneSample stores the distance as a single sample.
	OneSample Method = 0
	// TwoSample stores distance+8 split into a sample counting 4 byte
	// units and, when the split is not exact, a leading remainder sample.
	TwoSample Method = 1
)

// DefaultMethod is used by EncodeBytes.
const DefaultMethod = OneSample

func (m Method) String() string {
	switch m {
	case OneSample:
		return "one-sample"
	case TwoSample:
		return "two-sample"
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

// methodPolicy holds everything a method changes about matching and
// packing.
type methodPolicy struct {
	window    int // furthest distance searched
	maxLength int // longest match emitted
	maxChain  int // hash chain entries searched per position

	// splitOffset appends the samples encoding a distance to dst.
	splitOffset func(dst []uint32, dist int) []uint32
	// joinOffset reads samples through next and rebuilds the distance.
	joinOffset func(next func() (uint32, error)) (int, error)
}

const minMatch = 3

var policies = map[Method]*methodPolicy{
	OneSample: {
		window:    1 << 16,
		maxLength: 1 << 12,
		maxChain:  1 << 12,
		splitOffset: func(dst []uint32, dist int) []uint32 {
			return append(dst, uint32(dist))
		},
		joinOffset: func(next func() (uint32, error)) (int, error) {
			s, err := next()
			return int(s), err
		},
	},
	TwoSample: {
		window:    1 << 16,
		maxLength: 1 << 12,
		maxChain:  1 << 12,
		splitOffset: func(dst []uint32, dist int) []uint32 {
			v := uint32(dist) + 8
			if r := v & 3; r != 0 {
				dst = append(dst, r-1)
			}
			return append(dst, v>>2)
		},
		joinOffset: func(next func() (uint32, error)) (int, error) {
			s, err := next()
			if err != nil {
				return 0, err
			}
			if s > 2 {
				return int(s)*4 - 8, nil
			}
			q, err := next()
			if err != nil {
				return 0, err
			}
			return int(q)*4 + int(s) + 1 - 8, nil
		},
	},
}

// LookupMethod validates a raw method identifier.
func LookupMethod(id int) (Method, error) {
	if id < 0 || id > 0xff {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedMethod, id)
	}
	m := Method(id)
	if _, ok := policies[m]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedMethod, id)
	}
	return m, nil
}

func (m Method) policy() (*methodPolicy, error) {
	p, ok := policies[m]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMethod, uint8(m))
	}
	return p, nil
}
