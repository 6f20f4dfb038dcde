package vpk0

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ConfigExt is the extension of the file a decode leaves next to its
// output so that a later encode can replay the same trees.
const ConfigExt = ".vpk0_config"

// Config is the persisted (method, offsets, lengths) triple. On disk it is
// three lines: the method as a decimal integer, then each tree's text.
type Config struct {
	Method  Method
	Offsets string
	Lengths string
}

// NewConfig captures what Info reported about a container.
func NewConfig(h Header, t Trees) Config {
	return Config{Method: h.Method, Offsets: t.Offsets, Lengths: t.Lengths}
}

// ReadConfig parses and validates a persisted config.
func ReadConfig(r io.Reader) (Config, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	var lines []string
	for len(lines) < 3 && sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return Config{}, fmt.Errorf("vpk0: read config: %w", err)
	}
	if len(lines) < 3 {
		return Config{}, fmt.Errorf("vpk0: config has %d lines, want 3", len(lines))
	}

	id, err := strconv.Atoi(lines[0])
	if err != nil {
		return Config{}, fmt.Errorf("%w: config method %q", ErrUnsupportedMethod, lines[0])
	}
	m, err := LookupMethod(id)
	if err != nil {
		return Config{}, err
	}
	c := Config{Method: m, Offsets: lines[1], Lengths: lines[2]}
	if _, err := ParseTree(c.Offsets); err != nil {
		return Config{}, fmt.Errorf("config offsets: %w", err)
	}
	if _, err := ParseTree(c.Lengths); err != nil {
		return Config{}, fmt.Errorf("config lengths: %w", err)
	}
	return c, nil
}

// WriteTo writes the three-line form.
func (c Config) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "%d\n%s\n%s", uint8(c.Method), c.Offsets, c.Lengths)
	return int64(n), err
}

// Encoder returns an encoder that replays the config's trees.
func (c Config) Encoder() *Encoder {
	return &Encoder{Method: c.Method, Offsets: c.Offsets, Lengths: c.Lengths}
}
