// Package extract splits an IGC log into one group of lines per leading
// character and hands each group to a sink.
package extract

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"igc_parser/internal/flight"
	"igc_parser/internal/igc"
)

const maxLineSize = 1 << 20

// Group holds the lines sharing a leading character, in input order.
type Group struct {
	Char  byte
	Kind  igc.Kind
	Known bool
	Lines []string
}

// Name is the stable file-friendly name of the group: the kind name for
// supported kinds, "unknown_xx" with the hex byte otherwise.
func (g Group) Name() string {
	if g.Known {
		return g.Kind.Name()
	}
	return fmt.Sprintf("unknown_%02x", g.Char)
}

// Sink receives every group once.
type Sink interface {
	WriteGroup(g Group) error
}

// Split reads r, groups its non-blank lines and writes the groups to sink in
// order of first appearance. The groups are also returned.
func Split(r io.Reader, sink Sink) ([]Group, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	index := make(map[byte]int)
	var groups []Group
	for sc.Scan() {
		text, kind, known, ok := flight.ClassifyLine(sc.Text())
		if !ok {
			continue
		}
		c := text[0]
		i, seen := index[c]
		if !seen {
			i = len(groups)
			index[c] = i
			groups = append(groups, Group{Char: c, Kind: kind, Known: known})
		}
		groups[i].Lines = append(groups[i].Lines, text)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	for _, g := range groups {
		if err := sink.WriteGroup(g); err != nil {
			return groups, fmt.Errorf("write %s: %w", g.Name(), err)
		}
	}
	return groups, nil
}

// DirSink writes each group to <Dir>/<Prefix><name>.txt.
type DirSink struct {
	Dir    string
	Prefix string
}

func (s DirSink) WriteGroup(g Group) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, s.Prefix+g.Name()+".txt")
	return os.WriteFile(path, []byte(strings.Join(g.Lines, "\n")+"\n"), 0o644)
}

// BufferSink keeps every group in memory, keyed by group name.
type BufferSink struct {
	Buffers map[string]*bytes.Buffer
}

func NewBufferSink() *BufferSink {
	return &BufferSink{Buffers: make(map[string]*bytes.Buffer)}
}

func (s *BufferSink) WriteGroup(g Group) error {
	buf, ok := s.Buffers[g.Name()]
	if !ok {
		buf = new(bytes.Buffer)
		s.Buffers[g.Name()] = buf
	}
	for _, l := range g.Lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return nil
}

// Names returns the buffered group names, sorted.
func (s *BufferSink) Names() []string {
	names := make([]string, 0, len(s.Buffers))
	for n := range s.Buffers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
