package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"igc_parser/internal/igc"
)

const log = "AXXX123-ABC\r\n" +
	"HFDTE160701\n" +
	"\n" +
	"B1000004600000N00600000EA0050000500\n" +
	"HFPLTPILOT:Jane\n" +
	"B1001004600500N00600000EA0051000510\n" +
	"zjunk\n" +
	"GABCDEF\n"

func TestSplit_Buffer(t *testing.T) {
	sink := NewBufferSink()
	groups, err := Split(strings.NewReader(log), sink)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	var order []string
	for _, g := range groups {
		order = append(order, g.Name())
	}
	want := []string{"identification", "header", "fix", "unknown_7a", "security"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("group order = %v, want %v", order, want)
	}

	if got := sink.Buffers["fix"].String(); strings.Count(got, "\n") != 2 {
		t.Errorf("fix group = %q", got)
	}
	if got := sink.Buffers["header"].String(); got != "HFDTE160701\nHFPLTPILOT:Jane\n" {
		t.Errorf("header group = %q", got)
	}
	if got := sink.Buffers["identification"].String(); got != "AXXX123-ABC\n" {
		t.Errorf("identification group = %q", got)
	}
	if len(sink.Names()) != 5 {
		t.Errorf("Names() = %v", sink.Names())
	}
	if groups[3].Known || groups[3].Kind != igc.Kind('z') {
		t.Errorf("unknown group = %+v", groups[3])
	}
}

func TestSplit_Dir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if _, err := Split(strings.NewReader(log), DirSink{Dir: dir, Prefix: "f1_"}); err != nil {
		t.Fatalf("Split: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "f1_fix.txt"))
	if err != nil {
		t.Fatalf("read fix file: %v", err)
	}
	if !strings.HasPrefix(string(data), "B100000") {
		t.Errorf("fix file = %q", data)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 5 {
		t.Errorf("got %d files, want 5", len(entries))
	}
}

func TestSplit_Empty(t *testing.T) {
	groups, err := Split(strings.NewReader("\n \n"), NewBufferSink())
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("groups = %v", groups)
	}
}

type failSink struct{}

func (failSink) WriteGroup(Group) error { return errors.New("disk full") }

func TestSplit_SinkError(t *testing.T) {
	_, err := Split(strings.NewReader(log), failSink{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("err = %v", err)
	}
}
