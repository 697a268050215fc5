package log

import (
	"bytes"
	"strings"
	"testing"
)

func Test_Logger(t *testing.T) {
	b := &bytes.Buffer{}
	l := New()
	l.SetOutput(b)
	l.SetPrefix("[1/4]")
	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.SetLevel(Debug)
	l.Debugf("now shown")
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected lines: %q", lines)
	}
	if lines[0] != "[I] [1/4] shown 2" {
		t.Errorf("unexpected line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[D] [1/4]") {
		t.Errorf("unexpected line %q", lines[1])
	}
}

func Test_ParseLevel(t *testing.T) {
	if l, err := ParseLevel("warn"); err != nil || l != Warn {
		t.Errorf("ParseLevel(warn) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("expected error")
	}
}
