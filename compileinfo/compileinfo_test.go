package compileinfo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestString(t *testing.T) {
	c := CompileInfo{Package: "gridiou", GoVersion: "go1.18", Commit: "abc123", CommitTime: "2022-01-01T00:00:00Z", Modified: true}

	s := c.String()
	for _, expected := range []string{"gridiou", "go1.18", "abc123", "modified after that commit"} {
		if !strings.Contains(s, expected) {
			t.Errorf("%q is missing %q", s, expected)
		}
	}
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	Log(zerolog.New(&buf))

	if !strings.Contains(buf.String(), `"build":{`) {
		t.Fatalf("Expected a build object, got %q", buf.String())
	}
}
