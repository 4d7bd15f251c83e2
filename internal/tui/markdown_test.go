package tui

import (
	"strings"
	"testing"
)

func TestMarkdownRender(t *testing.T) {
	md := newMarkdown()

	out := md.render("m1", "# Title\n\nSome **bold** words", 60)
	if strings.HasSuffix(out, "\n") {
		t.Error("expected trailing newlines to be trimmed")
	}
	for _, want := range []string{"Title", "bold", "words"} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownCache(t *testing.T) {
	md := newMarkdown()

	first := md.render("m1", "original", 60)
	if got := md.render("m1", "changed", 60); got != first {
		t.Error("expected cached output for the same id and width")
	}
	if got := md.render("m1", "changed", 40); !strings.Contains(got, "changed") {
		t.Error("expected a width change to drop the cache")
	}
	if got := md.render("", "uncached", 40); !strings.Contains(got, "uncached") {
		t.Error("expected messages without id to render directly")
	}
	if _, ok := md.cache[""]; ok {
		t.Error("expected empty ids not to be cached")
	}
}

func TestMarkdownMinimumWidth(t *testing.T) {
	md := newMarkdown()
	md.render("m1", "text", 3)
	if md.width != minMarkdownWidth {
		t.Errorf("width = %d, want %d", md.width, minMarkdownWidth)
	}
}
