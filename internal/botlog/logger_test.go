package botlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogWritesKindTaggedLine(t *testing.T) {
	var file, term bytes.Buffer
	log := New(Options{File: &file, Term: &term, TermEnabled: true})

	log.Logf(KindBot, "bot exited code=%d", 137)

	for _, out := range []string{file.String(), term.String()} {
		if !strings.Contains(out, "[BOT] bot exited code=137") {
			t.Fatalf("expected tagged line, got %q", out)
		}
	}
	if strings.Contains(term.String(), "\x1b[") {
		t.Fatalf("expected no ANSI codes with color disabled, got %q", term.String())
	}
}

func TestLogDropsBlankMessages(t *testing.T) {
	var file bytes.Buffer
	log := New(Options{File: &file})
	log.Log(KindInfo, "   \n")
	if file.Len() != 0 {
		t.Fatalf("expected blank message to be dropped, got %q", file.String())
	}
}

func TestPreviewTruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := Preview(long, 60)
	if !strings.HasSuffix(got, "... (truncated)") {
		t.Fatalf("expected truncation marker, got %q", got)
	}
	wantLen := 60 - 14 + len(" ... (truncated)")
	if len(got) != wantLen {
		t.Fatalf("Preview length = %d, want %d", len(got), wantLen)
	}

	if got := Preview("a\n\nb  c", 60); got != "a b c" {
		t.Fatalf("whitespace not collapsed, got %q", got)
	}
	if got := Preview("short", 60); got != "short" {
		t.Fatalf("short text changed, got %q", got)
	}
	if got := Preview(long, 10); got != strings.Repeat("x", 10) {
		t.Fatalf("tiny max not hard-cut, got %q", got)
	}
}

func TestCenterPadsByDisplayWidth(t *testing.T) {
	line := Center("abc")
	if !strings.HasSuffix(line, "abc") {
		t.Fatalf("expected centered text to end with input, got %q", line)
	}
	pad := len(line) - len("abc")
	if pad != (BannerWidth-3)/2 {
		t.Fatalf("unexpected padding %d", pad)
	}
	if Center(strings.Repeat("=", BannerWidth)) != strings.Repeat("=", BannerWidth) {
		t.Fatal("expected full-width text to pass through unpadded")
	}
}
