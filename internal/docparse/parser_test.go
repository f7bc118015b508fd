package docparse

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_TextFormats(t *testing.T) {
	for _, name := range []string{"notes.txt", "readme.md", "doc.markdown", "data.json"} {
		got, err := Parse(name, []byte("  hello world  "))
		if err != nil {
			t.Errorf("Parse(%q): %v", name, err)
			continue
		}
		if got != "hello world" {
			t.Errorf("Parse(%q) = %q", name, got)
		}
	}
}

func TestParse_JapaneseText(t *testing.T) {
	got, err := Parse("nda.txt", []byte("秘密保持契約の内容"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != "秘密保持契約の内容" {
		t.Errorf("got %q", got)
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	if _, err := Parse("bad.txt", []byte{0xff, 0xfe, 0xfd}); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestParse_EmptyText(t *testing.T) {
	if _, err := Parse("empty.txt", []byte("   \n\t ")); err == nil {
		t.Error("expected error for whitespace-only file")
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"doc.docx", "image.png", "archive.zip", "noext"} {
		_, err := Parse(name, []byte("content"))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Parse(%q) error = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}

func TestParse_BrokenPDF(t *testing.T) {
	if _, err := Parse("broken.pdf", []byte("not a real pdf")); err == nil {
		t.Error("expected error for malformed PDF")
	}
}

func TestHTMLToText(t *testing.T) {
	page := `<html><head><title>Title</title><style>body{color:red}</style>
<script>alert(1)</script></head>
<body><h1>Heading</h1><p>First paragraph.</p><p>Second   one.</p></body></html>`

	got, err := HTMLToText([]byte(page))
	if err != nil {
		t.Fatalf("HTMLToText: %v", err)
	}
	for _, want := range []string{"Heading", "First paragraph.", "Second   one."} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	for _, banned := range []string{"alert(1)", "color:red"} {
		if strings.Contains(got, banned) {
			t.Errorf("output contains %q", banned)
		}
	}
}

func TestHTMLToText_NoVisibleText(t *testing.T) {
	if _, err := HTMLToText([]byte("<html><body><script>x()</script></body></html>")); err == nil {
		t.Error("expected error for page without visible text")
	}
}
