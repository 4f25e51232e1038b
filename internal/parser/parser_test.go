package parser

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Run("full frontmatter", func(t *testing.T) {
		content := []byte("---\ntitle: Evening News\ntags: [news, evening]\nbg_url: https://cdn.example.com/bg.jpg\nmusic_url: https://cdn.example.com/music.mp3\npreset: broadcast\nspeaker: Dana\n---\n\nGood evening.\n\nHere are the headlines.\n")
		doc, err := Parse(content)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Title != "Evening News" {
			t.Fatalf("expected title, got %q", doc.Title)
		}
		if doc.BackgroundURL != "https://cdn.example.com/bg.jpg" || doc.MusicURL != "https://cdn.example.com/music.mp3" {
			t.Fatalf("unexpected media: %q %q", doc.BackgroundURL, doc.MusicURL)
		}
		if doc.Preset != "broadcast" {
			t.Fatalf("expected preset, got %q", doc.Preset)
		}
		if doc.Body != "Good evening.\n\nHere are the headlines." {
			t.Fatalf("unexpected body: %q", doc.Body)
		}
		if !reflect.DeepEqual(doc.Tags, []string{"news", "evening"}) {
			t.Fatalf("unexpected tags: %#v", doc.Tags)
		}
		if _, ok := doc.Frontmatter["speaker"]; !ok {
			t.Fatalf("expected speaker in frontmatter")
		}
	})

	t.Run("minimal frontmatter", func(t *testing.T) {
		doc, err := Parse([]byte("---\ntitle: Minimal\n---\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Tags != nil {
			t.Fatalf("expected nil tags, got %#v", doc.Tags)
		}
		if doc.Body != "" {
			t.Fatalf("expected empty body, got %q", doc.Body)
		}
	})

	t.Run("frontmatter closed at end of file", func(t *testing.T) {
		doc, err := Parse([]byte("---\ntitle: Closed\n---"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Title != "Closed" {
			t.Fatalf("expected title, got %q", doc.Title)
		}
	})

	t.Run("heading instead of frontmatter", func(t *testing.T) {
		doc, err := Parse([]byte("\n# Quick Update\n\nShort script.\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Title != "Quick Update" {
			t.Fatalf("expected title from heading, got %q", doc.Title)
		}
		if doc.Body != "Short script." {
			t.Fatalf("expected heading removed from body, got %q", doc.Body)
		}
	})

	t.Run("windows line endings", func(t *testing.T) {
		doc, err := Parse([]byte("---\r\ntitle: CRLF\r\n---\r\nline one\r\nline two\r\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Body != "line one\nline two" {
			t.Fatalf("unexpected body: %q", doc.Body)
		}
	})

	t.Run("no title anywhere", func(t *testing.T) {
		_, err := Parse([]byte("Just text"))
		if !errors.Is(err, ErrMissingTitle) {
			t.Fatalf("expected ErrMissingTitle, got %v", err)
		}
	})

	t.Run("frontmatter without title falls back to heading", func(t *testing.T) {
		doc, err := Parse([]byte("---\ntags: [a]\n---\n# From Heading\nbody\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Title != "From Heading" || doc.Body != "body" {
			t.Fatalf("unexpected doc: %+v", doc)
		}
	})

	t.Run("missing closing marker", func(t *testing.T) {
		_, err := Parse([]byte("---\ntitle: Missing\n"))
		if !errors.Is(err, ErrUnterminated) {
			t.Fatalf("expected ErrUnterminated, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("---\ntitle: [\n---\n"))
		if !errors.Is(err, ErrInvalidYAML) {
			t.Fatalf("expected ErrInvalidYAML, got %v", err)
		}
	})

	t.Run("non-string media field", func(t *testing.T) {
		_, err := Parse([]byte("---\ntitle: Bad\nbg_url: 42\n---\n"))
		if err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("tags single string", func(t *testing.T) {
		doc, err := Parse([]byte("---\ntitle: Tags\ntags: lone\n---\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(doc.Tags, []string{"lone"}) {
			t.Fatalf("unexpected tags: %#v", doc.Tags)
		}
	})

	t.Run("tags must be strings", func(t *testing.T) {
		_, err := Parse([]byte("---\ntitle: Tags\ntags: [1, 2]\n---\n"))
		if err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestParseFile(t *testing.T) {
	doc, err := ParseFile(filepath.Join("testdata", "morning_show.md"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.Title != "Morning Show" {
		t.Fatalf("expected title, got %q", doc.Title)
	}
	if doc.SourceFile == "" {
		t.Fatalf("expected source file set")
	}
	if doc.Preset != "broadcast" {
		t.Fatalf("expected preset, got %q", doc.Preset)
	}
}

func TestParseFile_Heading(t *testing.T) {
	doc, err := ParseFile(filepath.Join("testdata", "heading_only.md"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.Title != "Product Demo" {
		t.Fatalf("expected title, got %q", doc.Title)
	}
}

func TestParseFile_Untitled(t *testing.T) {
	_, err := ParseFile(filepath.Join("testdata", "untitled.md"))
	if !errors.Is(err, ErrMissingTitle) {
		t.Fatalf("expected ErrMissingTitle, got %v", err)
	}
}

func TestParse_BOMTrim(t *testing.T) {
	content := []byte("\ufeff---\ntitle: BOM\n---\n")
	doc, err := Parse(content)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.Title != "BOM" {
		t.Fatalf("expected title, got %q", doc.Title)
	}
}

func TestParseFile_ReadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected missing file")
	}
	if _, err := ParseFile(path); err == nil {
		t.Fatalf("expected error")
	}
}
