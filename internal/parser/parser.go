package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a script file: optional YAML frontmatter followed by the
// script text.
type Document struct {
	Frontmatter   map[string]any
	Title         string
	Tags          []string
	BackgroundURL string
	MusicURL      string
	Preset        string
	Body          string
	SourceFile    string
}

var (
	ErrUnterminated = errors.New("frontmatter is not terminated")
	ErrInvalidYAML  = errors.New("invalid YAML in frontmatter")
	ErrMissingTitle = errors.New("script has no title in frontmatter or leading heading")
)

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

// Parse reads a script. Without frontmatter the title comes from a leading
// "# " heading, which is then removed from the body.
func Parse(content []byte) (*Document, error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")

	frontmatter := map[string]any{}
	body := string(trimmed)

	if bytes.HasPrefix(trimmed, []byte("---\n")) {
		rest := trimmed[len("---\n"):]
		var yamlBytes []byte
		if end := bytes.Index(rest, []byte("---\n")); end != -1 {
			yamlBytes = rest[:end]
			body = string(rest[end+len("---\n"):])
		} else if bytes.HasSuffix(rest, []byte("---")) {
			yamlBytes = rest[:len(rest)-len("---")]
			body = ""
		} else {
			return nil, ErrUnterminated
		}

		if err := yaml.Unmarshal(yamlBytes, &frontmatter); err != nil {
			return nil, ErrInvalidYAML
		}
		if frontmatter == nil {
			frontmatter = map[string]any{}
		}
	}

	doc := &Document{Frontmatter: frontmatter}

	var err error
	if doc.Title, err = optionalString(frontmatter, "title"); err != nil {
		return nil, err
	}
	if doc.BackgroundURL, err = optionalString(frontmatter, "bg_url"); err != nil {
		return nil, err
	}
	if doc.MusicURL, err = optionalString(frontmatter, "music_url"); err != nil {
		return nil, err
	}
	if doc.Preset, err = optionalString(frontmatter, "preset"); err != nil {
		return nil, err
	}
	if doc.Tags, err = parseTags(frontmatter["tags"]); err != nil {
		return nil, err
	}

	if strings.TrimSpace(doc.Title) == "" {
		title, rest, ok := leadingHeading(body)
		if !ok {
			return nil, ErrMissingTitle
		}
		doc.Title = title
		body = rest
	}

	doc.Body = strings.Trim(body, "\n")
	return doc, nil
}

func optionalString(frontmatter map[string]any, key string) (string, error) {
	value, ok := frontmatter[key]
	if !ok || value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("frontmatter field %q must be a string", key)
	}
	return strings.TrimSpace(s), nil
}

func leadingHeading(body string) (string, string, bool) {
	trimmed := strings.TrimLeft(body, "\n")
	line, rest, _ := strings.Cut(trimmed, "\n")
	if !strings.HasPrefix(line, "# ") {
		return "", "", false
	}
	title := strings.TrimSpace(strings.TrimPrefix(line, "# "))
	if title == "" {
		return "", "", false
	}
	return title, rest, true
}

func parseTags(value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("tags must be strings")
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			tags = append(tags, s)
		}
		if len(tags) == 0 {
			return nil, nil
		}
		return tags, nil
	default:
		return nil, fmt.Errorf("tags must be string or list of strings")
	}
}
