package docs

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Paragraph is one template unit: text plus an opaque style tag that is
// carried through customization untouched.
type Paragraph struct {
	Text  string `yaml:"text"`
	Style string `yaml:"style,omitempty"`
}

// Document is an ordered paragraph sequence. Templates and rendered
// artifacts share this shape; the word-processing format behind it is a
// swappable concern, not part of the core.
type Document struct {
	Paragraphs []Paragraph
}

func LoadTemplate(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", path, err)
	}
	var ps []Paragraph
	if err := yaml.Unmarshal(b, &ps); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	return &Document{Paragraphs: ps}, nil
}

// Save writes the document, overwriting any previous render at path.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	b, err := yaml.Marshal(d.Paragraphs)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("save document %s: %w", path, err)
	}
	return nil
}
