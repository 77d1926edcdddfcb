package settings

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/example/vocabmaster/internal/apperrors"
	"github.com/example/vocabmaster/pkg/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// DocumentVersion is written into every exported settings document
const DocumentVersion = "1.0"

// Format is the serialization of an exported settings document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", apperrors.Validation("format", "unsupported settings format %q", s)
	}
}

// Shortcut is the keyboard binding inside an exported document
type Shortcut struct {
	Modifier string `json:"modifier" yaml:"modifier"`
	Key      string `json:"key" yaml:"key"`
}

// Document is the portable settings file
type Document struct {
	ShortcutSettings Shortcut `json:"shortcutSettings" yaml:"shortcutSettings"`
	HighlightColor   string   `json:"highlightColor" yaml:"highlightColor"`
	WordCount        int      `json:"wordCount" yaml:"wordCount"`
	SheetURL         string   `json:"sheetUrl" yaml:"sheetUrl"`
	SheetName        string   `json:"sheetName,omitempty" yaml:"sheetName,omitempty"`
	ExportDate       string   `json:"exportDate,omitempty" yaml:"exportDate,omitempty"`
	Version          string   `json:"version,omitempty" yaml:"version,omitempty"`
}

//go:embed schema.json
var documentSchema string

const schemaURL = "vocabmaster://settings.schema.json"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, strings.NewReader(documentSchema)); err != nil {
			compileErr = fmt.Errorf("failed to add settings schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// Export writes s as a settings document stamped with now
func Export(w io.Writer, s models.Settings, format Format, now time.Time) error {
	doc := Document{
		ShortcutSettings: Shortcut{Modifier: s.ShortcutModifier, Key: s.ShortcutKey},
		HighlightColor:   s.HighlightColor,
		WordCount:        s.ReviewBatchSize,
		SheetURL:         s.SheetURL,
		SheetName:        s.SheetName,
		ExportDate:       now.UTC().Format(time.RFC3339),
		Version:          DocumentVersion,
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to write settings yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to write settings json: %w", err)
		}
		return nil
	}
}

// Import reads a settings document, checks it against the document schema and
// the field rules, and returns the resulting settings
func Import(r io.Reader, format Format) (models.Settings, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings document: %w", err)
	}

	jsonData := raw
	if format == FormatYAML {
		var generic any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return models.Settings{}, apperrors.Validation("document", "malformed yaml: %v", err)
		}
		if jsonData, err = json.Marshal(generic); err != nil {
			return models.Settings{}, apperrors.Validation("document", "yaml is not representable as json: %v", err)
		}
	}

	var instance any
	if err := json.Unmarshal(jsonData, &instance); err != nil {
		return models.Settings{}, apperrors.Validation("document", "malformed json: %v", err)
	}
	sch, err := schema()
	if err != nil {
		return models.Settings{}, err
	}
	if err := sch.Validate(instance); err != nil {
		return models.Settings{}, apperrors.Validation("document", "%v", err)
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	if err := dec.Decode(&doc); err != nil {
		return models.Settings{}, apperrors.Validation("document", "%v", err)
	}

	s := Normalize(models.Settings{
		ShortcutModifier: doc.ShortcutSettings.Modifier,
		ShortcutKey:      doc.ShortcutSettings.Key,
		HighlightColor:   doc.HighlightColor,
		ReviewBatchSize:  doc.WordCount,
		SheetURL:         doc.SheetURL,
		SheetName:        doc.SheetName,
	})
	if s.SheetName == "" {
		s.SheetName = Defaults().SheetName
	}
	if err := Validate(s); err != nil {
		return models.Settings{}, err
	}
	return s, nil
}
