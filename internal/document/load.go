package document

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	httputil "github.com/jmylchreest/figaid/internal/util/http"
)

// Format identifies a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat guesses the encoding from a file name or URL path.
// Anything that is not .yaml or .yml is treated as JSON.
func DetectFormat(source string) Format {
	if i := strings.IndexAny(source, "?#"); i >= 0 && isURL(source) {
		source = source[:i]
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads a document snapshot from a local file or an http(s) URL.
func Load(ctx context.Context, source string) (*Document, error) {
	if source == "" {
		return nil, fmt.Errorf("document source cannot be empty")
	}

	var (
		data []byte
		err  error
	)
	if isURL(source) {
		data, err = httputil.Fetch(ctx, source, httputil.FetchOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch document: %w", err)
		}
	} else {
		data, err = os.ReadFile(source) // #nosec G304 - User-specified document path
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
	}

	return Decode(data, DetectFormat(source))
}

// Decode parses snapshot bytes in the given format.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML document: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON document: %w", err)
		}
	}
	return &doc, nil
}

// Encode writes the document in the given format.
func (d *Document) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to encode YAML document: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to encode JSON document: %w", err)
		}
		return nil
	}
}

// Save writes the document to path, choosing the format from its extension.
func (d *Document) Save(path string) error {
	f, err := os.Create(path) // #nosec G304 - User-specified output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := d.Encode(f, DetectFormat(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
