package batch

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// LoadFile reads a batch file, choosing the format by extension.
func LoadFile(filePath string) (Batch, error) {
	var parse func(io.Reader) (Batch, error)
	switch ext := filepath.Ext(filePath); ext {
	case ".json":
		parse = ParseBatchJSON
	case ".yaml", ".yml":
		parse = ParseBatchYAML
	default:
		return nil, fmt.Errorf("unsupported batch file extension %q: %s", ext, filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%q): %w", filePath, err)
	}
	defer f.Close()

	b, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return b, nil
}

// ParseBatchYAML converts the document to JSON first so that both formats
// share one decoding path.
func ParseBatchYAML(r io.Reader) (Batch, error) {
	yamlBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}
	if len(bytes.TrimSpace(yamlBytes)) == 0 {
		return Batch{}, nil
	}

	jsonBytes, err := yaml.YAMLToJSON(yamlBytes)
	if err != nil {
		return nil, fmt.Errorf("yaml.YAMLToJSON: %w", err)
	}

	return ParseBatchJSON(bytes.NewReader(jsonBytes))
}

func ParseBatchJSON(r io.Reader) (Batch, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber() // keeps "expect: 20" exact

	var root any
	if err := decoder.Decode(&root); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("json.Decode: unexpected data after the batch")
	}

	return compileBatch(root)
}
