package streamgen

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/neoclaw-ai/stream/internal/store"
)

// Generate reads source, renders its proxies and writes them to output.
// An empty output means OutputPath(source).
func Generate(source, output string) (string, error) {
	if source == "" {
		return "", errors.New("streamgen: source file is required")
	}
	if output == "" {
		output = OutputPath(source)
	}

	src, err := store.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("streamgen: read source: %w", err)
	}
	f, err := Parse(filepath.Base(source), src)
	if err != nil {
		return "", err
	}
	out, err := Render(f)
	if err != nil {
		return "", err
	}
	if err := store.WriteFile(output, out); err != nil {
		return "", fmt.Errorf("streamgen: write output: %w", err)
	}
	return output, nil
}
