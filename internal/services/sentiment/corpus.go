package sentiment

import (
	_ "embed"
	"fmt"
	"os"

	"PerpScout/internal/domain/models"

	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var defaultCorpus []byte

// DefaultCorpus returns the built-in snippet corpus.
func DefaultCorpus() models.SnippetCorpus {
	c, err := ParseCorpus(defaultCorpus)
	if err != nil {
		panic(fmt.Sprintf("sentiment: embedded corpus: %v", err))
	}
	return c
}

// LoadCorpus reads a YAML corpus file; an empty path yields the built-in corpus.
func LoadCorpus(path string) (models.SnippetCorpus, error) {
	if path == "" {
		return DefaultCorpus(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return models.SnippetCorpus{}, fmt.Errorf("read corpus: %w", err)
	}
	return ParseCorpus(b)
}

func ParseCorpus(b []byte) (models.SnippetCorpus, error) {
	var c models.SnippetCorpus
	if err := yaml.Unmarshal(b, &c); err != nil {
		return models.SnippetCorpus{}, fmt.Errorf("parse corpus: %w", err)
	}
	if c.Snippets == nil {
		c.Snippets = map[string][]string{}
	}
	return c, nil
}
