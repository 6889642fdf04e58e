// Package wordlist modera textos contra una lista de palabras bloqueadas en YAML.
package wordlist

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File es el formato del archivo:
//
//	blocked_words:
//	  - spam
//	  - "compra ya"
type File struct {
	BlockedWords []string `yaml:"blocked_words"`
}

type Moderator struct {
	words []string
}

func New(words []string) *Moderator {
	m := &Moderator{}
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			m.words = append(m.words, w)
		}
	}
	return m
}

func Load(path string) (*Moderator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse word list %s: %w", path, err)
	}
	return New(f.BlockedWords), nil
}

// IsAllowed compara sin distinguir mayúsculas.
func (m *Moderator) IsAllowed(_ context.Context, text string) (bool, error) {
	lower := strings.ToLower(text)
	for _, w := range m.words {
		if strings.Contains(lower, w) {
			return false, nil
		}
	}
	return true, nil
}

func (m *Moderator) Len() int { return len(m.words) }
