package dict

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ErrParse wraps malformed dictionary files. Callers degrade to an empty
// dictionary instead of propagating it as a crash.
var ErrParse = errors.New("parse dictionary file")

// Config is one immutable dictionary snapshot: hotwords and an initial
// prompt biasing the speech model, plus compiled replacement rules applied
// to its output. A session reads exactly one snapshot end to end.
type Config struct {
	hotwords      []string
	initialPrompt string
	rules         []rule
}

// fileFormat mirrors the on-disk JSON document: hotwords is a single
// space-separated string, replacement keys are matched case-insensitively.
type fileFormat struct {
	Hotwords      string            `json:"hotwords"`
	Replacements  map[string]string `json:"replacements"`
	InitialPrompt string            `json:"initial_prompt"`
}

func Empty() *Config {
	return &Config{}
}

// New builds a snapshot from raw settings. Hotwords are split on
// whitespace, deduplicated, and keep their first-seen order. Replacement
// keys that tokenize to nothing (empty or punctuation-only) are dropped.
func New(hotwords string, replacements map[string]string, initialPrompt string) *Config {
	cfg := &Config{
		hotwords:      splitHotwords(hotwords),
		initialPrompt: strings.TrimSpace(initialPrompt),
		rules:         compileRules(replacements),
	}
	return cfg
}

// Load reads the dictionary file at path. A missing file yields an empty
// dictionary and no error; a malformed file yields an empty dictionary and
// an error wrapping ErrParse.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Empty(), nil
		}
		return Empty(), fmt.Errorf("read dictionary file: %w", err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return Empty(), fmt.Errorf("%w: %v", ErrParse, err)
	}

	return New(ff.Hotwords, ff.Replacements, ff.InitialPrompt), nil
}

func (c *Config) Hotwords() []string {
	out := make([]string, len(c.hotwords))
	copy(out, c.hotwords)
	return out
}

// HotwordsString returns the hotwords formatted for the engine's bias input.
func (c *Config) HotwordsString() string {
	return strings.Join(c.hotwords, " ")
}

func (c *Config) InitialPrompt() string {
	return c.initialPrompt
}

func (c *Config) ReplacementCount() int {
	return len(c.rules)
}

func (c *Config) IsEmpty() bool {
	return len(c.hotwords) == 0 && len(c.rules) == 0 && c.initialPrompt == ""
}

func splitHotwords(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, w := range fields {
		key := strings.ToLower(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	return out
}
