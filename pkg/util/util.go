package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML file and unmarshals it into a struct of type T.
func LoadConfig[T any](filepath string) (*T, error) {
	// 1. Read the file
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// 2. Initialize an empty instance of T
	var config T

	// 3. Unmarshal the YAML data into the struct
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	return &config, nil
}

// ResolvePath joins p onto root unless p is already absolute. An empty p
// yields def joined onto root.
func ResolvePath(root, p, def string) string {
	if p == "" {
		p = def
	}
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, filepath.FromSlash(p))
}

// NormalizeID upper-cases an identifier and strips all whitespace from it.
func NormalizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}, id)
}
