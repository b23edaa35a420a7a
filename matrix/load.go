package matrix

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML matrix file and unmarshals it into a File.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("matrix file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read matrix file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML matrix data.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid matrix YAML: %w", err)
	}
	return &f, nil
}
