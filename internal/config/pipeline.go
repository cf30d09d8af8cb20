package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pipeline is the on-disk description of a transform chain:
//
//	transforms:
//	  - moveFirstGoodParagraphUp
type Pipeline struct {
	Transforms []string `yaml:"transforms"`
}

// LoadPipeline reads a pipeline file. An empty transform list is an error.
func LoadPipeline(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read pipeline file: %w", err)
	}
	return ParsePipeline(data)
}

// ParsePipeline decodes pipeline YAML.
func ParsePipeline(data []byte) (Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Pipeline{}, fmt.Errorf("parse pipeline file: %w", err)
	}
	if len(p.Transforms) == 0 {
		return Pipeline{}, fmt.Errorf("pipeline file lists no transforms")
	}
	return p, nil
}
