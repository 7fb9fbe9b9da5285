package printer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options configures a print job.
type Options struct {
	// DocumentTitle names the printed document. Empty keeps the title of
	// the source document.
	DocumentTitle string `yaml:"document_title" json:"document_title,omitempty"`

	// MediaPrintStyle is CSS applied to the printed document inside
	// @media print, after the generated rules.
	MediaPrintStyle string `yaml:"media_print_style" json:"media_print_style,omitempty"`

	// Zoom is a CSS zoom value for the printed root element, such as
	// "1.5" or "80%".
	Zoom string `yaml:"zoom" json:"zoom,omitempty"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Zoom: "1"}
}

// LoadOptions reads options from a YAML file over the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read options %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse options %s: %w", path, err)
	}
	return opts, nil
}
