// Package catalog loads the job handlers the API may spread, with their
// call signatures and spread defaults, from a YAML file.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"redis-spread-queue/internal/spread"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

var ErrInvalidCatalog = errors.New("catalog: invalid handler catalog")

// Defaults apply to handlers that do not set their own spread options.
type Defaults struct {
	Duration time.Duration
	Method   spread.Method
}

type file struct {
	Handlers []entry `yaml:"handlers"`
}

type entry struct {
	Name             string `yaml:"name"`
	spread.Signature `yaml:",inline"`
	Duration         *int64 `yaml:"spread_duration"`
	Method           string `yaml:"spread_method"`
}

// Load reads the catalog at path.
func Load(path string, d Defaults) (*spread.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return Parse(data, d)
}

// Parse builds a registry from YAML. Unknown fields are rejected.
func Parse(data []byte, d Defaults) (*spread.Registry, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	r := spread.NewRegistry()
	for i, e := range f.Handlers {
		h, err := e.handler(d)
		if err != nil {
			return nil, fmt.Errorf("%w: handler %d (%q): %w", ErrInvalidCatalog, i, e.Name, err)
		}
		if err := r.Register(h); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
	}
	return r, nil
}

func (e entry) handler(d Defaults) (spread.Handler, error) {
	sig := e.Signature
	if sig.RequiredPositional < 0 || sig.OptionalPositional < 0 || sig.RequiredNamed < 0 || sig.OptionalNamed < 0 {
		return spread.Handler{}, errors.New("parameter counts must not be negative")
	}

	h := spread.Handler{
		Name:        e.Name,
		Signature:   sig,
		Duration:    d.Duration,
		HasDuration: true,
		Method:      d.Method,
	}
	if e.Duration != nil {
		if *e.Duration < 0 {
			return spread.Handler{}, fmt.Errorf("%w: spread_duration got %d", spread.ErrInvalidDuration, *e.Duration)
		}
		h.Duration = time.Duration(*e.Duration) * time.Second
	}
	if e.Method != "" {
		m, err := spread.ParseMethod(e.Method)
		if err != nil {
			return spread.Handler{}, err
		}
		h.Method = m
	}
	return h, nil
}
