package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Sink types accepted in the reporters file.
const (
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
	TypeHTTP   = "http"
)

// PublisherConfig is one reporters file entry. Only the block named by
// Type is read; the others are ignored.
type PublisherConfig struct {
	ID      string                 `json:"id" yaml:"id"`
	Type    string                 `json:"type" yaml:"type"`
	Enabled *bool                  `json:"enabled" yaml:"enabled"`
	SQS     *SQSPublisherConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSPublisherConfig    `json:"sns" yaml:"sns"`
	PubSub  *PubSubPublisherConfig `json:"pubsub" yaml:"pubsub"`
	HTTP    *HTTPPublisherConfig   `json:"http" yaml:"http"`
}

// EnabledValue reports whether the entry is enabled; unset means enabled.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// sinkConfig is a per-type settings block.
type sinkConfig interface {
	normalize()
	validate() error
}

func (cfg *PublisherConfig) sink() (sinkConfig, error) {
	var (
		block sinkConfig
		isNil bool
	)
	switch cfg.Type {
	case TypeSQS:
		block, isNil = cfg.SQS, cfg.SQS == nil
	case TypeSNS:
		block, isNil = cfg.SNS, cfg.SNS == nil
	case TypePubSub:
		block, isNil = cfg.PubSub, cfg.PubSub == nil
	case TypeHTTP:
		block, isNil = cfg.HTTP, cfg.HTTP == nil
	case "":
		return nil, errors.New("type is required")
	default:
		return nil, fmt.Errorf("unknown type %q", cfg.Type)
	}
	if isNil {
		return nil, fmt.Errorf("%s settings block is required", cfg.Type)
	}
	return block, nil
}

// prepare trims the entry in place and checks it is usable.
func (cfg *PublisherConfig) prepare() error {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	block, err := cfg.sink()
	if err != nil {
		return fmt.Errorf("reporter %q: %w", cfg.ID, err)
	}
	block.normalize()
	if err := block.validate(); err != nil {
		return fmt.Errorf("reporter %q: %w", cfg.ID, err)
	}
	return nil
}

// Reporters is the parsed reporters file, in file order.
type Reporters struct {
	entries []PublisherConfig
}

// LoadReporters reads a YAML or JSON reporters file from fs.
func LoadReporters(fs afero.Fs, path string) (*Reporters, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("reporters file path is empty")
	}
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read reporters file: %w", err)
	}

	var doc struct {
		Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(raw, &doc)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(raw, &doc)
	default:
		return nil, fmt.Errorf("reporters file extension %q not supported (expected .yaml, .yml or .json)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode reporters file: %w", err)
	}
	if len(doc.Publishers) == 0 {
		return nil, errors.New("reporters file contains no publishers entries")
	}

	seen := make(map[string]bool, len(doc.Publishers))
	for i := range doc.Publishers {
		cfg := &doc.Publishers[i]
		if err := cfg.prepare(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if seen[cfg.ID] {
			return nil, fmt.Errorf("duplicate reporter id %q", cfg.ID)
		}
		seen[cfg.ID] = true
	}
	return &Reporters{entries: doc.Publishers}, nil
}

// ByID returns the entry with the given id.
func (r *Reporters) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	id = strings.TrimSpace(id)
	for _, cfg := range r.entries {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return PublisherConfig{}, false
}

// Enabled returns the enabled entries in file order.
func (r *Reporters) Enabled() []PublisherConfig {
	if r == nil {
		return nil
	}
	var out []PublisherConfig
	for _, cfg := range r.entries {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}
