// Package config loads replay scripts for the actionz CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/actionz"
)

// Script describes a timed interaction with one rate adapter.
// Zero values mean "unspecified" and select the adapter defaults.
type Script struct {
	Kind        string        `json:"kind" yaml:"kind" toml:"kind"`
	On          string        `json:"on" yaml:"on" toml:"on"`
	DurationMS  int64         `json:"duration_ms" yaml:"duration_ms" toml:"duration_ms"`
	Count       int           `json:"count" yaml:"count" toml:"count"`
	Value       string        `json:"value" yaml:"value" toml:"value"`
	Events      []Event       `json:"events" yaml:"events" toml:"events"`
	Reconfigure []Reconfigure `json:"reconfigure" yaml:"reconfigure" toml:"reconfigure"`
}

// Event is one native event fired at AtMS milliseconds into the replay.
// An empty Type fires the adapter's configured event. For "input" events a
// string Value also becomes the element's value.
type Event struct {
	AtMS  int64  `json:"at_ms" yaml:"at_ms" toml:"at_ms"`
	Type  string `json:"type" yaml:"type" toml:"type"`
	Value any    `json:"value" yaml:"value" toml:"value"`
}

// Reconfigure replaces the adapter configuration at AtMS.
type Reconfigure struct {
	AtMS       int64  `json:"at_ms" yaml:"at_ms" toml:"at_ms"`
	On         string `json:"on" yaml:"on" toml:"on"`
	DurationMS int64  `json:"duration_ms" yaml:"duration_ms" toml:"duration_ms"`
	Count      int    `json:"count" yaml:"count" toml:"count"`
}

// ErrNoKind is returned for a script without an adapter kind.
var ErrNoKind = errors.New("script has no kind")

// Load reads a script file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Script, error) {
	var s Script
	if path == "" {
		return s, fmt.Errorf("empty script path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	return Parse(b, filepath.Ext(path))
}

// Parse decodes a script in the format named by ext and validates it.
func Parse(b []byte, ext string) (Script, error) {
	var s Script
	switch ext = strings.ToLower(ext); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("parsing yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("parsing json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("parsing toml: %w", err)
		}
	default:
		return s, fmt.Errorf("unsupported script extension: %s", ext)
	}
	return s, s.Validate()
}

// Validate checks the kind and that no timestamp is negative.
func (s Script) Validate() error {
	if s.Kind == "" {
		return ErrNoKind
	}
	if _, err := actionz.ParseKind(s.Kind); err != nil {
		return err
	}
	if s.DurationMS < 0 || s.Count < 0 {
		return fmt.Errorf("negative duration_ms or count")
	}
	for i, ev := range s.Events {
		if ev.AtMS < 0 {
			return fmt.Errorf("event %d: negative at_ms %d", i, ev.AtMS)
		}
	}
	for i, rc := range s.Reconfigure {
		if rc.AtMS < 0 {
			return fmt.Errorf("reconfigure %d: negative at_ms %d", i, rc.AtMS)
		}
	}
	return nil
}

// AdapterKind returns the parsed kind. Call Validate first.
func (s Script) AdapterKind() actionz.Kind {
	k, _ := actionz.ParseKind(s.Kind)
	return k
}

// AdapterConfig returns the initial adapter configuration.
func (s Script) AdapterConfig() actionz.AdapterConfig {
	return actionz.AdapterConfig{
		On:       s.On,
		Duration: time.Duration(s.DurationMS) * time.Millisecond,
		Count:    s.Count,
	}
}

// AdapterConfig returns the configuration this step switches to.
func (r Reconfigure) AdapterConfig() actionz.AdapterConfig {
	return actionz.AdapterConfig{
		On:       r.On,
		Duration: time.Duration(r.DurationMS) * time.Millisecond,
		Count:    r.Count,
	}
}

// At returns the offset of the event from the start of the replay.
func (e Event) At() time.Duration {
	return time.Duration(e.AtMS) * time.Millisecond
}

// At returns the offset of the step from the start of the replay.
func (r Reconfigure) At() time.Duration {
	return time.Duration(r.AtMS) * time.Millisecond
}
