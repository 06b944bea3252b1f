package domain

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigKey is the well-known store key under which the current
// configuration is persisted. Any value present at this key at startup is
// treated as authoritative.
const ConfigKey = "current"

// Configuration is the user's layout definition. The studio treats it as an
// opaque blob: it is validated for well-formedness on the way in, persisted
// verbatim, and handed to the generator untouched.
type Configuration struct {
	// Raw is the configuration source exactly as the user wrote it.
	Raw string `json:"raw"`
}

// NewConfiguration wraps raw source without validating it.
// Use ParseConfiguration when the input comes from an untrusted boundary.
func NewConfiguration(raw string) Configuration {
	return Configuration{Raw: raw}
}

// ParseConfiguration validates raw source and returns it as a Configuration.
// Input is accepted when it parses as YAML; since JSON is a YAML subset this
// covers both encodings the generator understands. Malformed input returns
// a *ConfigParseError.
func ParseConfiguration(raw string) (Configuration, error) {
	if strings.TrimSpace(raw) == "" {
		return Configuration{}, &ConfigParseError{Reason: "configuration is empty"}
	}

	var doc any
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return Configuration{}, &ConfigParseError{Reason: "invalid syntax", Err: err}
	}

	// A bare scalar ("hello") is valid YAML but can never describe a layout.
	if _, ok := doc.(map[string]any); !ok {
		return Configuration{}, &ConfigParseError{Reason: "configuration must be a mapping"}
	}

	return Configuration{Raw: raw}, nil
}

// Empty reports whether the configuration carries no source.
func (c Configuration) Empty() bool {
	return strings.TrimSpace(c.Raw) == ""
}
