// Package compose reads and rewrites docker-compose documents.
//
// Documents are kept as generic YAML mappings so keys this package does not
// model survive a parse and rewrite untouched.
package compose

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is a decoded compose document.
type File map[string]any

// ErrNotMapping is returned when a document does not decode to a mapping.
var ErrNotMapping = errors.New("compose document is not a mapping")

// RestartPolicy values accepted by compose.
type RestartPolicy string

const (
	RestartNo            RestartPolicy = "no"
	RestartAlways        RestartPolicy = "always"
	RestartOnFailure     RestartPolicy = "on-failure"
	RestartUnlessStopped RestartPolicy = "unless-stopped"
)

func (p RestartPolicy) Valid() bool {
	switch p {
	case RestartNo, RestartAlways, RestartOnFailure, RestartUnlessStopped:
		return true
	}
	return false
}

// Parse decodes content into a File.
func Parse(content string) (File, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parse compose yaml: %w", err)
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, ErrNotMapping
	}
	return File(m), nil
}

// Marshal encodes f with a four space indent and a trailing newline.
func Marshal(f File) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(4)
	if err := enc.Encode(map[string]any(f)); err != nil {
		return "", fmt.Errorf("encode compose yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode compose yaml: %w", err)
	}
	out := buf.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

// Services returns the services mapping, or nil when absent or malformed.
func (f File) Services() map[string]any {
	m, _ := f["services"].(map[string]any)
	return m
}

// ServiceNames returns the service names in sorted order.
func (f File) ServiceNames() []string {
	return sortedKeys(f.Services())
}

// serviceImages is the minimal shape needed to find image references.
type serviceImages struct {
	Services map[string]struct {
		Image string `yaml:"image"`
	} `yaml:"services"`
}

// ImageRefs returns every image referenced by the services of content.
// A reference without a tag also yields its ":latest" form.
func ImageRefs(content string) ([]string, error) {
	var doc serviceImages
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parse compose yaml: %w", err)
	}

	var refs []string
	for _, name := range sortedKeys(doc.Services) {
		image := strings.TrimSpace(doc.Services[name].Image)
		if image == "" {
			continue
		}
		refs = append(refs, image)
		if !HasTag(image) {
			refs = append(refs, image+":latest")
		}
	}
	return refs, nil
}

// HasTag reports whether ref names a tag or digest. A colon before the
// last "/" belongs to a registry port, as in "registry:5000/app".
func HasTag(ref string) bool {
	last := ref[strings.LastIndex(ref, "/")+1:]
	return strings.ContainsAny(last, ":@")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
