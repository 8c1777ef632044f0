package docker

import (
	"path/filepath"
	"strings"
)

// Compose labels set by docker compose on every container it creates.
const (
	LabelComposeProject     = "com.docker.compose.project"
	LabelComposeConfigFiles = "com.docker.compose.project.config_files"
)

// ParseLabels parses the "k1=v1,k2=v2" label string printed by docker ps.
// The first "=" splits key from value. Segments without "=" or with an
// empty key are skipped.
func ParseLabels(s string) map[string]string {
	labels := make(map[string]string)
	for _, seg := range strings.Split(s, ",") {
		seg = strings.TrimSpace(seg)
		key, value, ok := strings.Cut(seg, "=")
		if !ok || key == "" {
			continue
		}
		labels[key] = value
	}
	return labels
}

// ConfigFiles returns the compose file paths recorded in labels.
//
// docker joins several -f files with commas, which also separates labels,
// so the segments after the config_files label belong to it while they are
// plain paths. Compose records absolute paths; any other segment holding
// "=" is the next label and ends the list.
func ConfigFiles(raw string) []string {
	var files []string
	collecting := false
	for _, seg := range strings.Split(raw, ",") {
		seg = strings.TrimSpace(seg)
		key, value, ok := strings.Cut(seg, "=")
		switch {
		case ok && key == LabelComposeConfigFiles:
			collecting = true
			if v := strings.TrimSpace(value); v != "" {
				files = append(files, v)
			}
		case !collecting || seg == "":
		case !ok || filepath.IsAbs(seg):
			files = append(files, seg)
		default:
			collecting = false
		}
	}
	return files
}
