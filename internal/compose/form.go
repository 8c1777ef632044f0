package compose

import (
	"fmt"
	"strings"
)

// KeyValue is one environment entry of a service form.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ServiceForm is the editable view of one compose service.
type ServiceForm struct {
	Name          string        `json:"name"`
	Image         string        `json:"image,omitempty"`
	ContainerName string        `json:"container_name,omitempty"`
	Ports         []string      `json:"ports,omitempty"`
	Environment   []KeyValue    `json:"environment,omitempty"`
	Volumes       []string      `json:"volumes,omitempty"`
	Command       string        `json:"command,omitempty"`
	Restart       RestartPolicy `json:"restart,omitempty"`
	DependsOn     []string      `json:"depends_on,omitempty"`
	Networks      []string      `json:"networks,omitempty"`
}

// FormData is the editable view of a compose document.
type FormData struct {
	Name     string        `json:"name,omitempty"`
	Services []ServiceForm `json:"services"`
	Networks []string      `json:"networks,omitempty"`
	Volumes  []string      `json:"volumes,omitempty"`
}

// ToFormData flattens f into form fields. Services are ordered by name.
func ToFormData(f File) FormData {
	services := f.Services()
	form := FormData{
		Services: make([]ServiceForm, 0, len(services)),
		Networks: keyList(f["networks"]),
		Volumes:  keyList(f["volumes"]),
	}

	for _, name := range sortedKeys(services) {
		svc, _ := services[name].(map[string]any)
		restart, _ := scalarString(svc["restart"])
		form.Services = append(form.Services, ServiceForm{
			Name:          name,
			Image:         stringField(svc, "image"),
			ContainerName: stringField(svc, "container_name"),
			Ports:         stringList(svc["ports"]),
			Environment:   envList(svc["environment"]),
			Volumes:       stringList(svc["volumes"]),
			Command:       commandString(svc["command"]),
			Restart:       RestartPolicy(restart),
			DependsOn:     keyList(svc["depends_on"]),
			Networks:      keyList(svc["networks"]),
		})
	}
	return form
}

// FromFormData rebuilds a compose document from form, starting from
// original so unmodeled keys are kept. Empty form fields remove the key.
func FromFormData(form FormData, original File) File {
	next := File{}
	for k, v := range original {
		next[k] = v
	}
	origServices := original.Services()

	services := map[string]any{}
	for _, item := range form.Services {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		orig, _ := origServices[name].(map[string]any)
		services[name] = mergeService(item, orig)
	}

	setOrDelete(next, "services", services, len(services) > 0)

	networks := namedMap(form.Networks, mapping(original["networks"]))
	setOrDelete(next, "networks", networks, networks != nil)

	volumes := namedMap(form.Volumes, mapping(original["volumes"]))
	setOrDelete(next, "volumes", volumes, volumes != nil)

	return next
}

// FormDataToYAML is FromFormData followed by Marshal.
func FormDataToYAML(form FormData, original File) (string, error) {
	out, err := Marshal(FromFormData(form, original))
	if err != nil {
		return "", fmt.Errorf("render form: %w", err)
	}
	return out, nil
}

func mergeService(item ServiceForm, original map[string]any) map[string]any {
	next := map[string]any{}
	for k, v := range original {
		next[k] = v
	}

	setString := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			next[key] = v
		} else {
			delete(next, key)
		}
	}
	setList := func(key string, values []string) {
		if list := cleanList(values); list != nil {
			next[key] = anyList(list)
		} else {
			delete(next, key)
		}
	}

	setString("image", item.Image)
	setString("container_name", item.ContainerName)
	setString("command", item.Command)
	setList("ports", item.Ports)
	setList("volumes", item.Volumes)
	setList("depends_on", item.DependsOn)
	setList("networks", item.Networks)

	if env := envMap(item.Environment); env != nil {
		next["environment"] = env
	} else {
		delete(next, "environment")
	}

	if item.Restart != "" {
		next["restart"] = string(item.Restart)
	} else {
		delete(next, "restart")
	}
	return next
}

func setOrDelete(f File, key string, value any, keep bool) {
	if keep {
		f[key] = value
		return
	}
	delete(f, key)
}

// namedMap builds a name-keyed mapping, reusing original definitions.
func namedMap(names []string, original map[string]any) map[string]any {
	list := cleanList(names)
	if list == nil {
		return nil
	}
	out := make(map[string]any, len(list))
	for _, name := range list {
		if v, ok := original[name]; ok && v != nil {
			out[name] = v
		} else {
			out[name] = map[string]any{}
		}
	}
	return out
}

// cleanList trims values, drops empties and duplicates. It returns nil when
// nothing is left.
func cleanList(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// anyList converts values to the []any shape of a decoded YAML sequence.
func anyList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func envMap(list []KeyValue) map[string]any {
	out := map[string]any{}
	for _, kv := range list {
		key := strings.TrimSpace(kv.Key)
		if key == "" {
			continue
		}
		out[key] = kv.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapping(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func stringField(m map[string]any, key string) string {
	s, _ := scalarString(m[key])
	return s
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}

// stringList accepts a sequence or a single scalar.
func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := scalarString(item); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s, ok := scalarString(v); ok && s != "" {
			return []string{s}
		}
	}
	return nil
}

// keyList accepts a sequence of names or a mapping keyed by name.
func keyList(v any) []string {
	if m, ok := v.(map[string]any); ok {
		keys := sortedKeys(m)
		if len(keys) == 0 {
			return nil
		}
		return keys
	}
	return stringList(v)
}

// envList accepts the mapping form or the "KEY=value" sequence form.
func envList(v any) []KeyValue {
	switch t := v.(type) {
	case map[string]any:
		out := make([]KeyValue, 0, len(t))
		for _, k := range sortedKeys(t) {
			val, _ := scalarString(t[k])
			out = append(out, KeyValue{Key: k, Value: val})
		}
		return out
	case []any:
		var out []KeyValue
		for _, item := range t {
			s, ok := scalarString(item)
			if !ok {
				continue
			}
			key, value, _ := strings.Cut(s, "=")
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			out = append(out, KeyValue{Key: key, Value: strings.TrimSpace(value)})
		}
		return out
	}
	return nil
}

func commandString(v any) string {
	if list, ok := v.([]any); ok {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			s, _ := scalarString(item)
			parts = append(parts, s)
		}
		return strings.Join(parts, " ")
	}
	s, _ := scalarString(v)
	return s
}
