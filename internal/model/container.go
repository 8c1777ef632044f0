package model

import "strings"

// ContainerState is the classified form of the free-text docker status.
type ContainerState string

const (
	ContainerRunning    ContainerState = "running"
	ContainerExited     ContainerState = "exited"
	ContainerRestarting ContainerState = "restarting"
	ContainerPaused     ContainerState = "paused"
	ContainerCreated    ContainerState = "created"
	ContainerDead       ContainerState = "dead"
	ContainerOther      ContainerState = "other"
)

// ContainerStates lists every state in classification priority order.
var ContainerStates = []ContainerState{
	ContainerRunning,
	ContainerExited,
	ContainerRestarting,
	ContainerPaused,
	ContainerCreated,
	ContainerDead,
	ContainerOther,
}

// statusProbes are checked in order; the first substring found wins.
// Docker reports running containers as "Up 3 hours".
var statusProbes = []struct {
	substr string
	state  ContainerState
}{
	{"up", ContainerRunning},
	{"exited", ContainerExited},
	{"restarting", ContainerRestarting},
	{"paused", ContainerPaused},
	{"created", ContainerCreated},
	{"dead", ContainerDead},
}

// ClassifyStatus maps a docker status string to a ContainerState.
func ClassifyStatus(status string) ContainerState {
	s := strings.ToLower(status)
	for _, p := range statusProbes {
		if strings.Contains(s, p.substr) {
			return p.state
		}
	}
	return ContainerOther
}

// ParseContainerState accepts a state name, returning false for unknown values.
func ParseContainerState(s string) (ContainerState, bool) {
	for _, st := range ContainerStates {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

type Container struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Image              string         `json:"image"`
	Command            string         `json:"command,omitempty"`
	Status             string         `json:"status"`
	State              ContainerState `json:"state"`
	CreatedAt          string         `json:"created_at"`
	Ports              string         `json:"ports"`
	ProjectName        string         `json:"project_name,omitempty"`
	ComposeConfigFiles []string       `json:"compose_config_files,omitempty"`
	IsManagedProject   bool           `json:"is_managed_project"`
}

// ProjectRow aggregates the containers of one compose project. Rows with an
// empty ProjectName hold containers that carry no compose label.
type ProjectRow struct {
	Key                string      `json:"key"`
	ProjectName        string      `json:"project_name,omitempty"`
	Containers         []Container `json:"containers"`
	ComposeConfigFiles []string    `json:"compose_config_files"`
	IsManagedProject   bool        `json:"is_managed_project"`
	RunningCount       int         `json:"running_count"`
	Total              int         `json:"total"`
}

// ProjectStatus counts the containers of a managed project.
type ProjectStatus struct {
	RunningCount int `json:"running_count"`
	Total        int `json:"total"`
}
