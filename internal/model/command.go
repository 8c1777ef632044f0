package model

import "fmt"

// ProjectCommand is a compose lifecycle action on a managed project.
type ProjectCommand string

const (
	ProjectStart   ProjectCommand = "up"
	ProjectStop    ProjectCommand = "down"
	ProjectRestart ProjectCommand = "restart"
	ProjectPull    ProjectCommand = "pull"
	ProjectLogs    ProjectCommand = "logs"
)

var ProjectCommands = []ProjectCommand{ProjectStart, ProjectStop, ProjectRestart, ProjectPull, ProjectLogs}

// ComposeProjectCommand is a compose lifecycle action addressed by compose
// file paths instead of a managed project name.
type ComposeProjectCommand string

const (
	ComposeStart   ComposeProjectCommand = "up"
	ComposeStop    ComposeProjectCommand = "down"
	ComposeRestart ComposeProjectCommand = "restart"
	ComposePull    ComposeProjectCommand = "pull"
	ComposeLogs    ComposeProjectCommand = "logs"
	ComposeDelete  ComposeProjectCommand = "delete"
)

var ComposeProjectCommands = []ComposeProjectCommand{
	ComposeStart, ComposeStop, ComposeRestart, ComposePull, ComposeLogs, ComposeDelete,
}

// ContainerCommand is a docker action on a single container.
type ContainerCommand string

const (
	ContainerStop    ContainerCommand = "stop"
	ContainerPause   ContainerCommand = "pause"
	ContainerRestart ContainerCommand = "restart"
	ContainerDelete  ContainerCommand = "delete"
)

var ContainerCommands = []ContainerCommand{ContainerStop, ContainerPause, ContainerRestart, ContainerDelete}

// LogTail is the number of log lines returned by the logs command.
const LogTail = "200"

// ComposeArgs returns the arguments following "docker compose -f <file>".
func (c ProjectCommand) ComposeArgs() ([]string, error) {
	switch c {
	case ProjectStart:
		return []string{"up", "-d"}, nil
	case ProjectStop:
		return []string{"down"}, nil
	case ProjectRestart:
		return []string{"restart"}, nil
	case ProjectPull:
		return []string{"pull"}, nil
	case ProjectLogs:
		return []string{"logs", "--tail", LogTail}, nil
	}
	return nil, fmt.Errorf("unknown project command %q", string(c))
}

// ComposeArgs returns the arguments following the "-f <file>" flags.
func (c ComposeProjectCommand) ComposeArgs() ([]string, error) {
	switch c {
	case ComposeStart:
		return []string{"up", "-d"}, nil
	case ComposeStop:
		return []string{"down"}, nil
	case ComposeRestart:
		return []string{"restart"}, nil
	case ComposePull:
		return []string{"pull"}, nil
	case ComposeLogs:
		return []string{"logs", "--tail", LogTail}, nil
	case ComposeDelete:
		return []string{"down", "--remove-orphans"}, nil
	}
	return nil, fmt.Errorf("unknown compose project command %q", string(c))
}

// DockerArgs returns the docker arguments for acting on container id.
func (c ContainerCommand) DockerArgs(id string) ([]string, error) {
	switch c {
	case ContainerStop:
		return []string{"stop", id}, nil
	case ContainerPause:
		return []string{"pause", id}, nil
	case ContainerRestart:
		return []string{"restart", id}, nil
	case ContainerDelete:
		return []string{"rm", "-f", id}, nil
	}
	return nil, fmt.Errorf("unknown container command %q", string(c))
}

// ParseProjectCommand accepts the compose verbs as well as "start" and "stop".
func ParseProjectCommand(s string) (ProjectCommand, bool) {
	switch s {
	case "start":
		return ProjectStart, true
	case "stop":
		return ProjectStop, true
	}
	for _, c := range ProjectCommands {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func ParseComposeProjectCommand(s string) (ComposeProjectCommand, bool) {
	switch s {
	case "start":
		return ComposeStart, true
	case "stop":
		return ComposeStop, true
	}
	for _, c := range ComposeProjectCommands {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func ParseContainerCommand(s string) (ContainerCommand, bool) {
	for _, c := range ContainerCommands {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// DeleteMode selects whether deleting a project also tears down its containers.
type DeleteMode string

const (
	DeleteOnly       DeleteMode = "only-delete"
	DeleteAndCleanup DeleteMode = "delete-and-cleanup"
)

func (m DeleteMode) Cleanup() bool {
	return m == DeleteAndCleanup
}
