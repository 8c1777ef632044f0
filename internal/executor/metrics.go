package executor

import (
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK      = "ok"
	resultError   = "error"
	resultTimeout = "timeout"
)

var (
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockpanel_commands_total",
			Help: "Total number of docker commands executed",
		},
		[]string{"program", "subcommand", "result"},
	)

	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dockpanel_command_duration_seconds",
			Help:    "Docker command duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"program", "subcommand"},
	)
)

func observeCommand(cmd Command, result string, d time.Duration) {
	program := filepath.Base(cmd.Name)
	sub := Subcommand(cmd)
	commandsTotal.WithLabelValues(program, sub, result).Inc()
	commandDuration.WithLabelValues(program, sub).Observe(d.Seconds())
}

// Subcommand names the verb of a docker invocation for metric labels.
// "docker compose -f x up -d" yields "compose up".
func Subcommand(cmd Command) string {
	if len(cmd.Args) == 0 {
		return ""
	}
	if cmd.Args[0] != "compose" {
		return cmd.Args[0]
	}
	args := cmd.Args[1:]
	for i := 0; i < len(args); i++ {
		if args[i] == "-f" || args[i] == "--file" {
			i++
			continue
		}
		return "compose " + args[i]
	}
	return "compose"
}
