// Package missioncontrol provides a minimal public API for embedding the
// task dependency engine in other Go programs.
//
// Most callers should drive the engine through the tool protocol (see
// internal/rpc and the mc serve command). This package exports only the
// essential types and constructors needed for programmatic use.
package missioncontrol

import (
	"os"
	"path/filepath"

	"github.com/MikeyBeez/mission-control/internal/config"
	"github.com/MikeyBeez/mission-control/internal/git"
	"github.com/MikeyBeez/mission-control/internal/graph"
	"github.com/MikeyBeez/mission-control/internal/mission"
	"github.com/MikeyBeez/mission-control/internal/storage/jsonl"
	"github.com/MikeyBeez/mission-control/internal/types"
)

// Core types
type (
	Task         = types.Task
	Status       = types.Status
	Metadata     = types.Metadata
	Clock        = types.Clock
	CreateParams = mission.CreateParams
	UpdatePatch  = mission.UpdatePatch
	Summary      = mission.Summary
	BlockedTask  = graph.BlockedTask

	MissionControl = mission.MissionControl
)

// Status constants
const (
	StatusTodo       = types.StatusTodo
	StatusInProgress = types.StatusInProgress
	StatusBlocked    = types.StatusBlocked
	StatusDone       = types.StatusDone
)

// DefaultTaskDirName is the directory holding the task logs
const DefaultTaskDirName = config.DefaultTaskDirName

// New opens the engine for the repository containing projectPath (or the
// path itself outside any repository), creating the task directory if
// needed.
func New(projectPath string) (*MissionControl, error) {
	return mission.New(projectPath, DefaultTaskDirName, nil)
}

// FindTaskDir resolves where the task directory for projectPath lives (repo
// root when inside a repository, otherwise the path itself). The directory
// is not created.
func FindTaskDir(projectPath string) string {
	root := git.New(projectPath, 0).RepoRoot()
	if root == "" {
		root = projectPath
	}
	abs, err := filepath.Abs(filepath.Join(root, DefaultTaskDirName))
	if err != nil {
		return filepath.Join(root, DefaultTaskDirName)
	}
	return abs
}

// Cwd returns the current working directory, falling back to "." on error.
// Convenience for the common New(Cwd()) call.
func Cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// StoreOptions re-exports the store tuning knobs for embedders
var (
	WithClock       = jsonl.WithClock
	WithVCS         = jsonl.WithVCS
	WithoutLock     = jsonl.WithoutLock
	WithLockTimeout = jsonl.WithLockTimeout
)
