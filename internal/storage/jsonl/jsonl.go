// Package jsonl implements the task store over two line-delimited JSON
// files: an active log that is rewritten in full on every mutation, and an
// append-only archive. The format is deliberately git-friendly — one record
// per line so merges and diffs stay readable.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/MikeyBeez/mission-control/internal/debug"
	"github.com/MikeyBeez/mission-control/internal/git"
	"github.com/MikeyBeez/mission-control/internal/types"
)

const (
	// TasksFile is the active log
	TasksFile = "tasks.jsonl"
	// ArchiveFile is the append-only archive log
	ArchiveFile = "archive.jsonl"

	lockFile = ".tasks.lock"
)

// ErrNotFound is returned by Get when no active task has the requested id
var ErrNotFound = errors.New("task not found")

// VCS is the slice of the version-control adapter the store consumes
type VCS interface {
	RepoRoot() string
	CurrentBranch() string
	CurrentShortCommit() string
	CommitPath(path, message string) bool
}

// Store persists tasks under a single task directory. Files are never held
// open across calls; every operation reads, computes, and rewrites.
type Store struct {
	dir         string
	vcs         VCS
	clock       types.Clock
	useLock     bool
	lockTimeout time.Duration
}

// Option configures a Store
type Option func(*Store)

// WithClock injects the timestamp source (tests pass a fake)
func WithClock(c types.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithVCS injects the version-control adapter
func WithVCS(v VCS) Option {
	return func(s *Store) { s.vcs = v }
}

// WithoutLock disables the advisory flock around active-file rewrites
func WithoutLock() Option {
	return func(s *Store) { s.useLock = false }
}

// WithLockTimeout bounds how long Save waits for the advisory lock
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// Open creates a store rooted at the repository containing projectPath (or
// projectPath itself when there is no repository), creating the task
// directory, .gitkeep, and an empty active log as needed.
func Open(projectPath, dirName string, opts ...Option) (*Store, error) {
	s := &Store{
		clock:       types.SystemClock{},
		useLock:     true,
		lockTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.vcs == nil {
		s.vcs = git.New(projectPath, 0)
	}

	root := s.vcs.RepoRoot()
	if root == "" {
		root = projectPath
	}
	abs, err := filepath.Abs(filepath.Join(root, dirName))
	if err != nil {
		return nil, fmt.Errorf("resolving task directory: %w", err)
	}
	s.dir = abs

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating task directory: %w", err)
	}
	// .gitkeep so the directory is tracked even while empty
	keep := filepath.Join(s.dir, ".gitkeep")
	if _, err := os.Stat(keep); os.IsNotExist(err) {
		if err := os.WriteFile(keep, nil, 0o644); err != nil {
			return nil, fmt.Errorf("creating .gitkeep: %w", err)
		}
	}
	tasksPath := s.tasksPath()
	if _, err := os.Stat(tasksPath); os.IsNotExist(err) {
		if err := os.WriteFile(tasksPath, nil, 0o644); err != nil {
			return nil, fmt.Errorf("creating %s: %w", TasksFile, err)
		}
	}
	return s, nil
}

// Dir returns the absolute path of the task directory
func (s *Store) Dir() string { return s.dir }

func (s *Store) tasksPath() string   { return filepath.Join(s.dir, TasksFile) }
func (s *Store) archivePath() string { return filepath.Join(s.dir, ArchiveFile) }

// LoadAll reads the active log in file order. Malformed lines and records
// that fail validation are skipped, not fatal — partial recovery after a bad
// merge is expected behavior.
func (s *Store) LoadAll() ([]*types.Task, error) {
	return readTasks(s.tasksPath())
}

// LoadArchive reads the archive log, with the same lenient line handling as
// LoadAll.
func (s *Store) LoadArchive() ([]*types.Task, error) {
	return readTasks(s.archivePath())
}

func readTasks(path string) ([]*types.Task, error) {
	f, err := os.Open(path) // #nosec G304 - path derived from the task directory
	if err != nil {
		if os.IsNotExist(err) {
			return []*types.Task{}, nil
		}
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	tasks := []*types.Task{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var task types.Task
		if err := json.Unmarshal(line, &task); err != nil {
			debug.Logf("%s line %d: skipping malformed record: %v", filepath.Base(path), lineNum, err)
			continue
		}
		task.SetDefaults()
		if err := task.Validate(); err != nil {
			debug.Logf("%s line %d: skipping invalid record: %v", filepath.Base(path), lineNum, err)
			continue
		}
		tasks = append(tasks, &task)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return tasks, nil
}

// Get returns the active task with the given id, or ErrNotFound
func (s *Store) Get(id string) (*types.Task, error) {
	tasks, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Save upserts the task keyed by id: an existing record is replaced in place
// (keeping its insertion index), a new record is appended. Version-control
// metadata and the update timestamp are refreshed before the write; the
// creation timestamp is set only once.
func (s *Store) Save(task *types.Task) error {
	if task.ID == "" {
		return fmt.Errorf("cannot save task without id")
	}

	now := types.FormatTimestamp(s.clock.Now())
	task.Metadata.Branch = s.vcs.CurrentBranch()
	task.Metadata.CommitHash = s.vcs.CurrentShortCommit()
	task.Metadata.UpdatedAt = now
	if task.Metadata.CreatedAt == "" {
		task.Metadata.CreatedAt = now
	}

	unlock, err := s.acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	tasks, err := s.LoadAll()
	if err != nil {
		return err
	}
	replaced := false
	for i, t := range tasks {
		if t.ID == task.ID {
			tasks[i] = task
			replaced = true
			break
		}
	}
	if !replaced {
		tasks = append(tasks, task)
	}
	return writeTasksAtomic(s.tasksPath(), tasks)
}

// Delete removes the task from the active log. Returns false when no active
// task has the id.
func (s *Store) Delete(id string) (bool, error) {
	unlock, err := s.acquireLock()
	if err != nil {
		return false, err
	}
	defer unlock()
	return s.deleteLocked(id)
}

func (s *Store) deleteLocked(id string) (bool, error) {
	tasks, err := s.LoadAll()
	if err != nil {
		return false, err
	}
	kept := tasks[:0]
	found := false
	for _, t := range tasks {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return false, nil
	}
	if err := writeTasksAtomic(s.tasksPath(), kept); err != nil {
		return false, err
	}
	return true, nil
}

// Archive appends the current active record to the archive log, then removes
// it from the active log. The record archived is whatever is active at the
// moment of the call.
func (s *Store) Archive(id string) (bool, error) {
	unlock, err := s.acquireLock()
	if err != nil {
		return false, err
	}
	defer unlock()

	task, err := s.Get(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	line, err := json.Marshal(task)
	if err != nil {
		return false, fmt.Errorf("encoding task %s: %w", id, err)
	}
	f, err := os.OpenFile(s.archivePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) // #nosec G304
	if err != nil {
		return false, fmt.Errorf("opening archive: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return false, fmt.Errorf("appending to archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("closing archive: %w", err)
	}

	return s.deleteLocked(id)
}

// Commit records the task directory with the version-control tool
func (s *Store) Commit(message string) bool {
	return s.vcs.CommitPath(s.dir, message)
}

// acquireLock takes the advisory flock guarding active-file rewrites.
// The lock is an extra safety net, never a requirement: if the lock file
// cannot be created at all we proceed unlocked, but a lock visibly held by
// another writer is an error rather than a silent race.
func (s *Store) acquireLock() (func(), error) {
	if !s.useLock {
		return func() {}, nil
	}
	lock := flock.New(filepath.Join(s.dir, lockFile))
	deadline := time.Now().Add(s.lockTimeout)
	for {
		locked, err := lock.TryLock()
		if err != nil {
			debug.Logf("advisory lock unavailable, proceeding unlocked: %v", err)
			return func() {}, nil
		}
		if locked {
			return func() { _ = lock.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("another writer holds %s", lockFile)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// writeTasksAtomic serializes tasks one JSON object per line and replaces the
// target file via temp-file-and-rename so readers never observe a partial
// write.
func writeTasksAtomic(path string, tasks []*types.Task) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, t := range tasks {
		if err := enc.Encode(t); err != nil {
			tmp.Close()
			return fmt.Errorf("encoding task %s: %w", t.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	tmpPath = ""
	return nil
}
