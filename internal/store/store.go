// Package store keeps projects as YAML files in a data directory and
// implements gantt.Repository over them.
//
// Each project lives in <data dir>/<project id>.yaml. Writes hold an flock
// on <project id>.lock and replace the file with a rename, so a reader
// always sees either the old or the new project, never a mix.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/gantry/internal/errors"
	"github.com/Iron-Ham/gantry/internal/gantt"
	"github.com/Iron-Ham/gantry/internal/graph"
)

const (
	projectExt = ".yaml"
	lockExt    = ".lock"
	tmpExt     = ".tmp"
)

// FileStore is a gantt.Repository backed by a directory of YAML files.
type FileStore struct {
	dir  string
	wait bool
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithoutWaiting makes operations fail with ErrProjectLocked when another
// process holds a project's lock instead of blocking.
func WithoutWaiting() Option {
	return func(s *FileStore) {
		s.wait = false
	}
}

// New returns a FileStore over dir, creating the directory if needed.
func New(dir string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewStoreError("create data directory", err).WithPath(dir)
	}
	s := &FileStore{dir: dir, wait: true}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file of the given project.
func (s *FileStore) Path(projectID string) string {
	return filepath.Join(s.dir, projectID+projectExt)
}

func checkProjectID(projectID string) error {
	if projectID == "" || strings.ContainsAny(projectID, `/\`) || strings.HasPrefix(projectID, ".") {
		return errors.NewValidationError("invalid project id").WithField("project_id").WithValue(projectID)
	}
	return nil
}

// ListProjects returns the ids of every stored project, sorted.
func (s *FileStore) ListProjects(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCanceled, err.Error())
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.NewStoreError("list projects", err).WithPath(s.dir)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != projectExt || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, projectExt))
	}
	slices.Sort(ids)
	return ids, nil
}

// Get reads a whole project.
func (s *FileStore) Get(ctx context.Context, projectID string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCanceled, err.Error())
	}
	if err := checkProjectID(projectID); err != nil {
		return nil, err
	}

	var doc *Document
	err := s.withLock(projectID, func() error {
		var err error
		doc, err = s.read(projectID)
		return err
	})
	return doc, err
}

// Put writes a whole project, replacing any stored version.
func (s *FileStore) Put(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCanceled, err.Error())
	}
	if err := checkProjectID(doc.Project.ID); err != nil {
		return err
	}
	return s.withLock(doc.Project.ID, func() error {
		return s.write(doc.Project.ID, encode(doc))
	})
}

// LoadProject implements gantt.Repository.
func (s *FileStore) LoadProject(ctx context.Context, projectID string) (*gantt.Project, error) {
	doc, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &doc.Project, nil
}

// LoadProjectTasks implements gantt.Repository.
func (s *FileStore) LoadProjectTasks(ctx context.Context, projectID string) ([]gantt.TaskRecord, error) {
	doc, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

// LoadProjectDependencies implements gantt.Repository.
func (s *FileStore) LoadProjectDependencies(ctx context.Context, projectID string) ([]graph.DependencyEdge, error) {
	doc, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return doc.Dependencies, nil
}

// SaveProjectTasks replaces the stored tasks with the same ids. Every id
// must exist; if one does not, nothing is written.
func (s *FileStore) SaveProjectTasks(ctx context.Context, projectID string, tasks []gantt.TaskRecord) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCanceled, err.Error())
	}
	if err := checkProjectID(projectID); err != nil {
		return err
	}

	return s.withLock(projectID, func() error {
		f, err := s.readFile(projectID)
		if err != nil {
			return err
		}
		index := make(map[string]int, len(f.Tasks))
		for i, t := range f.Tasks {
			if _, dup := index[t.ID]; !dup {
				index[t.ID] = i
			}
		}
		for _, t := range tasks {
			i, ok := index[t.ID]
			if !ok {
				return errors.NewNotFoundError("task", t.ID)
			}
			f.Tasks[i] = encodeTask(t)
		}
		return s.write(projectID, f)
	})
}

func (s *FileStore) withLock(projectID string, fn func() error) error {
	lockPath := filepath.Join(s.dir, "."+projectID+lockExt)
	lock, err := acquireLock(lockPath, s.wait)
	if err != nil {
		if errors.Is(err, errors.ErrProjectLocked) {
			return errors.Wrapf(err, "project %s", projectID)
		}
		return errors.NewStoreError("acquire lock", err).WithProjectID(projectID).WithPath(lockPath)
	}
	defer func() { _ = lock.release() }()
	return fn()
}

func (s *FileStore) read(projectID string) (*Document, error) {
	f, err := s.readFile(projectID)
	if err != nil {
		return nil, err
	}
	doc, err := f.decode()
	if err != nil {
		return nil, errors.NewStoreError("decode project file", err).
			WithProjectID(projectID).WithPath(s.Path(projectID))
	}
	if doc.Project.ID == "" {
		doc.Project.ID = projectID
	}
	return doc, nil
}

func (s *FileStore) readFile(projectID string) (*projectFile, error) {
	path := s.Path(projectID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("project", projectID).WithCause(err)
		}
		return nil, errors.NewStoreError("read project file", err).WithProjectID(projectID).WithPath(path)
	}

	var f projectFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.NewStoreError("parse project file", err).WithProjectID(projectID).WithPath(path)
	}
	return &f, nil
}

// write replaces the project file atomically: the data goes to a temp file
// that is then renamed over the target. The caller holds the lock.
func (s *FileStore) write(projectID string, f *projectFile) error {
	target := s.Path(projectID)
	data, err := yaml.Marshal(f)
	if err != nil {
		return errors.NewStoreError("marshal project file", err).WithProjectID(projectID)
	}

	tmp := filepath.Join(s.dir, "."+projectID+projectExt+tmpExt)
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.NewStoreError("write temp file", err).WithProjectID(projectID).WithPath(tmp)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return errors.NewStoreError(fmt.Sprintf("rename %s", filepath.Base(tmp)), err).
			WithProjectID(projectID).WithPath(target)
	}
	return nil
}
