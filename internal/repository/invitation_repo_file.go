package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"
)

var _ InvitationRepository = &InvitationFileRepository{}

type InvitationFileRepository struct {
	fileName    string
	logger      *slog.Logger
	invitations map[string]string

	watcher *fsnotify.Watcher

	mx sync.RWMutex
}

func NewFileInvitationRepo(fileName string) *InvitationFileRepository {
	r := &InvitationFileRepository{
		logger:   slog.Default().With("logger", "invitations_file"),
		fileName: filepath.Clean(fileName),
		mx:       sync.RWMutex{},
	}

	r.invitations = r.load()

	return r
}

// load never fails: a missing or unreadable document is an empty one.
func (r *InvitationFileRepository) load() map[string]string {
	res := make(map[string]string)

	dat, err := os.ReadFile(r.fileName)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Error("error reading invitations file", slog.Any("error", err))
		}

		return res
	}

	if err := json.Unmarshal(dat, &res); err != nil || res == nil {
		r.logger.Debug("invitations file is not a valid document, starting empty")

		return make(map[string]string)
	}

	return res
}

func (r *InvitationFileRepository) save(m map[string]string) error {
	dat, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.fileName)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(r.fileName)+".*")
	if err != nil {
		return err
	}

	if _, err := f.Write(dat); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())

		return err
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())

		return err
	}

	return os.Rename(f.Name(), r.fileName)
}

// reload reads under the write lock so it can't replace a newer map set by Create.
func (r *InvitationFileRepository) reload() {
	r.mx.Lock()
	r.invitations = r.load()
	r.mx.Unlock()
}

func (r *InvitationFileRepository) Start() error {
	r.reload()

	dir := filepath.Dir(r.fileName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var err error
	r.watcher, err = fsnotify.NewWatcher()

	if err != nil {
		return err
	}

	// the directory is watched since saves replace the file by rename
	if err := r.watcher.Add(dir); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-r.watcher.Events:
				if !ok {
					return
				}

				if filepath.Clean(event.Name) != r.fileName {
					continue
				}

				r.logger.Debug(fmt.Sprintf("event: %v", event))

				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
					r.reload()
				}
			case err, ok := <-r.watcher.Errors:
				if !ok {
					return
				}

				r.logger.Error("error", slog.Any("error", err))
			}
		}
	}()

	return nil
}

func (r *InvitationFileRepository) Stop() {
	if r.watcher != nil {
		_ = r.watcher.Close()
	}
}

func (r *InvitationFileRepository) Create(_ context.Context, name string) (int64, error) {
	r.mx.Lock()
	defer r.mx.Unlock()

	m := r.load()

	id, err := nextID(m)
	if err != nil {
		return 0, err
	}

	m[strconv.FormatInt(id, 10)] = name

	if err := r.save(m); err != nil {
		return 0, fmt.Errorf("save invitations: %w", err)
	}

	r.invitations = m

	return id, nil
}

func (r *InvitationFileRepository) Get(_ context.Context, id string) (string, error) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	if name, ok := r.invitations[id]; ok && name != "" {
		return name, nil
	}

	return "", ErrNotFound
}

func (r *InvitationFileRepository) All(_ context.Context) (map[string]string, error) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	return maps.Clone(r.invitations), nil
}

func (r *InvitationFileRepository) Ping(_ context.Context) error {
	return nil
}

var ErrIDSpaceExhausted = errors.New("invitation id space exhausted")

// nextID is max numeric key + 1. Any non-numeric key restarts numbering at 1.
func nextID(m map[string]string) (int64, error) {
	var last int64

	overflow := false

	for k := range m {
		n, err := strconv.ParseInt(k, 10, 64)

		switch {
		case errors.Is(err, strconv.ErrRange):
			overflow = true
		case err != nil:
			return 1, nil
		case n > last:
			last = n
		}
	}

	if overflow || last == math.MaxInt64 {
		return 0, ErrIDSpaceExhausted
	}

	return last + 1, nil
}
