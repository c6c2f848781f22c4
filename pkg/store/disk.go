package store

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv"
	"github.com/pkg/errors"
)

// Ext is appended to ids to form artifact file names.
const Ext = ".gob"

// DiskStore keeps one gzip-compressed file per artifact in a flat directory.
// Writes go through a temp directory and are renamed into place, so readers
// never observe a partial artifact.
type DiskStore struct {
	dv *diskv.Diskv
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dv: diskv.New(diskv.Options{
		BasePath:     dir,
		TempDir:      filepath.Join(dir, ".tmp"),
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 1 << 20,
		Compression:  diskv.NewGzipCompression(),
	})}
}

func validID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return errors.Errorf("store: invalid artifact id %q", id)
	}
	return nil
}

func (s *DiskStore) Persist(id string, b []byte) error {
	if err := validID(id); err != nil {
		return err
	}
	return errors.Wrapf(s.dv.Write(id+Ext, b), "store: persist %s", id)
}

func (s *DiskStore) Fetch(id string) ([]byte, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	b, err := s.dv.Read(id + Ext)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrArtifactNotFound, id)
	}
	return b, errors.Wrapf(err, "store: fetch %s", id)
}

// MemStore is an in-memory Store for tests and embedding.
type MemStore struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemStore() *MemStore { return &MemStore{m: map[string][]byte{}} }

func (s *MemStore) Persist(id string, b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = append([]byte(nil), b...)
	return nil
}

func (s *MemStore) Fetch(id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.m[id]
	if !ok {
		return nil, errors.Wrap(ErrArtifactNotFound, id)
	}
	return b, nil
}

// Len reports how many artifacts are held.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
