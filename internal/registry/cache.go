package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"toolbelt/internal/domain"
)

// recordCache memoizes loaded entity records for the process lifetime.
// Entries are never mutated or evicted after creation.
type recordCache struct {
	mu       sync.RWMutex
	apps     map[domain.Slug]domain.AppRecord
	actions  map[domain.Slug]domain.ActionRecord
	triggers map[domain.Slug]domain.TriggerRecord
}

func newRecordCache() *recordCache {
	return &recordCache{
		apps:     make(map[domain.Slug]domain.AppRecord),
		actions:  make(map[domain.Slug]domain.ActionRecord),
		triggers: make(map[domain.Slug]domain.TriggerRecord),
	}
}

func (c *recordCache) getApp(slug domain.Slug) (domain.AppRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.apps[slug]
	return record, ok
}

func (c *recordCache) putApp(record domain.AppRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apps[record.Slug] = record
}

func (c *recordCache) getAction(slug domain.Slug) (domain.ActionRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.actions[slug]
	if !ok {
		return domain.ActionRecord{}, false
	}
	return domain.CloneActionRecord(record), true
}

func (c *recordCache) putAction(record domain.ActionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions[record.Slug] = domain.CloneActionRecord(record)
}

func (c *recordCache) getTrigger(slug domain.Slug) (domain.TriggerRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.triggers[slug]
	return record, ok
}

func (c *recordCache) putTrigger(record domain.TriggerRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggers[record.Slug] = record
}

// DiskStore persists one JSON file per resolved slug under kind-specific
// directories, sharing resolved metadata across processes. Writes are atomic
// (temp file + rename) and failures are swallowed: losing durability must
// never fail a resolution.
type DiskStore struct {
	dir    string
	logger *zap.Logger
}

func NewDiskStore(dir string, logger *zap.Logger) *DiskStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiskStore{dir: dir, logger: logger.Named("diskcache")}
}

func (s *DiskStore) path(kind domain.EntityKind, slug domain.Slug) string {
	return filepath.Join(s.dir, kind.CacheDir(), slug.String())
}

func (s *DiskStore) load(kind domain.EntityKind, slug domain.Slug, out any) bool {
	if s == nil || s.dir == "" {
		return false
	}
	data, err := os.ReadFile(s.path(kind, slug))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Debug("corrupt cache file ignored",
			zap.String("kind", string(kind)),
			zap.String("slug", slug.String()),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (s *DiskStore) store(kind domain.EntityKind, slug domain.Slug, record any) {
	if s == nil || s.dir == "" {
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Debug("encode cache record failed", zap.String("slug", slug.String()), zap.Error(err))
		return
	}
	dir := filepath.Join(s.dir, kind.CacheDir())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Debug("ensure cache dir failed", zap.String("dir", dir), zap.Error(err))
		return
	}
	tmp, err := os.CreateTemp(dir, "."+slug.String()+"-*")
	if err != nil {
		s.logger.Debug("create cache temp file failed", zap.String("slug", slug.String()), zap.Error(err))
		return
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		s.logger.Debug("write cache file failed", zap.String("slug", slug.String()), zap.Error(err))
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return
	}
	if err := os.Rename(tmp.Name(), s.path(kind, slug)); err != nil {
		_ = os.Remove(tmp.Name())
		s.logger.Debug("rename cache file failed", zap.String("slug", slug.String()), zap.Error(err))
	}
}

// LoadApp reads a cached app record from disk.
func (s *DiskStore) LoadApp(slug domain.Slug) (domain.AppRecord, bool) {
	var record domain.AppRecord
	ok := s.load(domain.KindApp, slug, &record)
	return record, ok
}

// StoreApp persists an app record, best effort.
func (s *DiskStore) StoreApp(record domain.AppRecord) {
	s.store(domain.KindApp, record.Slug, record)
}

// LoadAction reads a cached action record from disk.
func (s *DiskStore) LoadAction(slug domain.Slug) (domain.ActionRecord, bool) {
	var record domain.ActionRecord
	ok := s.load(domain.KindAction, slug, &record)
	return record, ok
}

// StoreAction persists an action record, best effort.
func (s *DiskStore) StoreAction(record domain.ActionRecord) {
	s.store(domain.KindAction, record.Slug, record)
}

// LoadTrigger reads a cached trigger record from disk.
func (s *DiskStore) LoadTrigger(slug domain.Slug) (domain.TriggerRecord, bool) {
	var record domain.TriggerRecord
	ok := s.load(domain.KindTrigger, slug, &record)
	return record, ok
}

// StoreTrigger persists a trigger record, best effort.
func (s *DiskStore) StoreTrigger(record domain.TriggerRecord) {
	s.store(domain.KindTrigger, record.Slug, record)
}
