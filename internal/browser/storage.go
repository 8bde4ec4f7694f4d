package browser

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// StorageArea is transient key/value storage shared by every origin of a
// process. Entries expire after the configured TTL; nothing is persisted.
type StorageArea struct {
	c *gocache.Cache
}

// NewStorageArea creates a storage area whose entries live for ttl.
func NewStorageArea(ttl time.Duration) *StorageArea {
	return &StorageArea{c: gocache.New(ttl, time.Minute)}
}

// Origin returns the storage visible to pages of origin.
func (a *StorageArea) Origin(origin string) *Storage {
	return &Storage{area: a, origin: origin}
}

// Storage is the per-origin view of a StorageArea.
type Storage struct {
	area   *StorageArea
	origin string
}

func (s *Storage) key(k string) string {
	return s.origin + "\x00" + k
}

// Get returns the value stored under k.
func (s *Storage) Get(k string) (string, bool) {
	v, ok := s.area.c.Get(s.key(k))
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Set stores v under k, overwriting any earlier value.
func (s *Storage) Set(k, v string) {
	s.area.c.SetDefault(s.key(k), v)
}

// Remove deletes k.
func (s *Storage) Remove(k string) {
	s.area.c.Delete(s.key(k))
}

// Origin returns the origin this storage is scoped to.
func (s *Storage) Origin() string {
	return s.origin
}
