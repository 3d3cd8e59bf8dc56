// Package memstore holds in-memory implementations of the persistence and
// blob store interfaces for tests.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/markdave123-py/Redacta/internal/core"
	"github.com/markdave123-py/Redacta/internal/models"
)

var (
	_ core.DbClient     = (*DB)(nil)
	_ core.ObjectClient = (*Objects)(nil)
)

// DB is a core.DbClient backed by maps. Set UpdateErr to make UpdateResume fail.
type DB struct {
	mu      sync.Mutex
	nextID  int64
	resumes map[string]*models.Resume
	coords  map[int64]map[bool][]models.WordCoordinate

	UpdateErr error
	Updates   int
}

func NewDB() *DB {
	return &DB{
		resumes: make(map[string]*models.Resume),
		coords:  make(map[int64]map[bool][]models.WordCoordinate),
	}
}

func (d *DB) CreateResume(_ context.Context, r *models.Resume) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.resumes[r.UUID]; ok {
		return fmt.Errorf("duplicate uuid %s", r.UUID)
	}
	d.nextID++
	r.ID = d.nextID
	r.ShowRedacted = true
	r.CreatedAt = time.Now()
	c := *r
	d.resumes[r.UUID] = &c
	return nil
}

func (d *DB) GetResumeByUUID(_ context.Context, uuid string) (*models.Resume, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.resumes[uuid]
	if !ok {
		return nil, models.ErrResumeNotFound
	}
	c := *r
	return &c, nil
}

func (d *DB) UpdateResume(_ context.Context, r *models.Resume) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Updates++
	if d.UpdateErr != nil {
		return d.UpdateErr
	}
	for _, cur := range d.resumes {
		if cur.ID == r.ID {
			cur.RedactedLink = r.RedactedLink
			cur.RedactedText = r.RedactedText
			cur.SkipRedaction = r.SkipRedaction
			cur.ShowRedacted = r.ShowRedacted
			cur.RedactionVersion = r.RedactionVersion
			return nil
		}
	}
	return models.ErrResumeNotFound
}

// GetResumeWithoutRedaction returns the lowest-id candidate.
func (d *DB) GetResumeWithoutRedaction(_ context.Context, currentVersion int) (*models.Resume, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var best *models.Resume
	for _, r := range d.resumes {
		if !r.NeedsRedaction(currentVersion) {
			continue
		}
		if best == nil || r.ID < best.ID {
			best = r
		}
	}
	if best == nil {
		return nil, models.ErrResumeNotFound
	}
	c := *best
	return &c, nil
}

func (d *DB) ReplaceTextCoordinates(_ context.Context, resumeID int64, redacted bool, coords []models.WordCoordinate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.coords[resumeID] == nil {
		d.coords[resumeID] = make(map[bool][]models.WordCoordinate)
	}
	d.coords[resumeID][redacted] = append([]models.WordCoordinate(nil), coords...)
	return nil
}

// SearchTextCoordinates matches coordinates containing any of the
// |-separated terms as a whole word, ignoring case.
func (d *DB) SearchTextCoordinates(_ context.Context, resumeID int64, tsquery string) ([]models.WordCoordinate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if strings.TrimSpace(tsquery) == "" {
		return nil, errors.New("syntax error in tsquery")
	}
	terms := strings.Split(strings.ToLower(tsquery), "|")

	var out []models.WordCoordinate
	for _, redacted := range []bool{false, true} {
		for _, wc := range d.coords[resumeID][redacted] {
			words := strings.Fields(strings.ToLower(wc.Text))
			if containsAny(words, terms) {
				out = append(out, wc)
			}
		}
	}
	return out, nil
}

func containsAny(words, terms []string) bool {
	for _, w := range words {
		for _, t := range terms {
			if t != "" && w == t {
				return true
			}
		}
	}
	return false
}

// Coordinates returns the stored index of one resume.
func (d *DB) Coordinates(resumeID int64, redacted bool) []models.WordCoordinate {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.coords[resumeID][redacted]
}

func (d *DB) Close() error { return nil }

// Objects is a core.ObjectClient backed by a map. Set WriteErr or ReadErr
// to make the calls fail.
type Objects struct {
	mu    sync.Mutex
	blobs map[string][]byte

	WriteErr error
	ReadErr  error
}

func NewObjects() *Objects {
	return &Objects{blobs: make(map[string][]byte)}
}

func (o *Objects) Write(_ context.Context, name string, data []byte) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.WriteErr != nil {
		return "", o.WriteErr
	}
	o.blobs[name] = append([]byte(nil), data...)
	return name, nil
}

func (o *Objects) Read(_ context.Context, key string) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ReadErr != nil {
		return nil, o.ReadErr
	}
	b, ok := o.blobs[key]
	if !ok {
		return nil, fmt.Errorf("no such key %q", key)
	}
	return b, nil
}

// Keys lists the stored keys in order.
func (o *Objects) Keys() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	keys := make([]string, 0, len(o.blobs))
	for k := range o.blobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
