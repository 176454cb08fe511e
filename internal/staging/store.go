// Package staging holds files chosen on a form until the form is saved.
// Entries expire after a TTL so abandoned uploads do not pile up.
package staging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
)

var ErrEmptyFile = errors.New("uploaded file is empty")

const sweepInterval = time.Minute

// File is a staged upload
type File struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
	expiresAt   time.Time
}

// Size is the stored payload length in bytes.
func (f *File) Size() int {
	return len(f.Data)
}

// Store keeps staged files in memory
type Store struct {
	mu       sync.RWMutex
	files    map[string]*File
	ttl      time.Duration
	maxWidth uint
	logger   *zap.Logger
	now      func() time.Time
}

// NewStore creates a store whose entries live for ttl. JPEG and PNG images
// wider than maxWidth are downscaled on the way in; 0 disables resizing.
func NewStore(ttl time.Duration, maxWidth uint, logger *zap.Logger) *Store {
	return &Store{
		files:    make(map[string]*File),
		ttl:      ttl,
		maxWidth: maxWidth,
		logger:   logger,
		now:      time.Now,
	}
}

// Put stages data and returns the stored file.
func (s *Store) Put(filename, contentType string, data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	if s.maxWidth > 0 {
		scaled, err := downscale(data, contentType, s.maxWidth)
		if err != nil {
			s.logger.Warn("Failed to downscale image, keeping original",
				zap.String("filename", filename),
				zap.Error(err),
			)
		} else {
			data = scaled
		}
	}

	file := &File{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
		expiresAt:   s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.files[file.ID] = file
	s.mu.Unlock()

	return file, nil
}

// Get returns an unexpired file by id.
func (s *Store) Get(id string) (*File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.files[id]
	if !ok || s.now().After(file.expiresAt) {
		return nil, false
	}
	return file, true
}

// Delete drops a staged file; unknown ids are ignored.
func (s *Store) Delete(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.files, id)
	}
}

// Len returns the number of entries, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Sweep removes expired entries and reports how many were dropped.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, file := range s.files {
		if now.After(file.expiresAt) {
			delete(s.files, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired entries until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Debug("Swept expired uploads", zap.Int("removed", removed))
			}
		}
	}
}

// downscale shrinks JPEG and PNG images wider than maxWidth, preserving
// the aspect ratio. Other content is returned unchanged.
func downscale(data []byte, contentType string, maxWidth uint) ([]byte, error) {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return data, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if uint(cfg.Width) <= maxWidth {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	scaled := resize.Resize(maxWidth, 0, img, resize.Lanczos3)

	var out bytes.Buffer
	if contentType == "image/png" {
		err = png.Encode(&out, scaled)
	} else {
		err = jpeg.Encode(&out, scaled, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return out.Bytes(), nil
}
