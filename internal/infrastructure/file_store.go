package infrastructure

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

// AllowedImageTypes are the MIME types accepted for uploads, detected from
// file content rather than the client-supplied header.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// LocalFileStore keeps uploaded images on local disk under
// <root>/<campaign>/<entity type>/<entity id>/<uuid><ext>.
type LocalFileStore struct {
	root     string
	maxBytes int64
}

func NewLocalFileStore(root string, maxBytes int64) (*LocalFileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalFileStore{root: abs, maxBytes: maxBytes}, nil
}

func entityDir(campaignID int, entityType entities.EntityType, entityID int) string {
	return filepath.Join(strconv.Itoa(campaignID), string(entityType), strconv.Itoa(entityID))
}

// Save validates and writes data, returning its path relative to the root and
// the detected MIME type.
func (s *LocalFileStore) Save(campaignID int, entityType entities.EntityType, entityID int, data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", apperr.Validation("file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return "", "", apperr.Validation(fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes))
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), AllowedImageTypes...) {
		return "", "", apperr.Validation("unsupported image type " + mt.String())
	}

	dir := entityDir(campaignID, entityType, entityID)
	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return "", "", apperr.Internal("failed to store file", err)
	}
	rel := filepath.Join(dir, uuid.NewString()+mt.Extension())
	if err := os.WriteFile(filepath.Join(s.root, rel), data, 0o644); err != nil {
		return "", "", apperr.Internal("failed to store file", err)
	}
	return filepath.ToSlash(rel), mt.String(), nil
}

// Open resolves a stored relative path to an absolute one, refusing paths
// that escape the root.
func (s *LocalFileStore) Open(relPath string) (string, error) {
	abs, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperr.NotFound("image file not found")
		}
		return "", apperr.Internal("failed to read file", err)
	}
	return abs, nil
}

func (s *LocalFileStore) Remove(relPath string) error {
	abs, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Internal("failed to remove file", err)
	}
	return nil
}

func (s *LocalFileStore) RemoveEntity(campaignID int, entityType entities.EntityType, entityID int) error {
	return s.removeAll(entityDir(campaignID, entityType, entityID))
}

func (s *LocalFileStore) RemoveCampaign(campaignID int) error {
	return s.removeAll(strconv.Itoa(campaignID))
}

func (s *LocalFileStore) removeAll(rel string) error {
	abs, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(abs); err != nil {
		return apperr.Internal("failed to remove files", err)
	}
	return nil
}

func (s *LocalFileStore) resolve(relPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", apperr.Validation("invalid file path")
	}
	return filepath.Join(s.root, clean), nil
}
