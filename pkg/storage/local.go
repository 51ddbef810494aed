package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const metaSuffix = ".meta"

type localMeta struct {
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// LocalStore writes objects below a directory. Every object has a JSON
// sidecar holding its content type.
type LocalStore struct {
	path string
}

// NewLocalStore creates the directory if necessary
func NewLocalStore(path string) (*LocalStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to make path %q absolute: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return nil, fmt.Errorf("storage: failed to create path %q: %w", abs, err)
	}
	return &LocalStore{path: abs}, nil
}

func (s *LocalStore) pathForID(id string) (string, error) {
	full := filepath.Join(s.path, strings.TrimPrefix(id, "/"))
	if full != s.path && !strings.HasPrefix(full, s.path+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: invalid id %q", id)
	}
	return full, nil
}

func (s *LocalStore) Put(_ context.Context, name string, data []byte, contentType string) (string, error) {
	full, err := s.pathForID(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o700); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o600); err != nil {
		os.Remove(full)
		return "", err
	}
	meta, err := json.Marshal(localMeta{ContentType: contentType, Size: len(data)})
	if err != nil {
		os.Remove(full)
		return "", err
	}
	if err := os.WriteFile(full+metaSuffix, meta, 0o600); err != nil {
		os.Remove(full)
		return "", err
	}
	return name, nil
}

func (s *LocalStore) Get(_ context.Context, id string) ([]byte, string, error) {
	full, err := s.pathForID(id)
	if err != nil {
		return nil, "", err
	}
	raw, err := os.ReadFile(full + metaSuffix)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNoObject
	} else if err != nil {
		return nil, "", err
	}
	var meta localMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNoObject
	} else if err != nil {
		return nil, "", err
	}
	return data, meta.ContentType, nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (s *LocalStore) Delete(_ context.Context, id string) error {
	full, err := s.pathForID(id)
	if err != nil {
		return err
	}
	os.Remove(full + metaSuffix)
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
