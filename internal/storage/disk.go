package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/example/followback/internal/config"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type Role string

const (
	RoleFollowers Role = "followers"
	RoleFollowing Role = "following"
)

// FileName is the fixed on-disk name for a role.
func (r Role) FileName() string {
	return string(r) + ".json"
}

// Key scopes a pair of uploads. The empty key addresses the shared
// fixed-name files at the root of the upload dir.
type Key string

// UploadStore persists uploaded exports long enough to parse them.
type UploadStore interface {
	NewKey() Key
	Save(ctx context.Context, key Key, role Role, r io.Reader) error
	Load(ctx context.Context, key Key, role Role) ([]byte, error)
}

// DiskStore keeps uploads as files under dir. In shared mode every request
// writes the same two files and the last writer wins; in isolated mode each
// request gets its own subdirectory named by a random UUID.
type DiskStore struct {
	dir      string
	isolated bool
}

func NewDiskStore(dir, mode string) (*DiskStore, error) {
	switch mode {
	case config.StorageShared, "":
	case config.StorageIsolated:
	default:
		return nil, goerr.New("unsupported storage mode", goerr.V("mode", mode))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create upload dir", goerr.V("dir", dir))
	}
	return &DiskStore{dir: dir, isolated: mode == config.StorageIsolated}, nil
}

func (s *DiskStore) NewKey() Key {
	if !s.isolated {
		return ""
	}
	return Key(uuid.NewString())
}

func (s *DiskStore) Path(key Key, role Role) string {
	return filepath.Join(s.dir, string(key), role.FileName())
}

// Save truncates the role's file and writes the whole payload.
func (s *DiskStore) Save(ctx context.Context, key Key, role Role, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(key, role)
	if key != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return goerr.Wrap(err, "failed to create upload key dir", goerr.V("key", key))
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return goerr.Wrap(err, "failed to open upload file", goerr.V("path", path))
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return goerr.Wrap(err, "failed to write upload file", goerr.V("path", path))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close upload file", goerr.V("path", path))
	}
	return nil
}

func (s *DiskStore) Load(ctx context.Context, key Key, role Role) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path(key, role)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read upload file", goerr.V("path", path))
	}
	return data, nil
}
