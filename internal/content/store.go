package content

import (
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"gitlet/internal/errors"
	"gitlet/shared/utils"
)

func NewFileStore(root string, opts Options) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating content store directory: %w", err)
	}

	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultOptions().CacheSize
	}
	cache, err := lru.New[string, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	c, err := newCodec(opts.Compression)
	if err != nil {
		return nil, err
	}

	return &FileStore{
		root:  root,
		cache: cache,
		codec: c,
	}, nil
}

func (s *FileStore) path(hash string) string {
	return filepath.Join(s.root, hash)
}

// Store handles storing content and returns its hash. Storing content that
// is already present writes nothing.
func (s *FileStore) Store(content []byte) (string, error) {
	// Allow empty content (empty files are valid)
	if content == nil {
		content = []byte{}
	}

	hash := utils.HashContent(content)
	if s.Exists(hash) {
		return hash, nil
	}

	if err := utils.SafeWrite(s.path(hash), s.codec.encode(content), 0444); err != nil {
		return "", fmt.Errorf("writing content: %w", err)
	}

	s.cache.Add(hash, content)
	return hash, nil
}

// Get returns the content stored under hash, verifying it on the way out.
func (s *FileStore) Get(hash string) ([]byte, error) {
	if !utils.IsHex(hash) {
		return nil, errors.NotFound(fmt.Sprintf("no object with id %q", hash))
	}

	if content, ok := s.cache.Get(hash); ok {
		return content, nil
	}

	stored, err := s.Raw(hash)
	if err != nil {
		return nil, err
	}

	content, err := s.codec.decode(stored)
	if err != nil {
		return nil, fmt.Errorf("decoding object %s: %w", hash, err)
	}
	if utils.HashContent(content) != hash {
		return nil, fmt.Errorf("content hash mismatch for %s", hash)
	}

	s.cache.Add(hash, content)
	return content, nil
}

// Exists checks if content exists
func (s *FileStore) Exists(hash string) bool {
	if !utils.IsHex(hash) {
		return false
	}
	if s.cache.Contains(hash) {
		return true
	}
	_, err := os.Stat(s.path(hash))
	return err == nil
}

// Raw returns the stored (possibly compressed) bytes of an object.
func (s *FileStore) Raw(hash string) ([]byte, error) {
	if !utils.IsHex(hash) {
		return nil, errors.NotFound(fmt.Sprintf("no object with id %q", hash))
	}
	stored, err := os.ReadFile(s.path(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("no object with id %s", hash))
		}
		return nil, fmt.Errorf("reading content: %w", err)
	}
	return stored, nil
}

// putRaw stores pre-encoded bytes under hash if absent.
func (s *FileStore) putRaw(hash string, stored []byte) error {
	if s.Exists(hash) {
		return nil
	}
	if err := utils.SafeWrite(s.path(hash), stored, 0444); err != nil {
		return fmt.Errorf("writing content: %w", err)
	}
	return nil
}

// Copy copies the object hash from one store to another without decoding
// it. Copying an object the destination already holds is a no-op.
func Copy(from, to *FileStore, hash string) error {
	if to.Exists(hash) {
		return nil
	}
	stored, err := from.Raw(hash)
	if err != nil {
		return err
	}
	return to.putRaw(hash, stored)
}
