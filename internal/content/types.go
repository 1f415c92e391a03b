package content

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Store is an append-only content-addressed blob store.
type Store interface {
	Store(content []byte) (string, error)
	Get(hash string) ([]byte, error)
	Exists(hash string) bool
}

// Options configures a FileStore.
type Options struct {
	// Number of decoded blobs kept in memory.
	CacheSize int
	Compression CompressionOptions
}

func DefaultOptions() Options {
	return Options{
		CacheSize:   256,
		Compression: DefaultCompressionOptions(),
	}
}

// FileStore keeps one file per blob under root, named by the SHA-256 of
// the uncompressed content.
type FileStore struct {
	root  string
	cache *lru.Cache[string, []byte]
	codec *codec
}

var _ Store = (*FileStore)(nil)
