package content

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Stored blobs start with one of these bytes.
const (
	headerRaw  byte = 'r'
	headerZstd byte = 'z'
)

// CompressionOptions configures compression behavior
type CompressionOptions struct {
	// Minimum size in bytes before compressing
	MinSize int
	// Compression level (1=fastest, 4=best)
	Level int
}

func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{
		MinSize: 1024,
		Level:   2,
	}
}

type codec struct {
	opts     CompressionOptions
	encoders sync.Pool
	decoders sync.Pool
}

func newCodec(opts CompressionOptions) (*codec, error) {
	level := zstd.EncoderLevelFromZstd(opts.Level)

	// Fail early on bad options rather than inside the pool.
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("creating decoder: %w", err)
	}

	c := &codec{opts: opts}
	c.encoders.New = func() interface{} {
		e, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
		return e
	}
	c.decoders.New = func() interface{} {
		d, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return d
	}
	c.encoders.Put(enc)
	c.decoders.Put(dec)
	return c, nil
}

// encode returns content framed with its header byte.
func (c *codec) encode(content []byte) []byte {
	if len(content) < c.opts.MinSize {
		return append([]byte{headerRaw}, content...)
	}

	enc := c.encoders.Get().(*zstd.Encoder)
	defer c.encoders.Put(enc)

	out := enc.EncodeAll(content, []byte{headerZstd})
	// Not worth it for incompressible data.
	if len(out) >= len(content)+1 {
		return append([]byte{headerRaw}, content...)
	}
	return out
}

func (c *codec) decode(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, fmt.Errorf("empty object file")
	}

	switch stored[0] {
	case headerRaw:
		return stored[1:], nil
	case headerZstd:
		dec := c.decoders.Get().(*zstd.Decoder)
		defer c.decoders.Put(dec)
		out, err := dec.DecodeAll(stored[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown object header %q", stored[0])
	}
}
