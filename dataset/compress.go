package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies a stream codec.
type Compression int

const (
	// CompressionAuto detects the codec from the name, then from magic bytes.
	CompressionAuto Compression = iota
	CompressionNone
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionAuto:
		return "auto"
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// ParseCompression parses a codec name.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return CompressionAuto, nil
	case "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return CompressionAuto, fmt.Errorf("unknown compression %q", s)
	}
}

var compressionExts = []struct {
	suffix string
	c      Compression
}{
	{".gz", CompressionGzip},
	{".zst", CompressionZstd},
	{".zstd", CompressionZstd},
	{".lz4", CompressionLZ4},
}

var magics = []struct {
	prefix []byte
	c      Compression
}{
	{[]byte{0x1f, 0x8b}, CompressionGzip},
	{[]byte{0x28, 0xb5, 0x2f, 0xfd}, CompressionZstd},
	{[]byte{0x04, 0x22, 0x4d, 0x18}, CompressionLZ4},
}

// DetectCompression infers the codec from a blob name. It returns
// CompressionAuto when the name is inconclusive.
func DetectCompression(name string) Compression {
	lower := strings.ToLower(name)
	for _, ext := range compressionExts {
		if strings.HasSuffix(lower, ext.suffix) {
			return ext.c
		}
	}
	return CompressionAuto
}

func sniff(br *bufio.Reader) Compression {
	head, _ := br.Peek(4)
	for _, m := range magics {
		if bytes.HasPrefix(head, m.prefix) {
			return m.c
		}
	}
	return CompressionNone
}

// Decompress wraps r with the decoder for c. CompressionAuto sniffs magic bytes.
func Decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	rc, _, err := decompress(r, c)
	return rc, err
}

func decompress(r io.Reader, c Compression) (io.ReadCloser, Compression, error) {
	br := bufio.NewReader(r)
	if c == CompressionAuto {
		c = sniff(br)
	}
	rc, err := decoder(br, c)
	return rc, c, err
}

func decoder(br *bufio.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(br), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return dec.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(br)), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}
