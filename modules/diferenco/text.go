package diferenco

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unsafe"

	"github.com/antgroup/zeta-ort/modules/chardet"
	"github.com/antgroup/zeta-ort/modules/streamio"
)

const (
	MAX_DIFF_SIZE = 100 << 20 // MAX_DIFF_SIZE 100MiB
	BINARY        = "binary"
	UTF8          = "UTF-8"
	sniffLen      = 8000
)

var (
	// ErrBinaryData is returned when the content is detected as binary.
	ErrBinaryData = errors.New("binary data")
)

// looksBinary reports whether the sniffed prefix of a blob contains a NUL
// byte, the same heuristic Git itself uses to decide whether to run a
// textual diff/merge or fall back to treating the file as opaque.
func looksBinary(b []byte) bool {
	return bytes.IndexByte(b, 0) != -1
}

func readRawText(r io.Reader, size int) (string, error) {
	var b bytes.Buffer

	if _, err := b.ReadFrom(io.LimitReader(r, sniffLen)); err != nil {
		return "", fmt.Errorf("failed to read initial bytes: %w", err)
	}
	if looksBinary(b.Bytes()) {
		return "", fmt.Errorf("%w: detected null byte in content", ErrBinaryData)
	}

	b.Grow(size)
	if _, err := b.ReadFrom(r); err != nil {
		return "", fmt.Errorf("failed to read remaining content: %w", err)
	}

	content := b.Bytes()
	return unsafe.String(unsafe.SliceData(content), len(content)), nil
}

// sniffPrefix reads up to sniffLen bytes without treating a short file as
// an error: streamio.ReadMax reports io.EOF once the reader is exhausted,
// which is the common case for blobs smaller than sniffLen.
func sniffPrefix(r io.Reader) ([]byte, error) {
	b, err := streamio.ReadMax(r, sniffLen)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return b, nil
}

// detectCharset classifies a sniffed prefix by byte-order-mark: the only
// charset signal this package can derive without a statistical language
// model. Content without a recognized BOM is assumed UTF-8 unless it looks
// binary.
func detectCharset(b []byte) string {
	switch {
	case bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}):
		return UTF8
	case bytes.HasPrefix(b, []byte{0xFF, 0xFE}):
		return "utf-16le"
	case bytes.HasPrefix(b, []byte{0xFE, 0xFF}):
		return "utf-16be"
	case looksBinary(b):
		return BINARY
	default:
		return UTF8
	}
}

// readUnifiedText is the textconv==true path: it sniffs for a byte-order
// mark and, when one names a non-UTF-8 encoding, decodes the whole blob to
// UTF-8 via chardet before diffing/merging.
func readUnifiedText(r io.Reader) (string, string, error) {
	sniffBytes, err := sniffPrefix(r)
	if err != nil {
		return "", "", fmt.Errorf("failed to read initial bytes for charset detection: %w", err)
	}
	charset := detectCharset(sniffBytes)
	if charset == BINARY {
		return "", "", fmt.Errorf("%w: content appears to be binary", ErrBinaryData)
	}
	reader := io.MultiReader(bytes.NewReader(sniffBytes), r)
	if strings.EqualFold(charset, UTF8) {
		var b strings.Builder
		if _, err := io.Copy(&b, reader); err != nil {
			return "", "", fmt.Errorf("failed to read UTF-8 content: %w", err)
		}
		return b.String(), UTF8, nil
	}
	var b bytes.Buffer
	if _, err := b.ReadFrom(reader); err != nil {
		return "", "", fmt.Errorf("failed to read content: %w", err)
	}
	decoded, err := chardet.DecodeFromCharset(b.Bytes(), charset)
	if err != nil {
		return "", "", fmt.Errorf("failed to convert from charset '%s': %w", charset, err)
	}
	if len(decoded) == 0 {
		return "", charset, nil
	}
	return unsafe.String(unsafe.SliceData(decoded), len(decoded)), charset, nil
}

// ReadUnifiedText reads a blob's textual content. When textconv is true, a
// byte-order-marked blob is transcoded to UTF-8 via modules/chardet and its
// source charset is returned so the caller (merge_driver.go) can re-encode
// merged output back to that charset; otherwise content is treated as raw
// UTF-8 and only checked for binary data.
func ReadUnifiedText(r io.Reader, size int64, textconv bool) (content string, charset string, err error) {
	if size > MAX_DIFF_SIZE {
		return "", "", fmt.Errorf("file size %d bytes exceeds limit %d bytes", size, MAX_DIFF_SIZE)
	}
	if textconv {
		return readUnifiedText(r)
	}
	content, err = readRawText(r, int(size))
	if err != nil {
		return "", "", fmt.Errorf("failed to read raw text: %w", err)
	}
	return content, UTF8, nil
}

// NewUnifiedReaderEx classifies r as BINARY or UTF8 by sniffing its prefix
// for a NUL byte, returning a reader that replays the sniffed bytes.
func NewUnifiedReaderEx(r io.Reader, textconv bool) (io.Reader, string, error) {
	sniffBytes, err := sniffPrefix(r)
	if err != nil {
		return nil, "", err
	}
	reader := io.MultiReader(bytes.NewReader(sniffBytes), r)
	if looksBinary(sniffBytes) {
		return reader, BINARY, nil
	}
	return reader, UTF8, nil
}

func NewTextReader(r io.Reader) (io.Reader, error) {
	sniffBytes, err := sniffPrefix(r)
	if err != nil {
		return nil, err
	}
	if looksBinary(sniffBytes) {
		return nil, ErrBinaryData
	}
	return io.MultiReader(bytes.NewReader(sniffBytes), r), nil
}
