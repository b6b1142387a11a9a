// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package streamio pools the buffered readers/writers and compressors used
// while encoding and decoding objects, so hot paths (tree writing during a
// merge, blob hashing) don't pay for a fresh allocation on every object.
package streamio

import (
	"bufio"
	"compress/zlib"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const bufioSize = 32 * 1024

var bufioReaderPool = sync.Pool{
	New: func() any { return bufio.NewReaderSize(nil, bufioSize) },
}

// GetBufioReader returns a pooled *bufio.Reader wrapping r.
func GetBufioReader(r io.Reader) *bufio.Reader {
	br := bufioReaderPool.Get().(*bufio.Reader)
	br.Reset(r)
	return br
}

// PutBufioReader returns a *bufio.Reader obtained from GetBufioReader to the pool.
func PutBufioReader(br *bufio.Reader) {
	br.Reset(nil)
	bufioReaderPool.Put(br)
}

var zstdEncoderPool sync.Pool

// ZstdWriter wraps a pooled *zstd.Encoder so callers can ReadFrom directly,
// matching the ExtendWriter shape loose-object encoding wants.
type ZstdWriter struct {
	*zstd.Encoder
}

func (w *ZstdWriter) ReadFrom(r io.Reader) (int64, error) {
	return io.Copy(w.Encoder, r)
}

// GetZstdWriter returns a pooled zstd encoder writing to w.
func GetZstdWriter(w io.Writer) *ZstdWriter {
	if v := zstdEncoderPool.Get(); v != nil {
		zw := v.(*zstd.Encoder)
		zw.Reset(w)
		return &ZstdWriter{Encoder: zw}
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		// zstd.NewWriter only fails on bad options; none are used here.
		panic(err)
	}
	return &ZstdWriter{Encoder: zw}
}

// PutZstdWriter flushes, closes and pools zw.
func PutZstdWriter(zw *ZstdWriter) {
	_ = zw.Close()
	zstdEncoderPool.Put(zw.Encoder)
}

var zstdDecoderPool sync.Pool

// GetZstdReader returns a pooled zstd decoder reading from r.
func GetZstdReader(r io.Reader) (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		zr := v.(*zstd.Decoder)
		if err := zr.Reset(r); err != nil {
			return nil, err
		}
		return zr, nil
	}
	return zstd.NewReader(r)
}

// PutZstdReader returns a zstd decoder obtained from GetZstdReader to the pool.
func PutZstdReader(zr *zstd.Decoder) {
	zstdDecoderPool.Put(zr)
}

var zlibWriterPool sync.Pool

// GetZlibWriter returns a pooled zlib writer writing to w.
func GetZlibWriter(w io.Writer) *zlib.Writer {
	if v := zlibWriterPool.Get(); v != nil {
		zw := v.(*zlib.Writer)
		zw.Reset(w)
		return zw
	}
	return zlib.NewWriter(w)
}

// PutZlibWriter closes and pools zw.
func PutZlibWriter(zw *zlib.Writer) {
	_ = zw.Close()
	zlibWriterPool.Put(zw)
}

// ZlibReader bundles a zlib reader with the flate.Reader value the stdlib
// API requires to support Reset.
type ZlibReader struct {
	io.ReadCloser
}

// GetZlibReader opens a zlib stream over r. zlib readers cannot be reset
// across frames cheaply, so this is a thin helper rather than a real pool.
func GetZlibReader(r io.Reader) (*ZlibReader, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &ZlibReader{ReadCloser: zr}, nil
}

// PutZlibReader closes zr.
func PutZlibReader(zr *ZlibReader) {
	_ = zr.Close()
}

// ReadMax reads at most n bytes from r, returning io.EOF only via err when
// fewer than n bytes were available (mirroring io.ReadFull's convention but
// tolerating a short final read instead of failing on it).
func ReadMax(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r, buf)
	buf = buf[:read]
	if err == io.ErrUnexpectedEOF {
		return buf, io.EOF
	}
	return buf, err
}
