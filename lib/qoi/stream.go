// Copyright 2026 The QOI Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package qoi

import (
	"bufio"
	"errors"
	"io"
)

const writerBufferSize = 4096 - 64 - 64

// byteWriter buffers writes to w. The first error from w is sticky: later
// writes are dropped and flush keeps returning it.
type byteWriter struct {
	w     io.Writer
	err   error
	n     int
	total int64
	buf   [writerBufferSize]byte
}

func (w *byteWriter) writeU8(u uint8) {
	if w.n >= len(w.buf) {
		w.flush()
	}
	w.buf[w.n] = u
	w.n++
}

func (w *byteWriter) writeU32BE(u uint32) {
	w.writeU8(uint8(u >> 24))
	w.writeU8(uint8(u >> 16))
	w.writeU8(uint8(u >> 8))
	w.writeU8(uint8(u >> 0))
}

func (w *byteWriter) writeChar(c byte) {
	w.writeU8(c)
}

func (w *byteWriter) flush() error {
	if (w.err == nil) && (w.n > 0) {
		_, w.err = w.w.Write(w.buf[:w.n])
		if w.err == nil {
			w.total += int64(w.n)
		}
	}
	w.n = 0
	return w.err
}

type byteSource interface {
	io.Reader
	io.ByteReader
}

// byteReader reads from a byte-at-a-time source. Running out of input is
// reported as ErrTruncatedStream.
type byteReader struct {
	r byteSource
}

// newByteReader wraps r in a bufio.Reader unless it already has a ReadByte
// method. The bufio.Reader may read past the end of the QOI stream.
func newByteReader(r io.Reader) *byteReader {
	if bs, ok := r.(byteSource); ok {
		return &byteReader{r: bs}
	}
	return &byteReader{r: bufio.NewReader(r)}
}

// newUnbufferedByteReader is like newByteReader but never reads more from r
// than its callers ask for.
func newUnbufferedByteReader(r io.Reader) *byteReader {
	if bs, ok := r.(byteSource); ok {
		return &byteReader{r: bs}
	}
	return &byteReader{r: &singleByteReader{r: r}}
}

type singleByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (s *singleByteReader) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *singleByteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(s.r, s.buf[:]); err != nil {
		return 0, err
	}
	return s.buf[0], nil
}

func (r *byteReader) readU8() (uint8, error) {
	c, err := r.r.ReadByte()
	if err != nil {
		return 0, truncated(err)
	}
	return c, nil
}

func (r *byteReader) readU32BE() (uint32, error) {
	buf := [4]byte{}
	if err := r.readFull(buf[:]); err != nil {
		return 0, err
	}
	return (uint32(buf[0]) << 24) |
		(uint32(buf[1]) << 16) |
		(uint32(buf[2]) << 8) |
		(uint32(buf[3]) << 0), nil
}

func (r *byteReader) readChar() (byte, error) {
	return r.readU8()
}

func (r *byteReader) readFull(dst []byte) error {
	if _, err := io.ReadFull(r.r, dst); err != nil {
		return truncated(err)
	}
	return nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncatedStream
	}
	return err
}
