// Copyright 2026 The QOI Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package qoi

import (
	"errors"
	"fmt"
	"image"
	"io"
)

// Decode reads a QOI image from r.
//
// The image is an *image.NRGBA for ChannelsRGBA files and an (opaque)
// *image.RGBA for ChannelsRGB files.
//
// If the error is ErrInvalidEndMarker then the returned image is still
// complete: every pixel was decoded but the bytes after the last chunk were
// not the expected end marker.
func Decode(r io.Reader) (image.Image, error) {
	br := newByteReader(r)
	h, err := br.readHeader()
	if err != nil {
		return nil, err
	}
	n, err := h.numPixels()
	if err != nil {
		return nil, err
	}
	m, pix, err := h.Channels.newImage(int(h.Width), int(h.Height))
	if err != nil {
		return nil, err
	}
	err = decode(br, pix, 4, n)
	if (err != nil) && !errors.Is(err, ErrInvalidEndMarker) {
		return nil, err
	}
	if h.Channels == ChannelsRGB {
		// An RGBA chunk can still set alpha in a 3 channel file.
		for i := 3; i < len(pix); i += 4 {
			pix[i] = 0xFF
		}
	}
	return m, err
}

// DecodePixels reads a QOI image from r, returning its header and its pixels:
// row-major with no padding, each pixel being h.Channels bytes.
//
// As with Decode, ErrInvalidEndMarker comes with a complete pixel buffer.
func DecodePixels(r io.Reader) (h Header, pix []byte, err error) {
	br := newByteReader(r)
	h, err = br.readHeader()
	if err != nil {
		return Header{}, nil, err
	}
	if !h.Channels.IsValid() {
		return h, nil, ErrUnsupportedChannelCount
	}
	n, err := h.numPixels()
	if err != nil {
		return h, nil, err
	}
	stride := int(h.Channels)
	pix = make([]byte, n*stride)
	err = decode(br, pix, stride, n)
	if (err != nil) && !errors.Is(err, ErrInvalidEndMarker) {
		return h, nil, err
	}
	return h, pix, err
}

// decode reads n pixels' worth of chunks, and then the end marker, writing
// each pixel to dst as stride (3 or 4) bytes.
func decode(r *byteReader, dst []byte, stride int, n int) error {
	cache := Cache{}
	prev := startPixel
	run := 0

	for i := 0; i < n; i++ {
		if run > 0 {
			run--
		} else {
			op, err := r.readOp()
			if err != nil {
				return fmt.Errorf("decoding pixel %d of %d: %w", i, n, err)
			}
			if op.Kind == OpRun {
				run = int(op.Length) - 1
			} else {
				prev = op.apply(prev, &cache)
				cache.Put(prev)
			}
		}

		s := dst[i*stride : (i*stride)+stride : (i*stride)+stride]
		s[0] = prev.R
		s[1] = prev.G
		s[2] = prev.B
		if stride == 4 {
			s[3] = prev.A
		}
	}

	marker := [len(endMarker)]byte{}
	if err := r.readFull(marker[:]); err != nil {
		if errors.Is(err, ErrTruncatedStream) {
			return ErrInvalidEndMarker
		}
		return err
	} else if marker != endMarker {
		return ErrInvalidEndMarker
	}
	return nil
}

// readOp reads one chunk. It does not validate the Op: every tag byte is a
// valid chunk.
func (r *byteReader) readOp() (Op, error) {
	tag, err := r.readU8()
	if err != nil {
		return Op{}, err
	}

	switch tag {
	case TagRGB:
		buf := [3]byte{}
		if err := r.readFull(buf[:]); err != nil {
			return Op{}, err
		}
		return Op{Kind: OpRGB, Pixel: Pixel{R: buf[0], G: buf[1], B: buf[2]}}, nil

	case TagRGBA:
		buf := [4]byte{}
		if err := r.readFull(buf[:]); err != nil {
			return Op{}, err
		}
		return Op{Kind: OpRGBA, Pixel: Pixel{R: buf[0], G: buf[1], B: buf[2], A: buf[3]}}, nil
	}

	switch tag & tagMask2 {
	case TagIndex:
		return Op{Kind: OpIndex, Index: tag & 0x3F}, nil

	case TagDiff:
		return Op{
			Kind: OpDiff,
			DR:   int8((tag>>4)&0x03) - 2,
			DG:   int8((tag>>2)&0x03) - 2,
			DB:   int8((tag>>0)&0x03) - 2,
		}, nil

	case TagLuma:
		tag2, err := r.readU8()
		if err != nil {
			return Op{}, err
		}
		return Op{
			Kind: OpLuma,
			DR:   int8(tag2>>4) - 8,
			DG:   int8(tag&0x3F) - 32,
			DB:   int8(tag2&0x0F) - 8,
		}, nil
	}

	return Op{Kind: OpRun, Length: (tag & 0x3F) + 1}, nil
}
