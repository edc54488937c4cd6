// Copyright 2026 The QOI Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package qoi

import (
	"image"
	"io"
	"math"
)

// EncodeOptions are optional arguments to Encode. The zero value is valid and
// means to use the default configuration.
type EncodeOptions struct {
	// If zero, the default is ChannelsRGB if the source image reports that it
	// is opaque and ChannelsRGBA otherwise.
	//
	// With ChannelsRGB, every pixel's alpha is encoded as 0xFF.
	Channels Channels

	// Passed through to the header. The zero value is ColorSpaceSRGB.
	ColorSpace ColorSpace

	// If non-nil, Stats is overwritten with what was encoded.
	Stats *Stats
}

// Encode writes src to w in the QOI format.
//
// options may be nil, which means to use the default configuration.
func Encode(w io.Writer, src image.Image, options *EncodeOptions) error {
	if (w == nil) || (src == nil) {
		return ErrBadArgument
	}
	b := src.Bounds()
	bW, bH := b.Dx(), b.Dy()
	if (uint64(bW) > math.MaxUint32) || (uint64(bH) > math.MaxUint32) {
		return ErrImageIsTooLarge
	}

	h := Header{
		Width:  uint32(bW),
		Height: uint32(bH),
	}
	var stats *Stats
	if options != nil {
		h.Channels = options.Channels
		h.ColorSpace = options.ColorSpace
		stats = options.Stats
	}
	if h.Channels == 0 {
		h.Channels = ChannelsRGBA
		if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
			h.Channels = ChannelsRGB
		}
	}

	extract := makeExtract(src, h.Channels == ChannelsRGB)
	return encode(w, h, stats, func(i int) Pixel {
		return extract(b.Min.X+(i%bW), b.Min.Y+(i/bW))
	})
}

// EncodePixels writes pix to w in the QOI format. pix holds h.Width×h.Height
// pixels, row-major with no padding, each pixel being h.Channels bytes: R, G,
// B and (for ChannelsRGBA) A. With ChannelsRGB, alpha is implicitly 0xFF.
func EncodePixels(w io.Writer, h Header, pix []byte) error {
	if w == nil {
		return ErrBadArgument
	}
	if !h.Channels.IsValid() {
		return ErrUnsupportedChannelCount
	}
	n, err := h.numPixels()
	if err != nil {
		return err
	}
	stride := int(h.Channels)
	if len(pix) != (n * stride) {
		return ErrBadArgument
	}

	if h.Channels == ChannelsRGB {
		return encode(w, h, nil, func(i int) Pixel {
			s := pix[3*i : (3*i)+3 : (3*i)+3]
			return Pixel{R: s[0], G: s[1], B: s[2], A: 0xFF}
		})
	}
	return encode(w, h, nil, func(i int) Pixel {
		s := pix[4*i : (4*i)+4 : (4*i)+4]
		return Pixel{R: s[0], G: s[1], B: s[2], A: s[3]}
	})
}

func encode(w io.Writer, h Header, stats *Stats, at func(i int) Pixel) error {
	if !h.Channels.IsValid() {
		return ErrUnsupportedChannelCount
	}
	n, err := h.numPixels()
	if err != nil {
		return err
	}

	e := &encoder{
		prev:  startPixel,
		stats: stats,
	}
	e.w.w = w
	if stats != nil {
		*stats = Stats{}
	}

	e.w.writeHeader(h)
	for i := 0; i < n; i++ {
		e.encodePixel(at(i), i == (n-1))
		if e.w.err != nil {
			return e.w.err
		}
	}
	for _, c := range endMarker {
		e.w.writeU8(c)
	}
	if err := e.w.flush(); err != nil {
		return err
	}

	if stats != nil {
		stats.Pixels = n
		stats.Bytes = e.w.total
	}
	return nil
}

type encoder struct {
	cache Cache
	prev  Pixel
	run   int
	stats *Stats
	w     byteWriter
}

func (e *encoder) encodePixel(px Pixel, last bool) {
	if px == e.prev {
		e.run++
		if (e.run == MaxRunLength) || last {
			e.emit(Op{Kind: OpRun, Length: uint8(e.run)})
			e.run = 0
		}
		return
	}

	if e.run > 0 {
		e.emit(Op{Kind: OpRun, Length: uint8(e.run)})
		e.run = 0
	}
	e.emit(classify(e.prev, px, &e.cache))
	e.cache.Put(px)
	e.prev = px
}

func (e *encoder) emit(op Op) {
	if e.stats != nil {
		e.stats.Ops[op.Kind]++
	}
	e.w.writeOp(op)
}

func (w *byteWriter) writeOp(op Op) {
	switch op.Kind {
	case OpIndex:
		w.writeU8(TagIndex | (op.Index & 0x3F))

	case OpDiff:
		w.writeU8(TagDiff |
			(uint8(op.DR+2) << 4) |
			(uint8(op.DG+2) << 2) |
			(uint8(op.DB+2) << 0))

	case OpLuma:
		w.writeU8(TagLuma | uint8(op.DG+32))
		w.writeU8((uint8(op.DR+8) << 4) | uint8(op.DB+8))

	case OpRun:
		w.writeU8(TagRun | (op.Length - 1))

	case OpRGB:
		w.writeU8(TagRGB)
		w.writeU8(op.Pixel.R)
		w.writeU8(op.Pixel.G)
		w.writeU8(op.Pixel.B)

	case OpRGBA:
		w.writeU8(TagRGBA)
		w.writeU8(op.Pixel.R)
		w.writeU8(op.Pixel.G)
		w.writeU8(op.Pixel.B)
		w.writeU8(op.Pixel.A)
	}
}
