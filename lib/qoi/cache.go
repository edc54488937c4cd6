// Copyright 2026 The QOI Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package qoi

import (
	"image/color"
)

// Pixel is a non-premultiplied 8 bits per channel RGBA color.
type Pixel struct {
	R, G, B, A uint8
}

// startPixel is the previous pixel, from the encoder's and decoder's point of
// view, before the first pixel of every image.
var startPixel = Pixel{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}

// NRGBA converts p to the equivalent standard library color.
func (p Pixel) NRGBA() color.NRGBA {
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}
}

// CacheSize is the number of slots in a Cache.
const CacheSize = 64

// Hash returns the Cache slot, in the range [0, CacheSize), for p.
func Hash(p Pixel) int {
	return ((int(p.R) * 3) +
		(int(p.G) * 5) +
		(int(p.B) * 7) +
		(int(p.A) * 11)) % CacheSize
}

// Cache is the color history shared (by construction, not by memory) between
// an encoder and a decoder. Both sides start from the zero value (every slot
// is transparent black) and store the same pixels in the same order, so that
// an index chunk means the same color to both.
//
// There is no eviction policy. The last pixel stored to a slot wins.
type Cache [CacheSize]Pixel

// Lookup returns the pixel in the given slot.
func (c *Cache) Lookup(slot int) Pixel {
	return c[slot]
}

// Store sets the pixel in the given slot.
func (c *Cache) Store(slot int, p Pixel) {
	c[slot] = p
}

// Put stores p in its Hash slot, returning that slot.
func (c *Cache) Put(p Pixel) int {
	slot := Hash(p)
	c[slot] = p
	return slot
}
