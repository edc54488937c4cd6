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
)

// makeExtract returns a closure that returns the non-premultiplied 8-bit color
// of src at the given point. If forceOpaque, the returned alpha is always 0xFF
// and the color channels are those of the unpremultiplied source color.
func makeExtract(src image.Image, forceOpaque bool) func(x int, y int) Pixel {
	extract := makeExtract1(src)
	if !forceOpaque {
		return extract
	}
	return func(x int, y int) Pixel {
		p := extract(x, y)
		p.A = 0xFF
		return p
	}
}

func makeExtract1(src image.Image) func(x int, y int) Pixel {
	switch src := src.(type) {
	case *image.NRGBA:
		return func(x int, y int) Pixel {
			i := src.PixOffset(x, y)
			s := src.Pix[i : i+4 : i+4]
			return Pixel{R: s[0], G: s[1], B: s[2], A: s[3]}
		}

	case *image.RGBA:
		return func(x int, y int) Pixel {
			i := src.PixOffset(x, y)
			s := src.Pix[i : i+4 : i+4]
			if s[3] == 0xFF {
				return Pixel{R: s[0], G: s[1], B: s[2], A: 0xFF}
			}
			return unpremultiply(
				uint32(s[0])*0x101,
				uint32(s[1])*0x101,
				uint32(s[2])*0x101,
				uint32(s[3])*0x101,
			)
		}

	case *image.Gray:
		return func(x int, y int) Pixel {
			c := src.GrayAt(x, y)
			return Pixel{R: c.Y, G: c.Y, B: c.Y, A: 0xFF}
		}

	case image.RGBA64Image:
		return func(x int, y int) Pixel {
			c := src.RGBA64At(x, y)
			return unpremultiply(uint32(c.R), uint32(c.G), uint32(c.B), uint32(c.A))
		}
	}

	return func(x int, y int) Pixel {
		r, g, b, a := src.At(x, y).RGBA()
		return unpremultiply(r, g, b, a)
	}
}

// unpremultiply converts 16-bit premultiplied alpha to 8-bit non-premultiplied
// alpha, the same way that color.NRGBAModel does.
func unpremultiply(r uint32, g uint32, b uint32, a uint32) Pixel {
	if a == 0xFFFF {
		return Pixel{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xFF}
	} else if a == 0 {
		return Pixel{}
	}
	r = (r * 0xFFFF) / a
	g = (g * 0xFFFF) / a
	b = (b * 0xFFFF) / a
	return Pixel{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
