// Copyright 2026 The QOI Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package nie implements the NIE (Naive) image file format.
//
// It is an incomplete implementation (and hence an internal package), only
// providing the encoders needed by the github.com/quiteok/qoi module: NIE is
// a trivially simple dump of non-premultiplied BGRA pixels, useful as a
// canonical form when comparing decoded images.
//
// NIE is specified at
// https://github.com/google/wuffs/blob/main/doc/spec/nie-spec.md
package nie

import (
	"errors"
	"image"
	"image/color"
)

var (
	ErrBadArgument          = errors.New("nie: bad argument")
	ErrUnsupportedImageType = errors.New("nie: unsupported image type")
)

// EncodeBN4 encodes m as a NIE file in BGRA order, non-premultiplied alpha, 4
// bytes per pixel (8 bits per channel).
func EncodeBN4(m image.Image) ([]byte, error) {
	return encode(m, '4')
}

// EncodeBN8 encodes m as a NIE file in BGRA order, non-premultiplied alpha, 8
// bytes per pixel (16 bits per channel).
func EncodeBN8(m image.Image) ([]byte, error) {
	return encode(m, '8')
}

func encode(m image.Image, depth byte) (ret []byte, retErr error) {
	if m == nil {
		return nil, ErrBadArgument
	}
	at, err := makeNRGBA64At(m)
	if err != nil {
		return nil, err
	}

	b := m.Bounds()
	if (uint64(b.Dx()) > 0xFFFF_FFFF) || (uint64(b.Dy()) > 0xFFFF_FFFF) {
		return nil, ErrBadArgument
	}
	ret = append(ret, 0x6E, 0xC3, 0xAF, 0x45, 0xFF, 'b', 'n', depth)
	ret = appendU32LE(ret, uint32(b.Dx()))
	ret = appendU32LE(ret, uint32(b.Dy()))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := at(x, y)
			if !ok {
				return nil, ErrUnsupportedImageType
			}
			if depth == '4' {
				ret = append(ret,
					uint8(c.B>>8),
					uint8(c.G>>8),
					uint8(c.R>>8),
					uint8(c.A>>8),
				)
			} else {
				ret = append(ret,
					uint8(c.B>>0), uint8(c.B>>8),
					uint8(c.G>>0), uint8(c.G>>8),
					uint8(c.R>>0), uint8(c.R>>8),
					uint8(c.A>>0), uint8(c.A>>8),
				)
			}
		}
	}
	return ret, nil
}

// makeNRGBA64At returns a closure giving the non-premultiplied color at a
// point. The closure's second result is false for premultiplied colors that
// are neither opaque nor fully transparent, as converting those would be
// lossy.
func makeNRGBA64At(m image.Image) (func(x int, y int) (color.NRGBA64, bool), error) {
	switch m := m.(type) {
	case *image.Gray:
		return func(x int, y int) (color.NRGBA64, bool) {
			v := uint16(m.GrayAt(x, y).Y) * 0x101
			return color.NRGBA64{R: v, G: v, B: v, A: 0xFFFF}, true
		}, nil

	case *image.Gray16:
		return func(x int, y int) (color.NRGBA64, bool) {
			v := m.Gray16At(x, y).Y
			return color.NRGBA64{R: v, G: v, B: v, A: 0xFFFF}, true
		}, nil

	case *image.NRGBA:
		return func(x int, y int) (color.NRGBA64, bool) {
			c := m.NRGBAAt(x, y)
			return color.NRGBA64{
				R: uint16(c.R) * 0x101,
				G: uint16(c.G) * 0x101,
				B: uint16(c.B) * 0x101,
				A: uint16(c.A) * 0x101,
			}, true
		}, nil

	case *image.NRGBA64:
		return func(x int, y int) (color.NRGBA64, bool) {
			return m.NRGBA64At(x, y), true
		}, nil

	case *image.Paletted:
		return func(x int, y int) (color.NRGBA64, bool) {
			switch c := m.Palette[m.ColorIndexAt(x, y)].(type) {
			case color.NRGBA:
				return color.NRGBA64{
					R: uint16(c.R) * 0x101,
					G: uint16(c.G) * 0x101,
					B: uint16(c.B) * 0x101,
					A: uint16(c.A) * 0x101,
				}, true
			default:
				r, g, b, a := c.RGBA()
				return premultipliedToNRGBA64(r, g, b, a)
			}
		}, nil

	case image.RGBA64Image:
		return func(x int, y int) (color.NRGBA64, bool) {
			c := m.RGBA64At(x, y)
			return premultipliedToNRGBA64(uint32(c.R), uint32(c.G), uint32(c.B), uint32(c.A))
		}, nil
	}

	return nil, ErrUnsupportedImageType
}

func premultipliedToNRGBA64(r uint32, g uint32, b uint32, a uint32) (color.NRGBA64, bool) {
	if (a != 0x0000) && (a != 0xFFFF) {
		return color.NRGBA64{}, false
	}
	return color.NRGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: uint16(a)}, true
}

func appendU32LE(b []byte, u uint32) []byte {
	return append(b,
		uint8(u>>0),
		uint8(u>>8),
		uint8(u>>16),
		uint8(u>>24),
	)
}
