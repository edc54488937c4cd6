// Copyright 2026 The QOI Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package qoi implements the QOI (Quite OK Image) lossless image file format.
//
// A QOI file is a 14 byte header (stating width, height, channel count and
// color space), a stream of variable length chunks and an 8 byte end marker.
// Each pixel is encoded by the first applicable chunk kind out of: a run of
// the previous pixel, an index into a 64 entry color history, a small or
// luma-biased delta from the previous pixel, or the literal color.
//
// QOI is specified at https://qoiformat.org/qoi-specification.pdf
package qoi

import (
	"errors"
	"image"
	"image/color"
)

// Magic is the byte string prefix of every QOI image file.
const Magic = "qoif"

// MaxPixels is the largest width×height that Encode and Decode accept.
const MaxPixels = 400_000_000

const headerSize = 14

var endMarker = [8]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}

func init() {
	image.RegisterFormat("qoi", Magic, Decode, DecodeConfig)
}

var (
	ErrBadArgument             = errors.New("qoi: bad argument")
	ErrImageIsTooLarge         = errors.New("qoi: image is too large")
	ErrInvalidEndMarker        = errors.New("qoi: invalid end marker")
	ErrInvalidMagic            = errors.New("qoi: invalid magic")
	ErrTruncatedStream         = errors.New("qoi: truncated stream")
	ErrUnsupportedChannelCount = errors.New("qoi: unsupported channel count")
)

// Channels is the number of color channels declared in a QOI header.
//
// It is informative only: the chunk stream is the same either way. It does
// determine the layout of pixel buffers passed to EncodePixels and returned by
// DecodePixels: 3 or 4 bytes per pixel.
type Channels uint8

const (
	ChannelsRGB  = Channels(3)
	ChannelsRGBA = Channels(4)
)

// IsValid returns whether c is ChannelsRGB or ChannelsRGBA.
func (c Channels) IsValid() bool {
	return (c == ChannelsRGB) || (c == ChannelsRGBA)
}

// ColorModel returns the Go standard library's color model that best matches
// the Channels.
func (c Channels) ColorModel() color.Model {
	switch c {
	case ChannelsRGB:
		return color.RGBAModel
	case ChannelsRGBA:
		return color.NRGBAModel
	}
	return nil
}

// newImage returns an image whose Pix holds 4 bytes per pixel with no row
// padding, so that the decoder can write straight into it.
//
// RGB images are opaque, and premultiplied and non-premultiplied alpha are the
// same thing for opaque pixels.
func (c Channels) newImage(width int, height int) (image.Image, []byte, error) {
	r := image.Rect(0, 0, width, height)
	switch c {
	case ChannelsRGB:
		m := image.NewRGBA(r)
		return m, m.Pix, nil
	case ChannelsRGBA:
		m := image.NewNRGBA(r)
		return m, m.Pix, nil
	}
	return nil, nil, ErrUnsupportedChannelCount
}

// ColorSpace is the color space flag of a QOI header. It is passed through
// as-is and does not change how pixels are encoded or decoded.
type ColorSpace uint8

const (
	// ColorSpaceSRGB means sRGB color channels with a linear alpha channel.
	ColorSpaceSRGB = ColorSpace(0)
	// ColorSpaceLinear means that all channels are linear.
	ColorSpaceLinear = ColorSpace(1)
)

func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceSRGB:
		return "sRGB"
	case ColorSpaceLinear:
		return "linear"
	}
	return "unknown"
}

// Header is the fixed size metadata at the start of every QOI file.
type Header struct {
	Width      uint32
	Height     uint32
	Channels   Channels
	ColorSpace ColorSpace
}

// numPixels returns Width×Height, or ErrImageIsTooLarge if that exceeds
// MaxPixels.
func (h Header) numPixels() (int, error) {
	n := uint64(h.Width) * uint64(h.Height)
	if n > MaxPixels {
		return 0, ErrImageIsTooLarge
	}
	return int(n), nil
}

// Stats counts what an encoder emitted.
type Stats struct {
	// Ops holds the number of chunks of each OpKind.
	Ops [NumOpKinds]int
	// Pixels is the number of pixels encoded.
	Pixels int
	// Bytes is the total encoded size, including the header and end marker.
	Bytes int64
}
