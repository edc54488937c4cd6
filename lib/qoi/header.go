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
)

func (w *byteWriter) writeHeader(h Header) {
	for i := 0; i < len(Magic); i++ {
		w.writeChar(Magic[i])
	}
	w.writeU32BE(h.Width)
	w.writeU32BE(h.Height)
	w.writeU8(uint8(h.Channels))
	w.writeU8(uint8(h.ColorSpace))
}

// readHeader reads the 14 byte header. Channels and ColorSpace are returned
// as-is, even if out of range.
func (r *byteReader) readHeader() (Header, error) {
	magic := [4]byte{}
	for i := range magic {
		c, err := r.readChar()
		if err != nil {
			return Header{}, err
		}
		magic[i] = c
	}
	if string(magic[:]) != Magic {
		return Header{}, ErrInvalidMagic
	}

	width, err := r.readU32BE()
	if err != nil {
		return Header{}, err
	}
	height, err := r.readU32BE()
	if err != nil {
		return Header{}, err
	}
	channels, err := r.readU8()
	if err != nil {
		return Header{}, err
	}
	colorSpace, err := r.readU8()
	if err != nil {
		return Header{}, err
	}

	return Header{
		Width:      width,
		Height:     height,
		Channels:   Channels(channels),
		ColorSpace: ColorSpace(colorSpace),
	}, nil
}

// DecodeHeader reads a QOI header from r. It does not validate the Channels
// or ColorSpace fields. It reads exactly 14 bytes unless r is an io.ByteReader,
// in which case it reads them one at a time.
func DecodeHeader(r io.Reader) (Header, error) {
	return newUnbufferedByteReader(r).readHeader()
}

// DecodeConfig reads a QOI image configuration from r.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := DecodeHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	if !h.Channels.IsValid() {
		return image.Config{}, ErrUnsupportedChannelCount
	}
	if _, err := h.numPixels(); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: h.Channels.ColorModel(),
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}
