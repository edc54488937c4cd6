// Copyright 2026 The QOI Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package qoi

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

// encodeChunks encodes a one row image and returns the bytes between the
// header and the end marker.
func encodeChunks(t *testing.T, channels Channels, pixels ...Pixel) []byte {
	t.Helper()
	h := Header{
		Width:    uint32(len(pixels)),
		Height:   1,
		Channels: channels,
	}
	pix := []byte(nil)
	for _, p := range pixels {
		pix = append(pix, p.R, p.G, p.B)
		if channels == ChannelsRGBA {
			pix = append(pix, p.A)
		}
	}

	buf := &bytes.Buffer{}
	if err := EncodePixels(buf, h, pix); err != nil {
		t.Fatalf("EncodePixels: %v", err)
	}
	enc := buf.Bytes()
	if len(enc) < (headerSize + len(endMarker)) {
		t.Fatalf("encoding is too short: % 02X", enc)
	}

	wantHeader := []byte{
		'q', 'o', 'i', 'f',
		0x00, 0x00, 0x00, uint8(len(pixels)),
		0x00, 0x00, 0x00, 0x01,
		uint8(channels), 0x00,
	}
	if got := enc[:headerSize]; !bytes.Equal(got, wantHeader) {
		t.Fatalf("header: got % 02X, want % 02X", got, wantHeader)
	}
	if got := enc[len(enc)-len(endMarker):]; !bytes.Equal(got, endMarker[:]) {
		t.Fatalf("end marker: got % 02X, want % 02X", got, endMarker[:])
	}
	return enc[headerSize : len(enc)-len(endMarker)]
}

func repeat(p Pixel, n int) []Pixel {
	ret := make([]Pixel, n)
	for i := range ret {
		ret[i] = p
	}
	return ret
}

func TestEncodeChunks(tt *testing.T) {
	red := Pixel{R: 128, G: 0, B: 0, A: 0xFF}
	black := startPixel

	testCases := []struct {
		name   string
		pixels []Pixel
		want   []byte
	}{{
		name:   "rgb",
		pixels: []Pixel{red},
		want:   []byte{TagRGB, 128, 0, 0},
	}, {
		name:   "rgba",
		pixels: []Pixel{{R: 0, G: 0, B: 0, A: 128}},
		want:   []byte{TagRGBA, 0, 0, 0, 128},
	}, {
		name:   "index",
		pixels: []Pixel{red, {R: 0, G: 127, B: 0, A: 0xFF}, red},
		want:   []byte{TagRGB, 128, 0, 0, TagRGB, 0, 127, 0, TagIndex | 53},
	}, {
		name:   "index slot overwritten by a collision",
		pixels: []Pixel{red, black, red},
		want:   []byte{TagRGB, 128, 0, 0, TagRGB, 0, 0, 0, TagRGB, 128, 0, 0},
	}, {
		name:   "diff",
		pixels: []Pixel{red, {R: 129, G: 0, B: 0, A: 0xFF}},
		want:   []byte{TagRGB, 128, 0, 0, TagDiff | 0b_11_10_10},
	}, {
		name:   "diff of +1 in every channel",
		pixels: []Pixel{{R: 10, G: 10, B: 10, A: 0xFF}, {R: 11, G: 11, B: 11, A: 0xFF}},
		want:   []byte{TagLuma | 42, 0x88, TagDiff | 0b_11_11_11},
	}, {
		name:   "diff of +2 in red is luma",
		pixels: []Pixel{{R: 10, G: 10, B: 10, A: 0xFF}, {R: 12, G: 10, B: 10, A: 0xFF}},
		want:   []byte{TagLuma | 42, 0x88, TagLuma | 32, 0xA8},
	}, {
		name:   "luma",
		pixels: []Pixel{red, {R: 151, G: 31, B: 38, A: 0xFF}},
		want:   []byte{TagRGB, 128, 0, 0, TagLuma | 0b_111111, 0b_0000_1111},
	}, {
		name:   "no wraparound",
		pixels: []Pixel{{R: 128, G: 255, B: 0, A: 0xFF}, {R: 128, G: 0, B: 255, A: 0xFF}},
		want:   []byte{TagRGB, 128, 255, 0, TagRGB, 128, 0, 255},
	}, {
		name:   "alpha change",
		pixels: []Pixel{{R: 10, G: 10, B: 10, A: 0xFF}, {R: 10, G: 10, B: 10, A: 0xFE}},
		want:   []byte{TagLuma | 42, 0x88, TagRGBA, 10, 10, 10, 0xFE},
	}, {
		name:   "run of 62 then a new pixel",
		pixels: append(repeat(black, 62), red),
		want:   []byte{TagRun | 61, TagRGB, 128, 0, 0},
	}, {
		name:   "run of 63",
		pixels: repeat(black, 63),
		want:   []byte{TagRun | 61, TagRun | 0},
	}, {
		name:   "run of 124",
		pixels: repeat(black, 124),
		want:   []byte{TagRun | 61, TagRun | 61},
	}, {
		name:   "run before end marker",
		pixels: []Pixel{red, red},
		want:   []byte{TagRGB, 128, 0, 0, TagRun | 0},
	}, {
		name:   "runs do not update the cache",
		pixels: []Pixel{black, black, {R: 127, G: 0, B: 0, A: 0xFF}, black},
		want:   []byte{TagRun | 1, TagRGB, 127, 0, 0, TagRGB, 0, 0, 0},
	}}

	for _, tc := range testCases {
		tt.Run(tc.name, func(t *testing.T) {
			got := encodeChunks(t, ChannelsRGBA, tc.pixels...)
			if !bytes.Equal(got, tc.want) {
				t.Fatalf("got % 02X, want % 02X", got, tc.want)
			}
		})
	}
}

func TestEncodeChunksRGB(tt *testing.T) {
	got := encodeChunks(tt, ChannelsRGB, Pixel{R: 1, G: 2, B: 3, A: 0xFF}, Pixel{R: 1, G: 2, B: 3, A: 0xFF})
	want := []byte{TagLuma | 34, 0x79, TagRun | 0}
	if !bytes.Equal(got, want) {
		tt.Fatalf("got % 02X, want % 02X", got, want)
	}
}

func TestEncodePixelsBadArguments(tt *testing.T) {
	testCases := []struct {
		name string
		h    Header
		pix  []byte
		want error
	}{{
		name: "channels 2",
		h:    Header{Width: 1, Height: 1, Channels: 2},
		pix:  []byte{0, 0},
		want: ErrUnsupportedChannelCount,
	}, {
		name: "short buffer",
		h:    Header{Width: 2, Height: 1, Channels: ChannelsRGB},
		pix:  []byte{0, 0, 0},
		want: ErrBadArgument,
	}, {
		name: "too large",
		h:    Header{Width: 40_000, Height: 40_000, Channels: ChannelsRGBA},
		pix:  nil,
		want: ErrImageIsTooLarge,
	}}

	for _, tc := range testCases {
		err := EncodePixels(&bytes.Buffer{}, tc.h, tc.pix)
		if !errors.Is(err, tc.want) {
			tt.Errorf("tc=%q: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestEncodeEmptyImage(tt *testing.T) {
	buf := &bytes.Buffer{}
	if err := EncodePixels(buf, Header{Channels: ChannelsRGBA, ColorSpace: ColorSpaceLinear}, nil); err != nil {
		tt.Fatalf("EncodePixels: %v", err)
	}
	want := []byte{
		'q', 'o', 'i', 'f',
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x04, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
	}
	if got := buf.Bytes(); !bytes.Equal(got, want) {
		tt.Fatalf("got % 02X, want % 02X", got, want)
	}
}

func TestEncodeImage(tt *testing.T) {
	m := image.NewNRGBA(image.Rect(10, 20, 13, 21))
	m.SetNRGBA(10, 20, color.NRGBA{R: 128, G: 0, B: 0, A: 0xFF})
	m.SetNRGBA(11, 20, color.NRGBA{R: 129, G: 0, B: 0, A: 0xFF})
	m.SetNRGBA(12, 20, color.NRGBA{R: 129, G: 0, B: 0, A: 0x80})

	stats := Stats{}
	buf := &bytes.Buffer{}
	if err := Encode(buf, m, &EncodeOptions{Stats: &stats}); err != nil {
		tt.Fatalf("Encode: %v", err)
	}
	want := []byte{
		'q', 'o', 'i', 'f',
		0x00, 0x00, 0x00, 0x03,
		0x00, 0x00, 0x00, 0x01,
		0x04, 0x00,
		TagRGB, 128, 0, 0,
		TagDiff | 0b_11_10_10,
		TagRGBA, 129, 0, 0, 0x80,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
	}
	if got := buf.Bytes(); !bytes.Equal(got, want) {
		tt.Fatalf("got % 02X, want % 02X", got, want)
	}

	wantStats := Stats{Pixels: 3, Bytes: int64(len(want))}
	wantStats.Ops[OpRGB] = 1
	wantStats.Ops[OpDiff] = 1
	wantStats.Ops[OpRGBA] = 1
	if stats != wantStats {
		tt.Fatalf("stats: got %+v, want %+v", stats, wantStats)
	}
}

func TestEncodeImageChannels(tt *testing.T) {
	opaque := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range opaque.Pix {
		opaque.Pix[i] = 0xFF
	}
	translucent := image.NewNRGBA(image.Rect(0, 0, 2, 2))

	testCases := []struct {
		name    string
		m       image.Image
		options *EncodeOptions
		want    Channels
	}{
		{"opaque default", opaque, nil, ChannelsRGB},
		{"translucent default", translucent, nil, ChannelsRGBA},
		{"opaque forced rgba", opaque, &EncodeOptions{Channels: ChannelsRGBA}, ChannelsRGBA},
		{"translucent forced rgb", translucent, &EncodeOptions{Channels: ChannelsRGB}, ChannelsRGB},
	}

	for _, tc := range testCases {
		buf := &bytes.Buffer{}
		if err := Encode(buf, tc.m, tc.options); err != nil {
			tt.Errorf("tc=%q: Encode: %v", tc.name, err)
			continue
		}
		h, err := DecodeHeader(buf)
		if err != nil {
			tt.Errorf("tc=%q: DecodeHeader: %v", tc.name, err)
			continue
		}
		if h.Channels != tc.want {
			tt.Errorf("tc=%q: got %d channels, want %d", tc.name, h.Channels, tc.want)
		}
	}
}

func TestEncodeImageForcedRGBDropsAlpha(tt *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	m.SetNRGBA(0, 0, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40})

	buf := &bytes.Buffer{}
	if err := Encode(buf, m, &EncodeOptions{Channels: ChannelsRGB}); err != nil {
		tt.Fatalf("Encode: %v", err)
	}
	_, pix, err := DecodePixels(buf)
	if err != nil {
		tt.Fatalf("DecodePixels: %v", err)
	}
	if want := []byte{0x10, 0x20, 0x30}; !bytes.Equal(pix, want) {
		tt.Fatalf("got % 02X, want % 02X", pix, want)
	}
}

type failingWriter struct{}

var errFailingWriter = errors.New("failing writer")

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errFailingWriter
}

func TestEncodeReportsWriteErrors(tt *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range m.Pix {
		m.Pix[i] = uint8(i * 7)
	}
	if err := Encode(failingWriter{}, m, nil); !errors.Is(err, errFailingWriter) {
		tt.Fatalf("got %v, want %v", err, errFailingWriter)
	}
}
