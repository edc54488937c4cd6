// Copyright 2026 The QOI Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package qoi

// Chunk tags. The 8-bit tags are checked before the 2-bit ones, which are the
// top two bits of the first byte of the chunk.
const (
	TagIndex = uint8(0x00) // 00xxxxxx
	TagDiff  = uint8(0x40) // 01xxxxxx
	TagLuma  = uint8(0x80) // 10xxxxxx
	TagRun   = uint8(0xC0) // 11xxxxxx
	TagRGB   = uint8(0xFE) // 11111110
	TagRGBA  = uint8(0xFF) // 11111111

	tagMask2 = uint8(0xC0)
)

// MaxRunLength is the longest run that one chunk can hold. Run lengths of 63
// and 64 would collide with TagRGB and TagRGBA.
const MaxRunLength = 62

// OpKind is the kind of an encoded chunk.
type OpKind uint8

const (
	OpIndex OpKind = iota
	OpDiff
	OpLuma
	OpRun
	OpRGB
	OpRGBA

	NumOpKinds = 6
)

func (k OpKind) String() string {
	switch k {
	case OpIndex:
		return "index"
	case OpDiff:
		return "diff"
	case OpLuma:
		return "luma"
	case OpRun:
		return "run"
	case OpRGB:
		return "rgb"
	case OpRGBA:
		return "rgba"
	}
	return "invalid"
}

// Op is one chunk, decoded from or about to be encoded to the byte stream.
//
// Which fields are meaningful depends on the Kind:
//   - OpIndex: Index, in [0, 64).
//   - OpDiff: DR, DG and DB, each in [-2, 1].
//   - OpLuma: DG in [-32, 31], DR and DB are the red and blue deltas minus
//     DG, each in [-8, 7].
//   - OpRun: Length, in [1, 62].
//   - OpRGB: Pixel, ignoring its alpha.
//   - OpRGBA: Pixel.
type Op struct {
	Kind   OpKind
	Index  uint8
	Length uint8
	DR     int8
	DG     int8
	DB     int8
	Pixel  Pixel
}

// apply returns the pixel that o produces, given the previous pixel and the
// color history.
//
// Delta arithmetic is modulo 256: a red channel of 0 plus a delta of -1 is
// 255.
func (o Op) apply(prev Pixel, cache *Cache) Pixel {
	switch o.Kind {
	case OpIndex:
		return cache[o.Index&0x3F]
	case OpDiff:
		return Pixel{
			R: prev.R + uint8(o.DR),
			G: prev.G + uint8(o.DG),
			B: prev.B + uint8(o.DB),
			A: prev.A,
		}
	case OpLuma:
		return Pixel{
			R: prev.R + uint8(o.DG+o.DR),
			G: prev.G + uint8(o.DG),
			B: prev.B + uint8(o.DG+o.DB),
			A: prev.A,
		}
	case OpRGB:
		return Pixel{R: o.Pixel.R, G: o.Pixel.G, B: o.Pixel.B, A: prev.A}
	case OpRGBA:
		return o.Pixel
	}
	return prev
}

// opMatcher reports whether cur can be encoded, relative to prev and the color
// history, as one particular kind of chunk.
type opMatcher func(prev Pixel, cur Pixel, cache *Cache) (Op, bool)

// opMatchers are tried in order and the first match wins. The encoder and
// decoder agree on the byte stream only if this order is kept.
//
// Runs are not listed. They depend on how many pixels have been seen, not just
// on prev and cur, and the encoder handles them before consulting this table.
var opMatchers = [...]opMatcher{
	matchIndex,
	matchDiff,
	matchLuma,
	matchRGB,
	matchRGBA,
}

// classify returns the chunk for a pixel that does not extend a run.
func classify(prev Pixel, cur Pixel, cache *Cache) Op {
	for _, m := range opMatchers {
		if op, ok := m(prev, cur, cache); ok {
			return op
		}
	}
	// Unreachable: matchRGBA always matches.
	return Op{Kind: OpRGBA, Pixel: cur}
}

func matchIndex(prev Pixel, cur Pixel, cache *Cache) (Op, bool) {
	slot := Hash(cur)
	if cache[slot] != cur {
		return Op{}, false
	}
	return Op{Kind: OpIndex, Index: uint8(slot)}, true
}

// The deltas are plain integer differences. A channel going from 255 to 0 is a
// delta of -255, not +1, so it is never a Diff or Luma chunk, even though the
// decoder's modulo 256 arithmetic could represent it.

func matchDiff(prev Pixel, cur Pixel, cache *Cache) (Op, bool) {
	if cur.A != prev.A {
		return Op{}, false
	}
	dr := int(cur.R) - int(prev.R)
	dg := int(cur.G) - int(prev.G)
	db := int(cur.B) - int(prev.B)
	if !inRange(dr, -2, 1) || !inRange(dg, -2, 1) || !inRange(db, -2, 1) {
		return Op{}, false
	}
	return Op{Kind: OpDiff, DR: int8(dr), DG: int8(dg), DB: int8(db)}, true
}

func matchLuma(prev Pixel, cur Pixel, cache *Cache) (Op, bool) {
	if cur.A != prev.A {
		return Op{}, false
	}
	dg := int(cur.G) - int(prev.G)
	drdg := int(cur.R) - int(prev.R) - dg
	dbdg := int(cur.B) - int(prev.B) - dg
	if !inRange(dg, -32, 31) || !inRange(drdg, -8, 7) || !inRange(dbdg, -8, 7) {
		return Op{}, false
	}
	return Op{Kind: OpLuma, DR: int8(drdg), DG: int8(dg), DB: int8(dbdg)}, true
}

func matchRGB(prev Pixel, cur Pixel, cache *Cache) (Op, bool) {
	if cur.A != prev.A {
		return Op{}, false
	}
	return Op{Kind: OpRGB, Pixel: cur}, true
}

func matchRGBA(prev Pixel, cur Pixel, cache *Cache) (Op, bool) {
	return Op{Kind: OpRGBA, Pixel: cur}, true
}

func inRange(x int, lo int, hi int) bool {
	return (lo <= x) && (x <= hi)
}
