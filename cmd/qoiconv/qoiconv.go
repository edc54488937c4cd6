// Copyright 2026 The QOI Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// qoiconv decodes and encodes the QOI (Quite OK Image) lossless image file
// format.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/quiteok/qoi/internal/nie"
	"github.com/quiteok/qoi/lib/qoi"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	decodeFlag     = flag.Bool("decode", false, "whether to decode the input")
	encodeFlag     = flag.Bool("encode", false, "whether to encode the input")
	outputFlag     = flag.String("output", "", "output format")
	channelsFlag   = flag.Uint("channels", 0, "channel count to declare when encoding: 3, 4 or 0 (automatic)")
	colorSpaceFlag = flag.Uint("colorspace", 0, "color space to declare when encoding: 0 (sRGB) or 1 (linear)")
	zstdFlag       = flag.Bool("zstd", false, "whether to wrap the encoded output in a zstd frame")
	verboseFlag    = flag.Bool("v", false, "whether to print encoding statistics to stderr")
)

const usageStr = `qoiconv decodes and encodes the QOI lossless image file format.

Usage: choose one of

    qoiconv -decode [path]
    qoiconv -encode [path]

The path to the input image file is optional. If omitted, stdin is read.

When decoding you can also pass one of these flags (before the path):

    -output=nie-bn4
    -output=nie-bn8
    -output=png (this is the default)
    -output=raw (the bare RGB or RGBA pixel buffer)

When encoding you can also pass these flags (before the path):

    -channels=3 or -channels=4 (the default picks 3 for opaque images)
    -colorspace=0 (sRGB, the default) or -colorspace=1 (linear)
    -zstd (wrap the QOI file in a zstd frame)
    -v (print chunk statistics to stderr)

The output image is written to stdout.

Decode inputs QOI, optionally zstd-wrapped, and outputs NIE/PNG/raw.
Encode inputs BMP, GIF, JPEG, PNG, QOI, TIFF or WEBP and outputs QOI.
`

var (
	ErrBadChannelsFlag   = errors.New("main: bad -channels flag")
	ErrBadColorSpaceFlag = errors.New("main: bad -colorspace flag")
	ErrBadOutputFlag     = errors.New("main: bad -output flag")
)

// zstdMagic is the first four bytes of every zstd frame.
const zstdMagic = "\x28\xB5\x2F\xFD"

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = func() { os.Stderr.WriteString(usageStr) }
	flag.Parse()

	inFile := os.Stdin
	switch flag.NArg() {
	case 0:
		// No-op.
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		inFile = f
	default:
		return errors.New("too many filenames; the maximum is one")
	}

	out := bufio.NewWriter(os.Stdout)
	if *decodeFlag && !*encodeFlag {
		if err := decode(out, inFile, *outputFlag); err != nil {
			return err
		}
		return out.Flush()
	}
	if !*decodeFlag && *encodeFlag {
		opts, err := encodeOptionsFromFlags()
		if err != nil {
			return err
		}
		if err := encode(out, inFile, opts); err != nil {
			return err
		}
		return out.Flush()
	}
	return errors.New("must specify exactly one of -decode, -encode or -help")
}

type encodeOptions struct {
	qoi        qoi.EncodeOptions
	zstd       bool
	statsLog   *log.Logger
	statsLabel string
}

func encodeOptionsFromFlags() (encodeOptions, error) {
	opts := encodeOptions{zstd: *zstdFlag}
	switch *channelsFlag {
	case 0, 3, 4:
		opts.qoi.Channels = qoi.Channels(*channelsFlag)
	default:
		return encodeOptions{}, ErrBadChannelsFlag
	}
	switch *colorSpaceFlag {
	case 0, 1:
		opts.qoi.ColorSpace = qoi.ColorSpace(*colorSpaceFlag)
	default:
		return encodeOptions{}, ErrBadColorSpaceFlag
	}
	if *verboseFlag {
		opts.statsLog = log.New(os.Stderr, "", 0)
		opts.statsLabel = "stdin"
		if flag.NArg() == 1 {
			opts.statsLabel = flag.Arg(0)
		}
	}
	return opts, nil
}

// unwrap returns a reader of the QOI bytes in src, decompressing them if src
// starts with a zstd frame. The returned func releases the decompressor.
func unwrap(src io.Reader) (io.Reader, func(), error) {
	br := bufio.NewReader(src)
	if magic, err := br.Peek(len(zstdMagic)); (err != nil) || (string(magic) != zstdMagic) {
		return br, func() {}, nil
	}
	dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, nil, fmt.Errorf("zstd.NewReader: %w", err)
	}
	return dec, dec.Close, nil
}

func decode(dst io.Writer, src io.Reader, output string) error {
	switch output {
	case "", "nie-bn4", "nie-bn8", "png", "raw":
		// No-op.
	default:
		return ErrBadOutputFlag
	}

	r, release, err := unwrap(src)
	if err != nil {
		return err
	}
	defer release()

	if output == "raw" {
		_, pix, err := qoi.DecodePixels(r)
		if err != nil {
			return err
		}
		_, err = dst.Write(pix)
		return err
	}

	m, err := qoi.Decode(r)
	if err != nil {
		return err
	}
	switch output {
	case "nie-bn4", "nie-bn8":
		enc := nie.EncodeBN4
		if output == "nie-bn8" {
			enc = nie.EncodeBN8
		}
		b, err := enc(m)
		if err != nil {
			return err
		}
		_, err = dst.Write(b)
		return err
	}
	return png.Encode(dst, m)
}

func encode(dst io.Writer, src io.Reader, opts encodeOptions) error {
	r, release, err := unwrap(src)
	if err != nil {
		return err
	}
	defer release()

	m, _, err := image.Decode(r)
	if err != nil {
		return err
	}

	stats := qoi.Stats{}
	qoiOpts := opts.qoi
	qoiOpts.Stats = &stats

	if !opts.zstd {
		if err := qoi.Encode(dst, m, &qoiOpts); err != nil {
			return err
		}
		opts.logStats(&stats, 0)
		return nil
	}

	counter := &countingWriter{w: dst}
	enc, err := zstd.NewWriter(counter, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("zstd.NewWriter: %w", err)
	}
	if err := qoi.Encode(enc, m, &qoiOpts); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	opts.logStats(&stats, counter.n)
	return nil
}

func (opts encodeOptions) logStats(stats *qoi.Stats, zstdBytes int64) {
	if opts.statsLog == nil {
		return
	}
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "%s: %d pixels, %d bytes", opts.statsLabel, stats.Pixels, stats.Bytes)
	if zstdBytes > 0 {
		fmt.Fprintf(buf, " (%d bytes zstd)", zstdBytes)
	}
	for k := 0; k < qoi.NumOpKinds; k++ {
		fmt.Fprintf(buf, ", %s=%d", qoi.OpKind(k), stats.Ops[k])
	}
	opts.statsLog.Println(buf.String())
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
