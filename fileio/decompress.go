package fileio

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/carbocation/pfx"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZ:     {0x1f, 0x9d},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// DetectDataType compares the leading bytes of a stream against a set of
// known compression signatures. Byte code signatures from
// https://stackoverflow.com/a/19127748/199475
func DetectDataType(head []byte) DataType {
Outer:
	for dt, sig := range byteCodeSigs {
		if len(head) < len(sig) {
			continue
		}
		for position := range sig {
			if head[position] != sig[position] {
				continue Outer
			}
		}
		return dt
	}

	return DataTypeNoCompression
}

// MaybeDecompressReadCloser peeks at the start of rc and, if it looks
// compressed, wraps it in the matching decompressor. Closing the result also
// closes rc.
func MaybeDecompressReadCloser(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)

	// Short files are fine: Peek returns what it has along with io.EOF.
	head, err := br.Peek(6)
	if err == io.EOF {
		err = nil
	} else if err != nil {
		return nil, pfx.Err(err)
	}

	var r io.Reader
	switch DetectDataType(head) {
	case DataTypeGzip:
		r, err = gzip.NewReader(br)
	case DataTypeZip:
		zr := zipstream.NewReader(br)
		// Only the first entry of an archive is read.
		if _, err = zr.Next(); err == nil {
			r = zr
		}
	case DataTypeBZip2:
		r = bzip2.NewReader(br)
	case DataTypeXZ:
		r, err = xz.NewReader(br, 0)
	case DataTypeZ:
		// Unix compress uses a variable-width LZW that compress/lzw does not
		// decode.
		err = fmt.Errorf("unix compress (.Z) input is not supported; recompress with gzip")
	default:
		r = br
	}
	if err != nil {
		return nil, pfx.Err(err)
	}

	return &chainedCloser{Reader: r, under: rc}, nil
}

// chainedCloser "upgrades" decompressing readers so that Close reaches the
// underlying file or object reader.
type chainedCloser struct {
	io.Reader
	under io.Closer
}

func (c *chainedCloser) Close() error {
	if cl, ok := c.Reader.(io.Closer); ok {
		if err := cl.Close(); err != nil {
			c.under.Close()
			return err
		}
	}

	return c.under.Close()
}
