package voxel

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/tracetube/pkg/errors"
)

// Compression selects how Encode compresses the packed voxel bits.
type Compression uint8

const (
	Uncompressed Compression = iota
	Snappy
	Zstd
)

func (c Compression) String() string {
	switch c {
	case Uncompressed:
		return "none"
	case Snappy:
		return "snappy"
	case Zstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCompression converts a compression name as accepted on the command
// line and in config files.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "zstd":
		return Zstd, nil
	case "snappy":
		return Snappy, nil
	case "none":
		return Uncompressed, nil
	}
	return 0, errors.New(errors.ErrCodeUnsupported, "unknown compression %q (want zstd, snappy or none)", s)
}

var magic = [4]byte{'T', 'T', 'V', 'X'}

// header is the fixed prefix of an encoded mask. The CRC covers the payload
// as stored, after compression.
type header struct {
	Magic       [4]byte
	Compression Compression
	Shape       [3]uint32
	CRC         uint32
}

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
)

func zstdCodec() (*zstd.Encoder, *zstd.Decoder) {
	zstdOnce.Do(func() {
		zstdEnc, _ = zstd.NewWriter(nil)
		zstdDec, _ = zstd.NewReader(nil)
	})
	return zstdEnc, zstdDec
}

// Encode serialises m as a small header followed by its voxels packed one
// bit each and compressed with c.
func Encode(m *Mask, c Compression) ([]byte, error) {
	packed := pack(m.Data)

	var payload []byte
	switch c {
	case Uncompressed:
		payload = packed
	case Snappy:
		payload = snappy.Encode(nil, packed)
	case Zstd:
		enc, _ := zstdCodec()
		payload = enc.EncodeAll(packed, nil)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "illegal compression %d", c)
	}

	h := header{
		Magic:       magic,
		Compression: c,
		Shape:       [3]uint32{uint32(m.Shape[0]), uint32(m.Shape[1]), uint32(m.Shape[2])},
		CRC:         crc32.ChecksumIEEE(payload),
	}
	var buf bytes.Buffer
	buf.Grow(binary.Size(h) + len(payload))
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write mask header")
	}
	buf.Write(payload)
	return buf.Bytes(), nil
}

// Decode reverses Encode.
func Decode(data []byte) (*Mask, error) {
	var h header
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read mask header")
	}
	if h.Magic != magic {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "not an encoded mask")
	}
	payload := data[binary.Size(h):]
	if crc := crc32.ChecksumIEEE(payload); crc != h.CRC {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "bad checksum: stored %x got %x", h.CRC, crc)
	}

	shape := [3]int{int(h.Shape[0]), int(h.Shape[1]), int(h.Shape[2])}
	m, err := NewMask(shape)
	if err != nil {
		return nil, err
	}

	var packed []byte
	switch h.Compression {
	case Uncompressed:
		packed = payload
	case Snappy:
		packed, err = snappy.Decode(nil, payload)
	case Zstd:
		_, dec := zstdCodec()
		packed, err = dec.DecodeAll(payload, nil)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "illegal compression %d", h.Compression)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decompress %s payload", h.Compression)
	}
	if len(packed) != (m.Len()+7)/8 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "payload has %d bytes, want %d", len(packed), (m.Len()+7)/8)
	}
	unpack(packed, m.Data)
	return m, nil
}

func pack(data []uint8) []byte {
	out := make([]byte, (len(data)+7)/8)
	for i, v := range data {
		if v != 0 {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

func unpack(packed []byte, dst []uint8) {
	for i := range dst {
		dst[i] = (packed[i/8] >> (i % 8)) & 1
	}
}
