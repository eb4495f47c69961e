// Package codec implements the CommServer wire framing: the v3 plaintext
// dialect (checksummed header) and the v2 DES-CBC encrypted dialect, plus
// the DES-CBC/PKCS#7 primitives v2 depends on.
//
// Header layout is resolved against original_source/tester.py — see
// SPEC_FULL.md §3.1/3.2 for why the header sizes differ from spec.md's
// prose (which is internally inconsistent with its own field list).
package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/lunixbochs/struc"

	"commtester/internal/errs"
)

const (
	// MsgVersionV3 is the plaintext dialect's Version byte.
	MsgVersionV3 = 0x30
	// MsgVersionV2 is the encrypted dialect's VerMagic value.
	MsgVersionV2 = 202

	// HeaderV3Size is the wire size of the v3 header, checksum included.
	HeaderV3Size = 24
	// HeaderV2PlainSize is the v2 header's size before DES-CBC encryption.
	HeaderV2PlainSize = 20
	// HeaderV2CipherSize is the v2 header's size after PKCS#7 padding to
	// the DES block size (8) and DES-CBC encryption.
	HeaderV2CipherSize = 24
)

var bigEndian = &struc.Options{Order: binary.BigEndian}

// Dialect selects which wire format a connection or replay shard speaks.
type Dialect int

const (
	DialectV3 Dialect = iota
	DialectV2
)

// HeaderV3 is the plaintext wire header for the v3 dialect.
type HeaderV3 struct {
	Version       uint8
	Reserved      uint8
	Checksum      uint16
	CustomerId    uint32
	ClientId      uint32
	OrchId        uint16
	Type          uint16
	Len           uint32
	TransactionId uint32
}

// HeaderV2 is the v2 dialect's header as it exists before encryption; on
// the wire it only ever appears DES-CBC-encrypted (see EncodeV2/DecodeHeaderV2).
type HeaderV2 struct {
	VerMagic      uint16
	OrchId        uint16
	CustomerId    uint32
	ClientId      uint16
	Type          uint16
	Len           uint32
	TransactionId uint32
}

// sumWords adds up b as little-endian 16-bit words. b's length must be even.
func sumWords(b []byte) uint32 {
	var s uint32
	for i := 0; i+1 < len(b); i += 2 {
		s += uint32(binary.LittleEndian.Uint16(b[i : i+2]))
	}
	return s
}

// foldCarry folds a 32-bit accumulator down to 16 bits with end-around
// carry, applied twice (one fold can leave a residual carry out of the top
// half when the accumulator itself overflowed 17 bits).
func foldCarry(s uint32) uint16 {
	s = (s & 0xffff) + (s >> 16)
	s = (s & 0xffff) + (s >> 16)
	return uint16(s)
}

// checksumCompute computes the one's-complement checksum over header, which
// must have its checksum slot (bytes 2-3) already zeroed.
func checksumCompute(header []byte) uint16 {
	return foldCarry(sumWords(header)) ^ 0xffff
}

// ChecksumVerify reports whether header (bytes 2-3 included, as received)
// folds to all-ones under the one's-complement algorithm.
func ChecksumVerify(header []byte) bool {
	return foldCarry(sumWords(header))^0xffff == 0
}

// writeChecksumLE writes v at header[2:4] low-byte-first. This is the
// normal encoding path.
func writeChecksumLE(header []byte, v uint16) {
	header[2] = byte(v)
	header[3] = byte(v >> 8)
}

// writeChecksumBE writes v at header[2:4] high-byte-first. This mirrors the
// original source's header_checksum_set, used only by the ForceChecksum
// override so conformance tests can manufacture a header with a specific
// (possibly invalid) checksum byte pattern — the reversed byte order here
// is intentional and load-bearing, not a bug to "fix".
func writeChecksumBE(header []byte, v uint16) {
	header[2] = byte(v >> 8)
	header[3] = byte(v)
}

// EncodeV3 packs a v3 header plus payload into wire bytes. ForceChecksum,
// when non-nil, overrides the computed checksum with the given value
// (written high-byte-first, per writeChecksumBE) so callers can construct
// intentionally invalid frames.
func EncodeV3(h HeaderV3, payload []byte, forceChecksum *uint16) ([]byte, error) {
	h.Version = MsgVersionV3
	h.Len = uint32(len(payload))
	h.Checksum = 0

	var buf bytes.Buffer
	if err := struc.PackWithOptions(&buf, &h, bigEndian); err != nil {
		return nil, errs.Wrap(errs.BadFrame, "pack v3 header", err)
	}
	raw := buf.Bytes()
	if len(raw) != HeaderV3Size {
		return nil, errs.New(errs.BadFrame, "unexpected v3 header size")
	}

	if forceChecksum != nil {
		writeChecksumBE(raw, *forceChecksum)
	} else {
		writeChecksumLE(raw, checksumCompute(raw))
	}

	out := make([]byte, 0, HeaderV3Size+len(payload))
	out = append(out, raw...)
	out = append(out, payload...)
	return out, nil
}

// DecodeHeaderV3 parses a 24-byte v3 header, verifying its checksum and
// version. It does not consume the payload.
func DecodeHeaderV3(data []byte) (HeaderV3, error) {
	if len(data) != HeaderV3Size {
		return HeaderV3{}, errs.New(errs.BadFrame, "v3 header must be 24 bytes")
	}
	if !ChecksumVerify(data) {
		return HeaderV3{}, errs.New(errs.BadFrame, "v3 checksum verification failed")
	}
	var h HeaderV3
	if err := struc.UnpackWithOptions(bytes.NewReader(data), &h, bigEndian); err != nil {
		return HeaderV3{}, errs.Wrap(errs.BadFrame, "unpack v3 header", err)
	}
	if h.Version != MsgVersionV3 {
		return HeaderV3{}, errs.New(errs.BadFrame, "unexpected v3 version")
	}
	return h, nil
}

// EncodeV2 DES-CBC-encrypts payload (if any) and the 20-byte plaintext
// header (Len set to the ciphertext payload size), then concatenates them.
func EncodeV2(h HeaderV2, payload []byte) ([]byte, error) {
	h.VerMagic = MsgVersionV2

	var encPayload []byte
	if len(payload) > 0 {
		p, err := EncryptDES(payload)
		if err != nil {
			return nil, err
		}
		encPayload = p
	}
	h.Len = uint32(len(encPayload))

	var buf bytes.Buffer
	if err := struc.PackWithOptions(&buf, &h, bigEndian); err != nil {
		return nil, errs.Wrap(errs.BadFrame, "pack v2 header", err)
	}
	if buf.Len() != HeaderV2PlainSize {
		return nil, errs.New(errs.BadFrame, "unexpected v2 plaintext header size")
	}
	encHeader, err := EncryptDES(buf.Bytes())
	if err != nil {
		return nil, err
	}
	if len(encHeader) != HeaderV2CipherSize {
		return nil, errs.New(errs.BadFrame, "unexpected v2 ciphertext header size")
	}

	out := make([]byte, 0, len(encHeader)+len(encPayload))
	out = append(out, encHeader...)
	out = append(out, encPayload...)
	return out, nil
}

// DecodeHeaderV2 decrypts a 24-byte ciphertext header and validates its
// VerMagic. Len on the returned header is the ciphertext payload size.
func DecodeHeaderV2(data []byte) (HeaderV2, error) {
	if len(data) != HeaderV2CipherSize {
		return HeaderV2{}, errs.New(errs.BadFrame, "v2 header must be 24 ciphertext bytes")
	}
	plain, err := DecryptDES(data)
	if err != nil {
		return HeaderV2{}, err
	}
	if len(plain) != HeaderV2PlainSize {
		return HeaderV2{}, errs.New(errs.BadFrame, "unexpected v2 decrypted header size")
	}
	var h HeaderV2
	if err := struc.UnpackWithOptions(bytes.NewReader(plain), &h, bigEndian); err != nil {
		return HeaderV2{}, errs.Wrap(errs.BadFrame, "unpack v2 header", err)
	}
	if h.VerMagic != MsgVersionV2 {
		return HeaderV2{}, errs.New(errs.BadFrame, "unexpected v2 magic")
	}
	return h, nil
}

// DecryptPayloadV2 decrypts and unpads a v2 ciphertext payload.
func DecryptPayloadV2(cipher []byte) ([]byte, error) {
	if len(cipher) == 0 {
		return nil, nil
	}
	return DecryptDES(cipher)
}
