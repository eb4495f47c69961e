package codec

import (
	"bytes"
	"crypto/cipher"
	"crypto/des"

	"commtester/internal/errs"
)

// desKey and desIV are the fixed DES-CBC parameters the v2 dialect uses for
// both the header and the payload. There is no key exchange: every peer on
// both sides of a v2 connection hardcodes the same eight bytes.
var (
	desKey = []byte("appexnet")
	desIV  = []byte("lightwan")
)

// pkcs7Pad pads b to a multiple of blockSize using PKCS#7 (every pad byte
// equals the pad length, including a full block of padding when b is
// already aligned).
func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	pad := bytes.Repeat([]byte{byte(n)}, n)
	return append(append([]byte(nil), b...), pad...)
}

// pkcs7Unpad strips and validates PKCS#7 padding.
func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errs.New(errs.BadFrame, "ciphertext not block-aligned")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, errs.New(errs.BadFrame, "invalid pkcs7 padding length")
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errs.New(errs.BadFrame, "invalid pkcs7 padding bytes")
		}
	}
	return b[:len(b)-n], nil
}

// EncryptDES PKCS#7-pads plaintext to the DES block size and CBC-encrypts
// it under the fixed key/IV.
func EncryptDES(plaintext []byte) ([]byte, error) {
	block, err := des.NewCipher(desKey)
	if err != nil {
		return nil, errs.Wrap(errs.BadFrame, "des cipher init", err)
	}
	padded := pkcs7Pad(plaintext, des.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, desIV).CryptBlocks(out, padded)
	return out, nil
}

// DecryptDES CBC-decrypts ciphertext under the fixed key/IV and strips the
// PKCS#7 padding.
func DecryptDES(ciphertext []byte) ([]byte, error) {
	block, err := des.NewCipher(desKey)
	if err != nil {
		return nil, errs.Wrap(errs.BadFrame, "des cipher init", err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%des.BlockSize != 0 {
		return nil, errs.New(errs.BadFrame, "des ciphertext not block-aligned")
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, desIV).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out, des.BlockSize)
}
