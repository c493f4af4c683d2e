package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// KeyLength is the required key size for AES-256
	KeyLength = 32

	ivLength = aes.BlockSize
)

var (
	ErrInvalidKeyLength  = errors.New("encryption key must be exactly 32 bytes")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// Cipher encrypts and decrypts single string fields with AES-256-CBC.
//
// The IV is fixed (all zeroes), so encryption is a pure function of key and
// plaintext: equal plaintexts always produce equal ciphertexts. That leaks
// equality between stored values, which is normally a reason to use random
// IVs — here it is the point. The database's unique index on the encrypted
// SKU column is what enforces SKU uniqueness, and it can only do that if the
// same SKU always encrypts to the same bytes. Do not switch to random IVs
// without replacing the uniqueness mechanism.
type Cipher struct {
	block cipher.Block
}

// New creates a Cipher from a 32-byte key. The key comes from configuration
// once at startup and never changes for the process lifetime.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeyLength {
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	return &Cipher{block: block}, nil
}

// Encrypt returns the lowercase hex encoding of the AES-256-CBC encryption
// of plaintext under the fixed zero IV, PKCS#7 padded. No IV prefix.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)

	iv := make([]byte, ivLength)
	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(encrypted, padded)

	return hex.EncodeToString(encrypted), nil
}

// Decrypt reverses Encrypt. It fails with ErrInvalidCiphertext if the input
// is not hex, not a whole number of blocks, or carries invalid padding.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	encrypted, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: not a hex string", ErrInvalidCiphertext)
	}

	if len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: length is not a multiple of the block size", ErrInvalidCiphertext)
	}

	iv := make([]byte, ivLength)
	decrypted := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(decrypted, encrypted)

	unpadded, err := pkcs7Unpad(decrypted, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}

	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, errors.New("invalid padding length")
	}

	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New("invalid padding bytes")
		}
	}

	return data[:len(data)-padLen], nil
}
