// Copyright 2025 The notekeep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vaultcrypt holds the symmetric crypto used for encrypted
// diary attachments: argon2id key derivation from the diary password
// and AES-GCM blob sealing with the nonce prepended to the ciphertext.
package vaultcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// ErrDecrypt is returned when a blob cannot be opened with the given
// key: wrong password, or corrupted ciphertext.
var ErrDecrypt = errors.New("vaultcrypt: decryption failed")

const nonceSize = 12

// DeriveKey derives a 32-byte AES key from the diary password and the
// per-user salt the backend hands out.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// EncryptBlob seals data with AES-GCM under key. The random nonce is
// prepended to the returned ciphertext.
func EncryptBlob(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return append(nonce, aesgcm.Seal(nil, nonce, data, nil)...), nil
}

// DecryptBlob opens a blob produced by EncryptBlob (or by the backend's
// matching scheme). Authentication failure maps to ErrDecrypt so
// callers can present a wrong-password message.
func DecryptBlob(ciphertext, key []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plaintext, nil
}
