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

package vaultcrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	key1 := DeriveKey([]byte("diary password"), []byte("salt-1"))
	key2 := DeriveKey([]byte("diary password"), []byte("salt-1"))
	key3 := DeriveKey([]byte("diary password"), []byte("salt-2"))

	assert.Len(t, key1, 32)
	assert.Equal(t, key1, key2, "derivation must be deterministic")
	assert.NotEqual(t, key1, key3, "different salts must yield different keys")
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))
	plaintext := []byte("a private diary attachment")

	sealed, err := EncryptBlob(plaintext, key)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, sealed)

	opened, err := DecryptBlob(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestDecryptWrongKey(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))
	wrong := DeriveKey([]byte("other pw"), []byte("salt"))

	sealed, err := EncryptBlob([]byte("secret"), key)
	require.NoError(t, err)

	_, err = DecryptBlob(sealed, wrong)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptTruncated(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))

	_, err := DecryptBlob([]byte("short"), key)
	assert.ErrorIs(t, err, ErrDecrypt)
}
