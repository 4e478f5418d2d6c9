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

package unified

import "errors"

var (
	// ErrUnsupportedModule marks programmer errors: an operation was
	// called for a module that does not support it.
	ErrUnsupportedModule = errors.New("unified: operation not supported for module")

	// ErrDeleteBlocked wraps the backend's preflight warning when a
	// file cannot be deleted safely. The warning text must be shown to
	// the user verbatim.
	ErrDeleteBlocked = errors.New("unified: deletion blocked by preflight check")

	// ErrEncryptionNotSupported is returned when encryption parameters
	// are passed for a non-diary module.
	ErrEncryptionNotSupported = errors.New("unified: encryption only applies to diary files")

	// ErrMissingKey is returned when an encrypted diary file is
	// downloaded without a decryption key.
	ErrMissingKey = errors.New("unified: encrypted file requires a decryption key")
)
