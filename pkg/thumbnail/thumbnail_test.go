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

package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestGenerate_Landscape(t *testing.T) {
	thumb, err := Generate(pngImage(t, 400, 300), 200)
	require.NoError(t, err)

	w, h := decodeDims(t, thumb)
	assert.Equal(t, 200, w)
	assert.Equal(t, 150, h)
}

func TestGenerate_Portrait(t *testing.T) {
	thumb, err := Generate(pngImage(t, 150, 600), 150)
	require.NoError(t, err)

	w, h := decodeDims(t, thumb)
	assert.Equal(t, 37, w)
	assert.Equal(t, 150, h)
}

func TestGenerate_NoUpscale(t *testing.T) {
	thumb, err := Generate(pngImage(t, 50, 40), 200)
	require.NoError(t, err)

	w, h := decodeDims(t, thumb)
	assert.Equal(t, 50, w)
	assert.Equal(t, 40, h)
}

func TestGenerate_NotAnImage(t *testing.T) {
	_, err := Generate([]byte("definitely not an image"), 200)
	assert.Error(t, err)
}

func TestGenerate_InvalidDimension(t *testing.T) {
	_, err := Generate(pngImage(t, 10, 10), 0)
	assert.Error(t, err)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/png"))
	assert.True(t, IsImage("image/jpeg"))
	assert.False(t, IsImage("application/pdf"))
	assert.False(t, IsImage(""))
}
