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

// Package thumbnail produces downscaled JPEG previews of image blobs.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

// Quality is the JPEG quality used for every generated thumbnail.
const Quality = 80

// IsImage reports whether a MIME type denotes a decodable image.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// Generate decodes an image blob and re-encodes it as a JPEG whose
// longest side is at most maxDim pixels, preserving aspect ratio.
// Images already within bounds are still re-encoded so the thumbnail
// tier holds a uniform format.
func Generate(data []byte, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		return nil, fmt.Errorf("thumbnail dimension must be positive, got %d", maxDim)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image has empty bounds")
	}

	tw, th := fit(w, h, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales (w, h) so the longest side equals maxDim, never upscaling.
func fit(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}
