package http

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// maxPhotoPixels bounds the decoded size of an upload; a small compressed
// file can still describe a huge bitmap.
const maxPhotoPixels = 40_000_000

// compressPhoto decodes a JPEG, PNG or GIF upload and re-encodes it as JPEG at
// the given quality.
func compressPhoto(data []byte, quality int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable photo: %v", errBadRequest, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPhotoPixels {
		return nil, fmt.Errorf("%w: %dx%d pixels exceeds %d", errPhotoTooLarge, cfg.Width, cfg.Height, maxPhotoPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable photo: %v", errBadRequest, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	return buf.Bytes(), nil
}
