package imagegen

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/webp"
)

// webpQuality is the lossy encoding quality for saved panels.
const webpQuality = 90

// EncodeWebP re-encodes PNG or JPEG image bytes as WebP.
func EncodeWebP(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, webp.Options{Lossless: false, Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveWebP writes a result to dir/name.webp, creating dir if needed, and
// returns the written path.
func SaveWebP(res *Result, dir, name string) (string, error) {
	if res == nil || len(res.Data) == 0 {
		return "", ErrNoImage
	}

	encoded, err := EncodeWebP(res.Data)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, name+".webp")
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
