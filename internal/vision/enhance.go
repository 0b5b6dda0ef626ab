package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// EnhanceForOCR preprocesses a receipt photo for better OCR results:
// grayscale, contrast boost, sharpening, and a mild brightness lift help
// thermal-paper receipts shot under shop lighting.
func EnhanceForOCR(img []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	out := imaging.Grayscale(src)
	out = imaging.AdjustContrast(out, 30)
	out = imaging.Sharpen(out, 1.5)
	out = imaging.AdjustBrightness(out, 10)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
