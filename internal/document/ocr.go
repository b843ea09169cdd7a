package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// OCRPages runs tesseract over rendered page images and returns the
// recognized text per page. Used as a fallback for scanned PDFs that carry
// no extractable text layer.
func OCRPages(ctx context.Context, images [][]byte, languages []string) ([]string, error) {
	pages := make([]string, 0, len(images))
	for i, img := range images {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		text, err := ocrImage(img, languages)
		if err != nil {
			return nil, fmt.Errorf("ocr page %d: %w", i+1, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func ocrImage(img []byte, languages []string) (string, error) {
	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(languages) > 0 {
		if err := c.SetLanguage(languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// NeedsOCR reports whether extracted pages are effectively empty, meaning
// the document is likely a scan without a text layer.
func NeedsOCR(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return len(pages) > 0
}
