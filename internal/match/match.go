// Package match measures visual similarity between two images by detecting
// corner keypoints, computing binary descriptors, and counting cross-checked
// Hamming matches between them.
package match

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// DefaultThreshold is the match count above which two images are considered
// similar.
const DefaultThreshold = 30

// maxDimension caps the working image size; larger inputs are downscaled
// before detection so match counts stay comparable across resolutions.
const maxDimension = 1024

// maxFeatures caps how many keypoints are kept per image, strongest first.
const maxFeatures = 500

// Result reports one comparison.
type Result struct {
	Matches    int  `json:"matches"`
	Threshold  int  `json:"threshold"`
	Similar    bool `json:"similar"`
	KeypointsA int  `json:"keypoints_a"`
	KeypointsB int  `json:"keypoints_b"`
}

// Compare detects features in both images and returns the match result.
func Compare(a, b image.Image, threshold int) *Result {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	ga := newGrayImage(a)
	gb := newGrayImage(b)

	kpsA, descA := detectAndCompute(ga)
	kpsB, descB := detectAndCompute(gb)

	res := &Result{
		Threshold:  threshold,
		KeypointsA: len(kpsA),
		KeypointsB: len(kpsB),
	}

	// No descriptors on either side means no basis for similarity.
	if len(descA) == 0 || len(descB) == 0 {
		return res
	}

	res.Matches = countCrossMatches(descA, descB)
	res.Similar = res.Matches > threshold
	return res
}

// MatchCount returns only the cross-checked match count between two images.
func MatchCount(a, b image.Image) int {
	return Compare(a, b, DefaultThreshold).Matches
}

// Similar reports whether two images share more than threshold feature
// matches.
func Similar(a, b image.Image, threshold int) bool {
	return Compare(a, b, threshold).Similar
}

// CompareFiles loads two image files (PNG or JPEG) and compares them.
func CompareFiles(pathA, pathB string, threshold int) (*Result, error) {
	a, err := loadImage(pathA)
	if err != nil {
		return nil, err
	}
	b, err := loadImage(pathB)
	if err != nil {
		return nil, err
	}
	return Compare(a, b, threshold), nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// detectAndCompute runs corner detection and descriptor extraction, keeping
// the strongest keypoints that survive descriptor extraction.
func detectAndCompute(g *grayImage) ([]keypoint, []descriptor) {
	kps := detectCorners(g)
	if len(kps) > maxFeatures {
		kps = kps[:maxFeatures]
	}

	smoothed := g.boxBlur()
	outKps := make([]keypoint, 0, len(kps))
	descs := make([]descriptor, 0, len(kps))
	for _, kp := range kps {
		d, ok := computeDescriptor(smoothed, kp)
		if !ok {
			continue
		}
		outKps = append(outKps, kp)
		descs = append(descs, d)
	}
	return outKps, descs
}

// grayImage is a tight grayscale buffer used by the detector.
type grayImage struct {
	pix  []uint8
	w, h int
}

func (g *grayImage) at(x, y int) uint8 {
	return g.pix[y*g.w+x]
}

// newGrayImage converts to grayscale, downscaling large inputs first.
func newGrayImage(src image.Image) *grayImage {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxDimension || h > maxDimension {
		scale := float64(maxDimension) / float64(max(w, h))
		nw, nh := int(float64(w)*scale), int(float64(h)*scale)
		if nw < 1 {
			nw = 1
		}
		if nh < 1 {
			nh = 1
		}
		dst := image.NewGray(image.Rect(0, 0, nw, nh))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
		return &grayImage{pix: dst.Pix, w: nw, h: nh}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return &grayImage{pix: dst.Pix, w: w, h: h}
}

// boxBlur applies a 5x5 mean filter. Descriptor tests compare single pixels,
// so smoothing first makes them stable under noise.
func (g *grayImage) boxBlur() *grayImage {
	out := &grayImage{pix: make([]uint8, len(g.pix)), w: g.w, h: g.h}
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			var sum, n int
			for dy := -2; dy <= 2; dy++ {
				yy := y + dy
				if yy < 0 || yy >= g.h {
					continue
				}
				for dx := -2; dx <= 2; dx++ {
					xx := x + dx
					if xx < 0 || xx >= g.w {
						continue
					}
					sum += int(g.at(xx, yy))
					n++
				}
			}
			out.pix[y*g.w+x] = uint8(sum / n)
		}
	}
	return out
}
