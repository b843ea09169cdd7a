package match

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

// syntheticImage draws random filled rectangles so the detector has plenty
// of corners to find. Deterministic per seed.
func syntheticImage(seed int64) image.Image {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, 256, 256))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	for i := 0; i < 60; i++ {
		x := rng.Intn(220)
		y := rng.Intn(220)
		w := 8 + rng.Intn(30)
		h := 8 + rng.Intn(30)
		shade := uint8(rng.Intn(120))
		for yy := y; yy < y+h && yy < 256; yy++ {
			for xx := x; xx < x+w && xx < 256; xx++ {
				img.SetGray(xx, yy, color.Gray{Y: shade})
			}
		}
	}
	return img
}

func TestCompareIdenticalImages(t *testing.T) {
	img := syntheticImage(1)
	res := Compare(img, img, DefaultThreshold)

	if res.KeypointsA == 0 {
		t.Fatal("no keypoints detected in synthetic image")
	}
	if res.Matches <= DefaultThreshold {
		t.Errorf("identical images matched only %d features (threshold %d)", res.Matches, res.Threshold)
	}
	if !res.Similar {
		t.Error("identical images should be similar")
	}
}

func TestCompareDistinctImages(t *testing.T) {
	a := syntheticImage(1)
	b := syntheticImage(99)

	same := Compare(a, a, DefaultThreshold).Matches
	diff := Compare(a, b, DefaultThreshold).Matches
	if diff >= same {
		t.Errorf("distinct images matched %d features, identical matched %d", diff, same)
	}
}

func TestCompareBlankImages(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 128, 128))
	res := Compare(blank, blank, DefaultThreshold)

	// Featureless images yield no descriptors: zero matches, not similar.
	if res.Matches != 0 {
		t.Errorf("blank images matched %d features, want 0", res.Matches)
	}
	if res.Similar {
		t.Error("blank images must not be reported similar")
	}
}

func TestCompareDefaultThreshold(t *testing.T) {
	img := syntheticImage(1)
	res := Compare(img, img, 0)
	if res.Threshold != DefaultThreshold {
		t.Errorf("threshold = %d, want %d", res.Threshold, DefaultThreshold)
	}
}

func TestSimilarRespectsThreshold(t *testing.T) {
	img := syntheticImage(2)
	matches := MatchCount(img, img)
	if matches == 0 {
		t.Fatal("expected nonzero matches")
	}
	// Exactly-at-threshold is not similar; strictly above is.
	if Similar(img, img, matches) {
		t.Error("matches == threshold should not be similar")
	}
	if !Similar(img, img, matches-1) {
		t.Error("matches > threshold should be similar")
	}
}

func TestHammingDistance(t *testing.T) {
	var a, b descriptor
	if got := hammingDistance(a, b); got != 0 {
		t.Errorf("distance of equal descriptors = %d, want 0", got)
	}
	b[0] = 0xFF
	if got := hammingDistance(a, b); got != 8 {
		t.Errorf("distance = %d, want 8", got)
	}
	for i := range b {
		a[i] = 0x00
		b[i] = 0xFF
	}
	if got := hammingDistance(a, b); got != descriptorBits {
		t.Errorf("distance = %d, want %d", got, descriptorBits)
	}
}

func TestCountCrossMatches(t *testing.T) {
	d := func(first byte) descriptor {
		var out descriptor
		out[0] = first
		return out
	}

	// a0<->b1 and a1<->b0 are exact pairs; b2 has no mutual partner.
	descA := []descriptor{d(0x0F), d(0xF0)}
	descB := []descriptor{d(0xF0), d(0x0F), d(0xAA)}

	if got := countCrossMatches(descA, descB); got != 2 {
		t.Errorf("cross matches = %d, want 2", got)
	}
	if got := countCrossMatches(nil, descB); got != 0 {
		t.Errorf("cross matches with empty side = %d, want 0", got)
	}
}

func TestDetectCornersTinyImage(t *testing.T) {
	g := &grayImage{pix: make([]uint8, 16), w: 4, h: 4}
	if kps := detectCorners(g); len(kps) != 0 {
		t.Errorf("tiny image produced %d keypoints", len(kps))
	}
}
