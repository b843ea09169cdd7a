package match

import "math/rand"

// 256-bit binary descriptors built from pairwise intensity tests inside a
// 31x31 patch around each keypoint. The test pattern is fixed at init so
// descriptors are comparable across images and runs.

const (
	descriptorBits = 256
	patchRadius    = 15
)

type descriptor [descriptorBits / 8]byte

// testPattern holds the point pairs for each descriptor bit.
var testPattern [descriptorBits][4]int

func init() {
	// Fixed seed keeps the pattern deterministic.
	rng := rand.New(rand.NewSource(0x5167))
	for i := range testPattern {
		testPattern[i] = [4]int{
			rng.Intn(2*patchRadius+1) - patchRadius,
			rng.Intn(2*patchRadius+1) - patchRadius,
			rng.Intn(2*patchRadius+1) - patchRadius,
			rng.Intn(2*patchRadius+1) - patchRadius,
		}
	}
}

// computeDescriptor builds the descriptor for one keypoint on the smoothed
// image. Returns ok=false when the patch does not fit inside the image.
func computeDescriptor(g *grayImage, kp keypoint) (descriptor, bool) {
	var d descriptor
	if kp.x < patchRadius || kp.y < patchRadius ||
		kp.x >= g.w-patchRadius || kp.y >= g.h-patchRadius {
		return d, false
	}

	for i, t := range testPattern {
		a := g.at(kp.x+t[0], kp.y+t[1])
		b := g.at(kp.x+t[2], kp.y+t[3])
		if a < b {
			d[i/8] |= 1 << uint(i%8)
		}
	}
	return d, true
}
