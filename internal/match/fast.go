package match

import "sort"

// FAST-9 segment test on a Bresenham circle of radius 3: a pixel is a corner
// when at least 9 contiguous circle pixels are all brighter or all darker
// than the center by the intensity threshold.

const (
	fastThreshold = 20
	fastArc       = 9
	fastRadius    = 3
)

// circleOffsets is the 16-pixel Bresenham circle of radius 3, clockwise from
// twelve o'clock.
var circleOffsets = [16][2]int{
	{0, -3}, {1, -3}, {2, -2}, {3, -1},
	{3, 0}, {3, 1}, {2, 2}, {1, 3},
	{0, 3}, {-1, 3}, {-2, 2}, {-3, 1},
	{-3, 0}, {-3, -1}, {-2, -2}, {-1, -3},
}

type keypoint struct {
	x, y  int
	score int
}

// detectCorners returns non-max-suppressed corners sorted by score, strongest
// first.
func detectCorners(g *grayImage) []keypoint {
	if g.w <= 2*fastRadius || g.h <= 2*fastRadius {
		return nil
	}

	scores := make([]int, len(g.pix))
	var raw []keypoint

	for y := fastRadius; y < g.h-fastRadius; y++ {
		for x := fastRadius; x < g.w-fastRadius; x++ {
			s := cornerScore(g, x, y)
			if s > 0 {
				scores[y*g.w+x] = s
				raw = append(raw, keypoint{x: x, y: y, score: s})
			}
		}
	}

	// 3x3 non-max suppression.
	kps := raw[:0]
	for _, kp := range raw {
		best := true
		for dy := -1; dy <= 1 && best; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				if scores[(kp.y+dy)*g.w+kp.x+dx] > kp.score {
					best = false
					break
				}
			}
		}
		if best {
			kps = append(kps, kp)
		}
	}

	sort.Slice(kps, func(i, j int) bool { return kps[i].score > kps[j].score })
	return kps
}

// cornerScore returns 0 for non-corners, otherwise the summed absolute
// difference of the contiguous arc, used for suppression ranking.
func cornerScore(g *grayImage, x, y int) int {
	center := int(g.at(x, y))

	// Classify each circle pixel: +1 brighter, -1 darker, 0 similar.
	var states [16]int8
	var diffs [16]int
	for i, off := range circleOffsets {
		v := int(g.at(x+off[0], y+off[1]))
		d := v - center
		diffs[i] = d
		switch {
		case d > fastThreshold:
			states[i] = 1
		case d < -fastThreshold:
			states[i] = -1
		}
	}

	best := 0
	for _, want := range []int8{1, -1} {
		run := 0
		sum := 0
		// Walk the circle twice to catch arcs that wrap around.
		for i := 0; i < 32; i++ {
			idx := i % 16
			if states[idx] == want {
				run++
				if diffs[idx] < 0 {
					sum -= diffs[idx]
				} else {
					sum += diffs[idx]
				}
				if run >= fastArc && sum > best {
					best = sum
				}
			} else {
				run = 0
				sum = 0
			}
			if i >= 16 && run >= 16 {
				break
			}
		}
	}
	return best
}
