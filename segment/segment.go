package segment

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"influencemap/raster"
	"influencemap/typedef"
)

// Params are the artifact-rejection knobs of the flood fill.
type Params struct {
	Tolerance     int `json:"tolerance"`     // Max per-channel distance from the seed colour (0-255)
	MinRegionSize int `json:"minRegionSize"` // Fills with fewer pixels are discarded
}

// DefaultParams returns the canonical tolerance and minimum size.
func DefaultParams() Params {
	return Params{Tolerance: 15, MinRegionSize: 100}
}

// Result is the output of one segmentation pass.
type Result struct {
	Regions   []*typedef.Region
	Owner     *OwnerIndex
	Discarded int // Fills rejected for being smaller than MinRegionSize
}

// 8-connected neighbourhood.
var neighbours = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Segment partitions the land pixels of buf into regions. Scanning is row-major
// and each fill is a FIFO breadth-first search, so the partition is
// deterministic for a fixed raster and fixed params.
func Segment(buf *raster.Buffer, cls raster.Classifier, params Params) *Result {
	start := time.Now()
	w, h := buf.Width(), buf.Height()
	owner := newOwnerIndex(w, h)
	res := &Result{Owner: owner}
	if w == 0 || h == 0 || buf.Released() {
		return res
	}

	visited := make([]bool, w*h)
	queue := make([]int, 0, 1024)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if visited[idx] {
				continue
			}
			seed := buf.At(x, y)
			if cls.Classify(seed) != raster.Land {
				visited[idx] = true
				continue
			}

			region := &typedef.Region{Seed: seed}
			minX, minY, maxX, maxY := x, y, x, y
			var sumX, sumY int64

			visited[idx] = true
			queue = append(queue[:0], idx)

			for head := 0; head < len(queue); head++ {
				cur := queue[head]
				cx, cy := cur%w, cur/w
				sumX += int64(cx)
				sumY += int64(cy)
				if cx < minX {
					minX = cx
				}
				if cx > maxX {
					maxX = cx
				}
				if cy < minY {
					minY = cy
				}
				if cy > maxY {
					maxY = cy
				}

				for _, d := range neighbours {
					nx, ny := cx+d[0], cy+d[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					nidx := ny*w + nx
					if visited[nidx] {
						continue
					}
					c := buf.At(nx, ny)
					if cls.Classify(c) != raster.Land {
						visited[nidx] = true
						continue
					}
					if !withinTolerance(c, seed, params.Tolerance) {
						continue
					}
					visited[nidx] = true
					queue = append(queue, nidx)
				}
			}

			// Every queued pixel was accepted into the fill.
			count := len(queue)
			if count < params.MinRegionSize {
				res.Discarded++
				continue
			}

			region.ID = len(res.Regions)
			region.PixelCount = count
			region.Bounds = image.Rect(minX, minY, maxX+1, maxY+1)
			region.CentroidX = float64(sumX) / float64(count)
			region.CentroidY = float64(sumY) / float64(count)
			for _, m := range queue {
				owner.set(m%w, m/w, region.ID)
			}
			res.Regions = append(res.Regions, region)
		}
	}

	fmt.Printf("[SEGMENT] %dx%d: %d regions kept, %d discarded (tolerance=%d, min=%d) in %v\n",
		w, h, len(res.Regions), res.Discarded, params.Tolerance, params.MinRegionSize, time.Since(start))
	return res
}

func withinTolerance(a, b color.NRGBA, tolerance int) bool {
	return absDiff(int(a.R), int(b.R)) <= tolerance &&
		absDiff(int(a.G), int(b.G)) <= tolerance &&
		absDiff(int(a.B), int(b.B)) <= tolerance
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
