package segmentation

import (
	"math"
	"math/rand/v2"

	"github.com/semajyllek/image-transform-app/internal/imaging"
)

const unassigned = -1

// Options controls Segment.
type Options struct {
	// Tolerance is the largest Euclidean RGB distance from a segment's
	// seed color at which a neighboring pixel still joins the segment.
	Tolerance float64

	// MinSize is the pixel count below which a segment is merged into its
	// most similar neighbor.
	MinSize int

	// Scheme picks the display colors.
	Scheme Scheme

	// Rand supplies random hues for PreserveBrightness. Nil uses the
	// process-wide generator.
	Rand *rand.Rand
}

// Region is one segment after merging.
type Region struct {
	// ID is the representative segment id. Every pixel labelled ID belongs
	// to this region.
	ID int `json:"id"`

	// PixelCount includes the pixels of every segment merged into it.
	PixelCount int `json:"pixel_count"`

	// Mean is the mean source color over all of the region's pixels.
	Mean imaging.RGBColor `json:"mean"`

	// Color is the display color assigned by the scheme.
	Color imaging.RGBColor `json:"color"`
}

// Result holds the recolored image and the segmentation behind it.
type Result struct {
	Buffer *imaging.PixelBuffer

	// Labels maps each pixel (row-major) to its region's ID.
	Labels []int

	// Regions are ordered by ID.
	Regions []Region
}

// segments is a dense arena indexed by segment id.
type segments struct {
	count  []int
	sum    [][3]uint64
	mean   [][3]float64
	target []int
}

func (s *segments) add() int {
	s.count = append(s.count, 0)
	s.sum = append(s.sum, [3]uint64{})
	s.mean = append(s.mean, [3]float64{})
	s.target = append(s.target, len(s.target))
	return len(s.target) - 1
}

func (s *segments) len() int { return len(s.target) }

// Segment partitions buf into regions of similar color and paints each
// region with a color from opts.Scheme.
//
// # Algorithm
//
//  1. Growth: pixels are visited in raster order. Each unassigned pixel
//     seeds a new segment that grows by 4-connected flood fill over an
//     explicit stack; a neighbor joins while unassigned and within
//     Tolerance of the seed's color.
//  2. Merge: each segment smaller than MinSize points at the 4-adjacent
//     segment whose mean color is nearest. Ties keep the neighbor found
//     first in raster order. A segment with no neighbor stays on its own.
//  3. Resolve: merge chains are followed to their end. A chain that loops
//     back on itself resolves to the smallest id in the loop.
//  4. Recolor: representatives are numbered in id order and colored by
//     the scheme. Alpha is copied from buf.
func Segment(buf *imaging.PixelBuffer, opts Options) (*Result, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	labels, segs := grow(buf, opts.Tolerance)
	merge(buf, labels, segs, opts.MinSize)
	rep := resolve(segs)

	regionIndex := make([]int, segs.len())
	var regions []Region
	var sums [][3]uint64
	for id := 0; id < segs.len(); id++ {
		if rep[id] == id {
			regionIndex[id] = len(regions)
			regions = append(regions, Region{ID: id})
			sums = append(sums, [3]uint64{})
		}
	}
	for id := 0; id < segs.len(); id++ {
		ri := regionIndex[rep[id]]
		regions[ri].PixelCount += segs.count[id]
		for c := 0; c < 3; c++ {
			sums[ri][c] += segs.sum[id][c]
		}
	}

	ownMeans := make([]imaging.RGBColor, len(regions))
	for i := range regions {
		ownMeans[i] = roundMean(segs.mean[regions[i].ID])
		n := float64(regions[i].PixelCount)
		regions[i].Mean = roundMean([3]float64{
			float64(sums[i][0]) / n, float64(sums[i][1]) / n, float64(sums[i][2]) / n,
		})
	}
	palette := opts.Scheme.Palette(len(regions), ownMeans, opts.Rand)
	for i := range regions {
		regions[i].Color = palette[i]
	}

	out := buf.Clone()
	for p, id := range labels {
		r := rep[id]
		labels[p] = r
		c := palette[regionIndex[r]]
		out.Pix[p*4], out.Pix[p*4+1], out.Pix[p*4+2] = c.R, c.G, c.B
	}

	return &Result{Buffer: out, Labels: labels, Regions: regions}, nil
}

func grow(buf *imaging.PixelBuffer, tolerance float64) ([]int, *segments) {
	w, h := buf.Width, buf.Height
	labels := make([]int, w*h)
	for i := range labels {
		labels[i] = unassigned
	}
	segs := &segments{}
	var stack []int

	for start := range labels {
		if labels[start] != unassigned {
			continue
		}
		id := segs.add()
		seed := pixelColor(buf, start)
		labels[start] = id
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			segs.count[id]++
			for c := 0; c < 3; c++ {
				segs.sum[id][c] += uint64(buf.Pix[p*4+c])
			}

			x, y := p%w, p/w
			for _, q := range neighbors(x, y, w, h) {
				if q < 0 || labels[q] != unassigned {
					continue
				}
				if imaging.ColorDistance(pixelColor(buf, q), seed) <= tolerance {
					labels[q] = id
					stack = append(stack, q)
				}
			}
		}

		n := float64(segs.count[id])
		for c := 0; c < 3; c++ {
			segs.mean[id][c] = float64(segs.sum[id][c]) / n
		}
	}
	return labels, segs
}

// merge points every undersized segment at its nearest-colored neighbor.
// Adjacency is collected in one raster scan; for each segment the neighbor
// order is the order a full-image scan over that segment's pixels would
// discover them.
func merge(buf *imaging.PixelBuffer, labels []int, segs *segments, minSize int) {
	w, h := buf.Width, buf.Height
	adjacent := make([][]int, segs.len())
	for p, a := range labels {
		if segs.count[a] >= minSize {
			continue
		}
		for _, q := range neighbors(p%w, p/w, w, h) {
			if q < 0 {
				continue
			}
			if b := labels[q]; b != a && !contains(adjacent[a], b) {
				adjacent[a] = append(adjacent[a], b)
			}
		}
	}

	for id := 0; id < segs.len(); id++ {
		if segs.count[id] >= minSize {
			continue
		}
		best, bestDist := id, math.Inf(1)
		for _, n := range adjacent[id] {
			if d := meanDistance(segs.mean[id], segs.mean[n]); d < bestDist {
				best, bestDist = n, d
			}
		}
		segs.target[id] = best
	}
}

// resolve maps every segment id to its representative, compressing each
// walked path so no chain is followed twice.
func resolve(segs *segments) []int {
	n := segs.len()
	rep := make([]int, n)
	walk := make([]int, n)
	for i := range rep {
		rep[i] = unassigned
	}

	var path []int
	for id := 0; id < n; id++ {
		path = path[:0]
		cur := id
		for rep[cur] == unassigned && segs.target[cur] != cur && walk[cur] != id+1 {
			walk[cur] = id + 1
			path = append(path, cur)
			cur = segs.target[cur]
		}

		var r int
		switch {
		case rep[cur] != unassigned:
			r = rep[cur]
		case segs.target[cur] == cur:
			r = cur
		default:
			r = cur
			for i := len(path) - 1; path[i] != cur; i-- {
				r = min(r, path[i])
			}
		}
		rep[cur] = r
		for _, p := range path {
			rep[p] = r
		}
	}
	return rep
}

// neighbors returns the 4-connected neighbors of (x, y) as pixel indices,
// left, right, up, down, with -1 for positions outside the image.
func neighbors(x, y, w, h int) [4]int {
	n := [4]int{-1, -1, -1, -1}
	p := y*w + x
	if x > 0 {
		n[0] = p - 1
	}
	if x < w-1 {
		n[1] = p + 1
	}
	if y > 0 {
		n[2] = p - w
	}
	if y < h-1 {
		n[3] = p + w
	}
	return n
}

func pixelColor(buf *imaging.PixelBuffer, p int) imaging.RGBColor {
	return imaging.RGBColor{R: buf.Pix[p*4], G: buf.Pix[p*4+1], B: buf.Pix[p*4+2]}
}

func meanDistance(a, b [3]float64) float64 {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func roundMean(m [3]float64) imaging.RGBColor {
	return imaging.RGBColor{
		R: imaging.ClampByte(math.Round(m[0])),
		G: imaging.ClampByte(math.Round(m[1])),
		B: imaging.ClampByte(math.Round(m[2])),
	}
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
