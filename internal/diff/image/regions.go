package image

import (
	"image"
	"image/color"
	"imagediff/internal/pixel"
)

type RegionOptions struct {
	// Tolerance is the per channel delta a diff pixel must exceed to count.
	Tolerance float64
	// MinSize drops regions whose width or height is not above it.
	MinSize int
	// MergeDistance joins regions closer than this many pixels.
	MergeDistance int
}

func DefaultRegionOptions() RegionOptions {
	return RegionOptions{
		MinSize:       2,
		MergeDistance: 10,
	}
}

// Regions groups the changed pixels of a diff buffer, as produced by Diff,
// into bounding rectangles.
func Regions(diff *pixel.Buffer, opts RegionOptions) []image.Rectangle {
	if diff == nil || diff.Width == 0 || diff.Height == 0 {
		return nil
	}
	tolerance := max(opts.Tolerance, 0)

	changed := make([]bool, diff.Width*diff.Height)
	for i := range changed {
		p := diff.Data[i*4 : i*4+4]
		d := max(p[0], p[1], p[2], 255-p[3])
		changed[i] = float64(d) > tolerance
	}

	visited := make([]bool, len(changed))
	var regions []image.Rectangle
	for y := 0; y < diff.Height; y++ {
		for x := 0; x < diff.Width; x++ {
			i := y*diff.Width + x
			if !changed[i] || visited[i] {
				continue
			}
			r := boundingBox(changed, visited, diff.Width, diff.Height, x, y)
			if r.Dx() > opts.MinSize && r.Dy() > opts.MinSize {
				regions = append(regions, r)
			}
		}
	}

	return mergeRegions(regions, opts.MergeDistance)
}

// boundingBox flood fills the 8-connected component containing (x, y).
func boundingBox(changed []bool, visited []bool, width int, height int, x int, y int) image.Rectangle {
	r := image.Rect(x, y, x+1, y+1)
	queue := []image.Point{{X: x, Y: y}}
	visited[y*width+x] = true

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				j := ny*width + nx
				if changed[j] && !visited[j] {
					visited[j] = true
					queue = append(queue, image.Point{X: nx, Y: ny})
				}
			}
		}
	}

	return r
}

// mergeRegions repeats merge passes until no two regions lie within distance
// of each other.
func mergeRegions(regions []image.Rectangle, distance int) []image.Rectangle {
	for len(regions) > 1 {
		next := mergePass(regions, distance)
		if len(next) == len(regions) {
			return next
		}
		regions = next
	}
	return regions
}

func mergePass(regions []image.Rectangle, distance int) []image.Rectangle {
	merged := make([]image.Rectangle, 0, len(regions))
	used := make([]bool, len(regions))
	for i := range regions {
		if used[i] {
			continue
		}

		current := regions[i]
		for grown := true; grown; {
			grown = false
			for j := i + 1; j < len(regions); j++ {
				if used[j] || !current.Inset(-distance).Overlaps(regions[j]) {
					continue
				}
				current = current.Union(regions[j])
				used[j] = true
				grown = true
			}
		}
		merged = append(merged, current)
	}

	return merged
}

// Outline returns a copy of picture with a border of the given thickness
// drawn around each region.
func Outline(picture *pixel.Buffer, regions []image.Rectangle, c color.NRGBA, thickness int) *pixel.Buffer {
	out := picture.Clone()
	canvas := out.NRGBA()
	bounds := canvas.Bounds()

	for _, r := range regions {
		outer := r.Inset(-thickness)
		for y := outer.Min.Y; y < outer.Max.Y; y++ {
			for x := outer.Min.X; x < outer.Max.X; x++ {
				p := image.Pt(x, y)
				if p.In(r) || !p.In(bounds) {
					continue
				}
				canvas.SetNRGBA(x, y, c)
			}
		}
	}

	return out
}
