package imagefolder

import "image"
import "math"
import "math/rand"

import "golang.org/x/image/draw"
import "golang.org/x/image/math/f64"

// maxEdgePad bounds the border added around a source, in multiples of its size
const maxEdgePad = 4

// padEdges returns src extended to cover r by repeating its border pixels.
// The result keeps the coordinates of src, so r may reach into negative space.
func padEdges(src *image.Gray, r image.Rectangle) *image.Gray {
	b := src.Bounds()
	r = r.Union(b)
	dst := image.NewGray(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		sy := max(b.Min.Y, min(y, b.Max.Y-1))
		row := src.Pix[src.PixOffset(b.Min.X, sy):src.PixOffset(b.Min.X, sy)+b.Dx()]
		out := dst.Pix[dst.PixOffset(r.Min.X, y) : dst.PixOffset(r.Min.X, y)+r.Dx()]
		left := b.Min.X - r.Min.X
		for x := 0; x < left; x++ {
			out[x] = row[0]
		}
		copy(out[left:], row)
		for x := left + len(row); x < len(out); x++ {
			out[x] = row[len(row)-1]
		}
	}
	return dst
}

// sourceRect is the part of source space the destination rect dr samples
// through the source to destination transform s2d, plus a bilinear margin.
// ok is false for transforms that can't be inverted.
func sourceRect(s2d f64.Aff3, dr image.Rectangle) (r image.Rectangle, ok bool) {
	det := s2d[0]*s2d[4] - s2d[1]*s2d[3]
	if math.Abs(det) < 1e-9 {
		return image.Rectangle{}, false
	}
	d2s := f64.Aff3{
		s2d[4] / det, -s2d[1] / det, (s2d[1]*s2d[5] - s2d[2]*s2d[4]) / det,
		-s2d[3] / det, s2d[0] / det, (s2d[2]*s2d[3] - s2d[0]*s2d[5]) / det,
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{
		{float64(dr.Min.X), float64(dr.Min.Y)}, {float64(dr.Max.X), float64(dr.Min.Y)},
		{float64(dr.Min.X), float64(dr.Max.Y)}, {float64(dr.Max.X), float64(dr.Max.Y)},
	} {
		x := d2s[0]*p[0] + d2s[1]*p[1] + d2s[2]
		y := d2s[3]*p[0] + d2s[4]*p[1] + d2s[5]
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	const margin = 2
	return image.Rect(
		int(math.Floor(minX))-margin, int(math.Floor(minY))-margin,
		int(math.Ceil(maxX))+margin, int(math.Ceil(maxY))+margin,
	), true
}

// augments reports whether any random transform is enabled
func (o Options) augments() bool {
	return o.RotationRange != 0 || o.WidthShiftRange != 0 || o.HeightShiftRange != 0 ||
		o.ShearRange != 0 || o.ZoomRange != 0 || o.HorizontalFlip || o.VerticalFlip
}

// transform draws one random source to destination transform for a w x h image
func (o Options) transform(rng *rand.Rand, w, h int) f64.Aff3 {
	cx, cy := float64(w)/2, float64(h)/2
	m := translate(-cx, -cy)
	if o.HorizontalFlip && rng.Intn(2) == 1 {
		m = mul(scale(-1, 1), m)
	}
	if o.VerticalFlip && rng.Intn(2) == 1 {
		m = mul(scale(1, -1), m)
	}
	if o.RotationRange != 0 {
		m = mul(rotate(radians(uniform(rng, o.RotationRange))), m)
	}
	if o.ShearRange != 0 {
		m = mul(shear(radians(uniform(rng, o.ShearRange))), m)
	}
	if o.ZoomRange != 0 {
		zx := 1 + uniform(rng, o.ZoomRange)
		zy := 1 + uniform(rng, o.ZoomRange)
		m = mul(scale(zx, zy), m)
	}
	tx := uniform(rng, o.WidthShiftRange) * float64(w)
	ty := uniform(rng, o.HeightShiftRange) * float64(h)
	return mul(translate(cx+tx, cy+ty), m)
}

// augment applies one random transform to src, filling uncovered pixels from the nearest edge
func (o Options) augment(rng *rand.Rand, src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	s2d := o.transform(rng, b.Dx(), b.Dy())
	sr, ok := sourceRect(s2d, b)
	if !ok {
		copy(dst.Pix, src.Pix)
		return dst
	}
	pad := maxEdgePad * max(b.Dx(), b.Dy())
	sr = sr.Intersect(b.Inset(-pad))
	// Transform's copy shortcut for integer translations offsets Y by sr.Min.X
	sr.Min.X = min(sr.Min.X, sr.Min.Y)
	sr.Min.Y = sr.Min.X
	padded := padEdges(src, sr)
	draw.BiLinear.Transform(dst, s2d, padded, padded.Bounds(), draw.Src, nil)
	return dst
}

// uniform draws from [-r, r]
func uniform(rng *rand.Rand, r float64) float64 {
	return (2*rng.Float64() - 1) * r
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// mul composes a after b
func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3], a[0]*b[1] + a[1]*b[4], a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3], a[3]*b[1] + a[4]*b[4], a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func translate(x, y float64) f64.Aff3 {
	return f64.Aff3{1, 0, x, 0, 1, y}
}

func scale(x, y float64) f64.Aff3 {
	return f64.Aff3{x, 0, 0, 0, y, 0}
}

func rotate(theta float64) f64.Aff3 {
	s, c := math.Sincos(theta)
	return f64.Aff3{c, -s, 0, s, c, 0}
}

func shear(phi float64) f64.Aff3 {
	return f64.Aff3{1, -math.Sin(phi), 0, 0, math.Cos(phi), 0}
}
