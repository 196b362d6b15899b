package imagefolder

// Levels is the number of intensity levels a pixel is quantized to
const Levels = 4

// Grid is the number of patches per image side
const Grid = 8

// patchSamples is the number of samples per patch side
const patchSamples = 4

// Sample is one decoded image quantized to 2-bit intensity levels, with its class
type Sample struct {
	levels        []byte
	width, height int
	class         uint16
	repeat        int
}

// NewSample wraps quantized levels of a width x height image
func NewSample(levels []byte, width, height int, class uint16, repeat int) *Sample {
	if repeat <= 0 {
		repeat = 1
	}
	return &Sample{levels: levels, width: width, height: height, class: class, repeat: repeat}
}

// Output returns the class index
func (s *Sample) Output() uint16 {
	return s.class
}

// Level returns the quantized intensity at x, y
func (s *Sample) Level(x, y int) byte {
	return s.levels[y*s.width+x]
}

// Feature packs a 4x4 grid of 2-bit samples of one patch. Every repeat
// consecutive features share a patch. Patches are visited 2x2 cells at a
// time, block by block, so that feature n lines up with cell n of a
// 4x4 block majority pooling over the 8x8 patch grid.
func (s *Sample) Feature(n int) (o uint32) {
	idx := (n / s.repeat) % (Grid * Grid)
	block, cell := idx/4, idx%4
	px := (block%4)*2 + cell%2
	py := (block/4)*2 + cell/2

	x0, x1 := px*s.width/Grid, (px+1)*s.width/Grid
	y0, y1 := py*s.height/Grid, (py+1)*s.height/Grid
	for j := 0; j < patchSamples; j++ {
		y := y0 + (2*j+1)*(y1-y0)/(2*patchSamples)
		for i := 0; i < patchSamples; i++ {
			x := x0 + (2*i+1)*(x1-x0)/(2*patchSamples)
			o |= uint32(s.Level(x, y)&(Levels-1)) << uint(2*(j*patchSamples+i))
		}
	}
	return
}
