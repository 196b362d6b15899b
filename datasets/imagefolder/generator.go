package imagefolder

import "context"
import "image"
import _ "image/gif"
import _ "image/jpeg"
import _ "image/png"
import "io/fs"
import "math/rand"
import "os"
import "path/filepath"
import "runtime"
import "strings"
import "sync"
import "time"

import "github.com/pkg/errors"
import log "github.com/sirupsen/logrus"
import _ "golang.org/x/image/bmp"
import "golang.org/x/image/draw"
import _ "golang.org/x/image/tiff"
import _ "golang.org/x/image/webp"

import "github.com/neurlang/imageclassifier/net/feedforward"
import "github.com/neurlang/imageclassifier/parallel"

// ErrBatchRange is returned for a batch index outside [0, Len())
var ErrBatchRange = errors.New("batch index out of range")

// ErrTooManyClasses is returned when class indexes don't fit the network output
var ErrTooManyClasses = errors.New("too many classes")

// Extensions lists the file extensions recognized as images
var Extensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".gif", ".webp"}

// Options configures how images are loaded and augmented
type Options struct {
	TargetWidth, TargetHeight int
	BatchSize                 int

	// Rescale multiplies 8-bit intensities before quantization, 1/255 when zero
	Rescale float64

	// RotationRange and ShearRange are in degrees
	RotationRange float64
	ShearRange    float64

	// WidthShiftRange and HeightShiftRange are fractions of the image size
	WidthShiftRange  float64
	HeightShiftRange float64

	// ZoomRange draws zoom factors from [1-ZoomRange, 1+ZoomRange]
	ZoomRange float64

	HorizontalFlip bool
	VerticalFlip   bool

	Shuffle bool
	Seed    int64

	// Repeat is the number of consecutive features sharing one patch
	Repeat int

	Threads int
}

func (o *Options) defaults() {
	if o.TargetWidth <= 0 {
		o.TargetWidth = 256
	}
	if o.TargetHeight <= 0 {
		o.TargetHeight = 256
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 32
	}
	if o.Rescale == 0 {
		o.Rescale = 1.0 / 255
	}
	if o.Repeat <= 0 {
		o.Repeat = 1
	}
	if o.Threads <= 0 {
		o.Threads = runtime.NumCPU()
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
}

type entry struct {
	path  string
	class uint16
}

// Generator yields batches of samples found under a directory
type Generator struct {
	files  []entry
	labels []string
	opts   Options

	mut   sync.Mutex
	order []int
	epoch int64
	rng   *rand.Rand
}

// FlowFromDirectory indexes dir/<label>/** for every label, the class index
// being the label position. Files are taken in lexical order.
func FlowFromDirectory(dir string, labels []string, opts Options) (*Generator, error) {
	if len(labels) > 1<<16 {
		return nil, errors.Wrapf(ErrTooManyClasses, "%d labels", len(labels))
	}
	opts.defaults()
	g := &Generator{labels: append([]string(nil), labels...), opts: opts}
	for class, label := range labels {
		root := filepath.Join(dir, label)
		if _, err := os.Stat(root); os.IsNotExist(err) {
			log.WithFields(log.Fields{"class": label, "dir": root}).Warn("class directory not found")
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isImage(path) {
				return nil
			}
			g.files = append(g.files, entry{path: path, class: uint16(class)})
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "scan %s", root)
		}
	}
	g.order = make([]int, len(g.files))
	for i := range g.order {
		g.order[i] = i
	}
	g.rng = rand.New(rand.NewSource(opts.Seed))
	if opts.Shuffle {
		g.shuffle()
	}
	log.WithFields(log.Fields{"dir": dir, "images": len(g.files), "classes": len(labels)}).Info("found images")
	return g, nil
}

func isImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (g *Generator) shuffle() {
	g.rng.Shuffle(len(g.order), func(i, j int) { g.order[i], g.order[j] = g.order[j], g.order[i] })
}

// N returns the number of images
func (g *Generator) N() int {
	return len(g.files)
}

// Len returns the number of batches, the last one possibly short
func (g *Generator) Len() int {
	return (len(g.files) + g.opts.BatchSize - 1) / g.opts.BatchSize
}

// BatchSize returns the configured batch size
func (g *Generator) BatchSize() int {
	return g.opts.BatchSize
}

// Classes returns the number of classes
func (g *Generator) Classes() int {
	return len(g.labels)
}

// OnEpochEnd starts a new epoch, reshuffling when shuffling is enabled
func (g *Generator) OnEpochEnd() {
	g.mut.Lock()
	defer g.mut.Unlock()
	g.epoch++
	if g.opts.Shuffle {
		g.shuffle()
	}
}

// Batch decodes batch i in parallel. Augmentation is deterministic for a
// given seed, epoch and image.
func (g *Generator) Batch(ctx context.Context, i int) ([]feedforward.FeedforwardNetworkInOutput, error) {
	if i < 0 || i >= g.Len() {
		return nil, errors.Wrapf(ErrBatchRange, "batch %d of %d", i, g.Len())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mut.Lock()
	lo := i * g.opts.BatchSize
	hi := min(lo+g.opts.BatchSize, len(g.order))
	idx := append([]int(nil), g.order[lo:hi]...)
	epoch := g.epoch
	g.mut.Unlock()

	var out = make([]feedforward.FeedforwardNetworkInOutput, len(idx))
	var errs = make([]error, len(idx))
	parallel.ForEach(len(idx), g.opts.Threads, func(j int) {
		if err := ctx.Err(); err != nil {
			errs[j] = err
			return
		}
		rng := rand.New(rand.NewSource(g.opts.Seed ^ epoch<<32 ^ int64(idx[j])*2654435761))
		s, err := g.load(idx[j], rng)
		if err != nil {
			errs[j] = err
			return
		}
		out[j] = s
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// load decodes, resizes, augments and quantizes image n
func (g *Generator) load(n int, rng *rand.Rand) (*Sample, error) {
	f := g.files[n]
	file, err := os.Open(f.path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", f.path)
	}

	w, h := g.opts.TargetWidth, g.opts.TargetHeight
	gray := image.NewGray(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(gray, gray.Bounds(), img, img.Bounds(), draw.Src, nil)
	if g.opts.augments() {
		gray = g.opts.augment(rng, gray)
	}
	return NewSample(quantize(gray.Pix, g.opts.Rescale), w, h, f.class, g.opts.Repeat), nil
}

// quantize rescales 8-bit intensities and maps [0, 1] onto Levels levels
func quantize(pix []byte, rescale float64) []byte {
	var o = make([]byte, len(pix))
	for i, p := range pix {
		level := int(float64(p) * rescale * Levels)
		o[i] = byte(max(0, min(level, Levels-1)))
	}
	return o
}
