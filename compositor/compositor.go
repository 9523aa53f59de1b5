// Package compositor places product cutouts onto a room photograph without
// any remote service. It is the path that keeps staging available offline.
package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/raushankrgupta/dekor-stager/logger"
	"github.com/raushankrgupta/dekor-stager/storage"
	"golang.org/x/image/draw"
)

// Placement policy, relative to the room image.
const (
	widthDivisor  = 3.0
	topDivisor    = 2.2
	leftDivisor   = 2.6
	brightnessMul = 1.02
)

type Compositor struct {
	store *storage.AssetStore
	log   *logger.Logger
}

func New(store *storage.AssetStore, log *logger.Logger) *Compositor {
	return &Compositor{
		store: store,
		log:   logger.OrNop(log).With("service", "Compositor"),
	}
}

// Stage composites the referenced product images onto the room image and
// persists the result under staging-output, returning its reference.
func (c *Compositor) Stage(ctx context.Context, roomRef string, productRefs []string) (string, error) {
	room, err := c.store.Read(ctx, roomRef)
	if err != nil {
		return "", fmt.Errorf("read room image: %w", err)
	}
	products := make([][]byte, 0, len(productRefs))
	for _, ref := range productRefs {
		data, err := c.store.Read(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("read product image %s: %w", ref, err)
		}
		products = append(products, data)
	}

	out, err := Composite(room, products)
	if err != nil {
		return "", err
	}

	ref, err := c.store.Save(ctx, storage.CategoryStagingOutput, storage.NewID("staged")+".png", out)
	if err != nil {
		return "", fmt.Errorf("save composite: %w", err)
	}
	c.log.Info("local composite stored", "ref", ref, "products", len(products))
	return ref, nil
}

// Composite draws every product (in order, later ones on top) at the fixed
// anchor, lifts brightness slightly and encodes the result as PNG. The output
// has the room's dimensions.
func Composite(room []byte, products [][]byte) ([]byte, error) {
	roomImg, _, err := Decode(room)
	if err != nil {
		return nil, fmt.Errorf("decode room image: %w", err)
	}
	b := roomImg.Bounds()
	w, h := b.Dx(), b.Dy()

	dc := gg.NewContext(w, h)
	dc.DrawImage(roomImg, -b.Min.X, -b.Min.Y)

	targetW := int(math.Round(float64(w) / widthDivisor))
	if targetW < 1 {
		targetW = 1
	}
	top := int(math.Round(float64(h) / topDivisor))
	left := int(math.Round(float64(w) / leftDivisor))

	for i, data := range products {
		productImg, _, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode product image %d: %w", i, err)
		}
		dc.DrawImage(resizeToFit(productImg, targetW, h), left, top)
	}

	brighten(dc.Image().(*image.RGBA), brightnessMul)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeToFit scales src to width, keeping its aspect ratio, unless that
// would exceed maxHeight; then it is scaled to maxHeight instead.
func resizeToFit(src image.Image, width, maxHeight int) image.Image {
	sb := src.Bounds()
	scale := float64(width) / float64(sb.Dx())
	if float64(sb.Dy())*scale > float64(maxHeight) {
		scale = float64(maxHeight) / float64(sb.Dy())
	}
	w := clampDim(int(math.Round(float64(sb.Dx())*scale)), width)
	h := clampDim(int(math.Round(float64(sb.Dy())*scale)), maxHeight)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst
}

func clampDim(v, max int) int {
	if v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}

// brighten multiplies the color channels in place. Pixels are premultiplied,
// so channels are clamped to alpha.
func brighten(img *image.RGBA, factor float64) {
	for y := 0; y < img.Rect.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			a := float64(row[i+3])
			for c := 0; c < 3; c++ {
				v := math.Round(float64(row[i+c]) * factor)
				if v > a {
					v = a
				}
				row[i+c] = uint8(v)
			}
		}
	}
}
