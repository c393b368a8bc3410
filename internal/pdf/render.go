package pdf

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	paperColor  = color.White
	borderColor = color.RGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 0xFF}
	inkColor    = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
)

// Render rasterizes a page at the requested pixel size. This is a text
// layer preview: a white sheet with every extracted word drawn at its
// scaled position. Non-text page content is not reproduced.
func (d *Document) Render(page int, width, height float64) (image.Image, error) {
	pxW, pxH := int(width), int(height)
	if pxW < 1 || pxH < 1 {
		return nil, fmt.Errorf("pdf: render size %dx%d too small", pxW, pxH)
	}

	pageW, pageH, err := d.PageSize(page)
	if err != nil {
		return nil, err
	}
	words, err := d.Words(page)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, pxW, pxH))
	draw.Draw(img, img.Bounds(), image.NewUniform(paperColor), image.Point{}, draw.Src)
	drawBorder(img)

	scaleX := width / pageW
	scaleY := height / pageH

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(inkColor),
		Face: basicfont.Face7x13,
	}
	for _, w := range words {
		// Anchor at the word's baseline, approximated by its bottom edge.
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(int(w.Rect.X0 * scaleX)),
			Y: fixed.I(int(w.Rect.Y1 * scaleY)),
		}
		drawer.DrawString(w.Text)
	}
	return img, nil
}

func drawBorder(img *image.RGBA) {
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		img.Set(x, b.Min.Y, borderColor)
		img.Set(x, b.Max.Y-1, borderColor)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		img.Set(b.Min.X, y, borderColor)
		img.Set(b.Max.X-1, y, borderColor)
	}
}
