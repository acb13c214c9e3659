package icon

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/keboo/deckstatus/pkg/status"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"
)

const (
	Size          = 144
	IndicatorSize = 32
	Padding       = 6
	CornerRadius  = 20
	borderWidth   = 2
)

// StatusIcon draws the plan's indicators over an avatar scaled to the key size
// and returns it as a PNG data URL
func StatusIcon(avatar []byte, plan status.RenderPlan) (string, error) {
	src, err := imaging.Decode(bytes.NewReader(avatar))
	if err != nil {
		return "", errors.Wrap(err, "cannot decode avatar")
	}

	canvas := imaging.Resize(src, Size, Size, imaging.Lanczos)
	for _, slot := range plan.Slots {
		fill, err := parseColor(slot.Color)
		if err != nil {
			return "", err
		}
		drawIndicator(canvas, Origin(slot.Position), fill)
	}

	return dataURL(canvas)
}

// AvatarIcon puts an avatar on a rounded tile of the given color
func AvatarIcon(avatar []byte, background string) (string, error) {
	src, err := imaging.Decode(bytes.NewReader(avatar))
	if err != nil {
		return "", errors.Wrap(err, "cannot decode avatar")
	}
	bg, err := parseColor(background)
	if err != nil {
		return "", err
	}

	tile := imaging.New(Size, Size, color.Transparent)
	fillRoundedRect(tile, bg, CornerRadius)

	canvas := imaging.Overlay(tile, imaging.Resize(src, Size, Size, imaging.Lanczos), image.Pt(0, 0), 1.0)
	return dataURL(canvas)
}

// Origin is the top left corner of an indicator slot
func Origin(position status.SlotPosition) image.Point {
	y := Size - IndicatorSize - Padding
	switch position {
	case status.BottomLeft:
		return image.Pt(Padding, y)
	case status.BottomCenter:
		return image.Pt((Size-IndicatorSize)/2, y)
	default:
		return image.Pt(Size-IndicatorSize-Padding, y)
	}
}

// Center is the middle of an indicator slot
func Center(position status.SlotPosition) image.Point {
	o := Origin(position)
	return image.Pt(o.X+IndicatorSize/2, o.Y+IndicatorSize/2)
}

func drawIndicator(img *image.NRGBA, origin image.Point, fill color.Color) {
	r := float64(IndicatorSize) / 2
	cx := float64(origin.X) + r
	cy := float64(origin.Y) + r

	// the border is stroked centered on the circle edge
	outer := r + borderWidth/2
	inner := r - borderWidth/2

	bounds := image.Rect(origin.X-borderWidth, origin.Y-borderWidth, origin.X+IndicatorSize+borderWidth, origin.Y+IndicatorSize+borderWidth).
		Intersect(img.Bounds())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			d2 := dx*dx + dy*dy
			switch {
			case d2 <= inner*inner:
				img.Set(x, y, fill)
			case d2 <= outer*outer:
				img.Set(x, y, color.White)
			}
		}
	}
}

func fillRoundedRect(img *image.NRGBA, fill color.Color, radius int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if insideRoundedRect(x, y, b, radius) {
				img.Set(x, y, fill)
			}
		}
	}
}

func insideRoundedRect(x, y int, b image.Rectangle, radius int) bool {
	cx, cy := x, y
	switch {
	case x < b.Min.X+radius:
		cx = b.Min.X + radius
	case x >= b.Max.X-radius:
		cx = b.Max.X - radius - 1
	}
	switch {
	case y < b.Min.Y+radius:
		cy = b.Min.Y + radius
	case y >= b.Max.Y-radius:
		cy = b.Max.Y - radius - 1
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= radius*radius
}

func parseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid color %s", hex)
	}
	return c, nil
}

func dataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", errors.Wrap(err, "cannot encode icon")
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
