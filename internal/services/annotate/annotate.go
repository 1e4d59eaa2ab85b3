// Package annotate renders detection results onto frames.
//
// Drawing goes through the Canvas interface so the geometry and label
// layout can be exercised without an image backend; the OpenCV frame in
// camera/webcam is the production Canvas.
package annotate

import (
	"fmt"
	"image"
	"image/color"

	"roadwatch/internal/models"
)

// Filled as a thickness asks the canvas to fill the shape.
const Filled = -1

const (
	FontScale     = 0.5
	TextThickness = 1
	LineThickness = 2
)

var (
	BoxColor        = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	PolygonColor    = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	LabelBackground = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	LabelText       = color.RGBA{R: 0, G: 0, B: 0, A: 0}
)

// Canvas is a drawable raster.
type Canvas interface {
	Rectangle(r image.Rectangle, c color.RGBA, thickness int) error
	Polyline(pts []image.Point, closed bool, c color.RGBA, thickness int) error
	PutText(text string, org image.Point, scale float64, c color.RGBA, thickness int) error
	TextSize(text string, scale float64, thickness int) (size image.Point, baseline int)
}

// Annotate draws every detection onto c using the strategy that matches its
// geometry. Detections are only read. With no detections c is untouched.
func Annotate(c Canvas, detections []models.Detection) error {
	for i := range detections {
		d := &detections[i]

		var err error
		switch d.Kind {
		case models.GeometryBox:
			err = drawBox(c, d)
		case models.GeometryPolygon:
			err = drawPolygon(c, d)
		default:
			err = fmt.Errorf("unsupported geometry %s", d.Kind)
		}
		if err != nil {
			return fmt.Errorf("annotate %q: %w", d.Label, err)
		}
	}
	return nil
}

// Corners converts a center+size box to pixel corners, truncating each
// coordinate to the integer grid.
func Corners(b models.Box) image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(int(b.X-b.Width/2), int(b.Y-b.Height/2)),
		Max: image.Pt(int(b.X+b.Width/2), int(b.Y+b.Height/2)),
	}
}

// Label is the caption drawn next to a detection.
func Label(d *models.Detection) string {
	return fmt.Sprintf("%s %.2f", d.Label, d.Confidence)
}

func drawBox(c Canvas, d *models.Detection) error {
	rect := Corners(d.Box)
	if err := c.Rectangle(rect, BoxColor, LineThickness); err != nil {
		return err
	}
	return drawLabel(c, Label(d), rect.Min)
}

func drawPolygon(c Canvas, d *models.Detection) error {
	if len(d.Points) == 0 {
		return nil
	}

	pts := make([]image.Point, len(d.Points))
	for i, p := range d.Points {
		pts[i] = image.Pt(int(p.X), int(p.Y))
	}

	if err := c.Polyline(pts, true, PolygonColor, LineThickness); err != nil {
		return err
	}
	return drawLabel(c, Label(d), pts[0])
}

// drawLabel paints a filled background sized to the text and the text on
// top, anchored at the baseline. The baseline never goes above the text
// height so the background stays inside the frame.
func drawLabel(c Canvas, text string, anchor image.Point) error {
	size, baseline := c.TextSize(text, FontScale, TextThickness)
	y := max(anchor.Y, size.Y)

	bg := image.Rect(anchor.X, y-size.Y, anchor.X+size.X, y+baseline)
	if err := c.Rectangle(bg, LabelBackground, Filled); err != nil {
		return err
	}
	return c.PutText(text, image.Pt(anchor.X, y), FontScale, LabelText, TextThickness)
}
