package webcam

import (
	"fmt"
	"image"
	"image/color"

	"roadwatch/internal/services/camera"

	"gocv.io/x/gocv"
)

// Frame is a camera.Frame backed by an OpenCV matrix.
type Frame struct {
	mat gocv.Mat
}

func NewFrame(mat gocv.Mat) *Frame {
	return &Frame{mat: mat}
}

// Mat exposes the matrix for OpenCV consumers such as the display window.
func (f *Frame) Mat() gocv.Mat {
	return f.mat
}

func (f *Frame) Width() int  { return f.mat.Cols() }
func (f *Frame) Height() int { return f.mat.Rows() }

func (f *Frame) Clone() camera.Frame {
	return &Frame{mat: f.mat.Clone()}
}

func (f *Frame) Encode() ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, f.mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

func (f *Frame) Close() error {
	return f.mat.Close()
}

func (f *Frame) Rectangle(r image.Rectangle, c color.RGBA, thickness int) error {
	return gocv.Rectangle(&f.mat, r, c, thickness)
}

func (f *Frame) Polyline(pts []image.Point, closed bool, c color.RGBA, thickness int) error {
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	return gocv.Polylines(&f.mat, pv, closed, c, thickness)
}

func (f *Frame) PutText(text string, org image.Point, scale float64, c color.RGBA, thickness int) error {
	return gocv.PutText(&f.mat, text, org, gocv.FontHersheySimplex, scale, c, thickness)
}

func (f *Frame) TextSize(text string, scale float64, thickness int) (image.Point, int) {
	return gocv.GetTextSizeWithBaseline(text, gocv.FontHersheySimplex, scale, thickness)
}
