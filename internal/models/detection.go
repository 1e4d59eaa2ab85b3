package models

import "encoding/json"

// GeometryKind tells the annotator how a detection is drawn.
type GeometryKind int

const (
	GeometryBox GeometryKind = iota
	GeometryPolygon
)

func (k GeometryKind) String() string {
	switch k {
	case GeometryBox:
		return "box"
	case GeometryPolygon:
		return "polygon"
	}
	return "unknown"
}

// Point is a position in frame pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned region given by its center and size.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Detection represents one labeled region returned by a predictor.
type Detection struct {
	Label      string       `json:"class"`
	Confidence float64      `json:"confidence"`
	Kind       GeometryKind `json:"-"`
	Box        Box          `json:"box"`
	Points     []Point      `json:"points,omitempty"`
}

// DetectionResult is the output of a single predictor invocation. Raw holds
// the provider response untouched so it can be passed on to subscribers.
type DetectionResult struct {
	Detections []Detection
	Raw        json.RawMessage
}

// Len returns the number of detections; a nil result has none.
func (r *DetectionResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Detections)
}

// Labels returns the class label of every detection, in order.
func (r *DetectionResult) Labels() []string {
	if r == nil {
		return nil
	}
	labels := make([]string, 0, len(r.Detections))
	for _, d := range r.Detections {
		labels = append(labels, d.Label)
	}
	return labels
}
