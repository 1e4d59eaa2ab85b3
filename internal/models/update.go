package models

import "encoding/json"

// Update is the payload broadcast to subscribers after each iteration.
// Fields are omitted when the mode does not produce them or when the
// predictor behind them failed for that frame.
type Update struct {
	Result          json.RawMessage `json:"result,omitempty"`
	PotholeDetected *bool           `json:"pothole_detected,omitempty"`
}

// Empty reports whether the update carries nothing worth publishing.
func (u Update) Empty() bool {
	return u.Result == nil && u.PotholeDetected == nil
}
