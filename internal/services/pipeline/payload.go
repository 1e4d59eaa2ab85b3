package pipeline

import "roadwatch/internal/models"

// PotholeDetected is true when the pothole predictor found anything at all.
// Confidence plays no part.
func PotholeDetected(result *models.DetectionResult) bool {
	return result.Len() > 0
}

// BuildUpdate shapes the published payload for mode. A nil result means that
// predictor failed on this frame and its field is left out.
func BuildUpdate(mode models.Mode, signs, potholes *models.DetectionResult) models.Update {
	var u models.Update

	if mode.UsesSigns() && signs != nil {
		u.Result = signs.Raw
		if u.Result == nil {
			u.Result = []byte("{}")
		}
	}
	if mode.UsesPotholes() && potholes != nil {
		detected := PotholeDetected(potholes)
		u.PotholeDetected = &detected
	}
	return u
}
