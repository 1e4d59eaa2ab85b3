package dto

// StartRequest is the body of the start endpoints. CameraIndex defaults to 0
// and Mode is only read by the generic /start endpoint.
type StartRequest struct {
	CameraIndex *int   `json:"camera_index,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

// Index returns the requested camera index or 0.
func (r StartRequest) Index() int {
	if r.CameraIndex == nil {
		return 0
	}
	return *r.CameraIndex
}

type StartResponse struct {
	Message string `json:"message"`
	RunID   string `json:"run_id"`
	Mode    string `json:"mode"`
}

type CamerasResponse struct {
	Cameras []int `json:"cameras"`
}
