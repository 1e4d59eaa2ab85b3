package dto

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// GenerateRequest lists the sign labels to describe.
type GenerateRequest struct {
	Signs []string `json:"signs"`
}
