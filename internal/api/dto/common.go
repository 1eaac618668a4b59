package dto

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// StatusResponse is returned by liveness endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}
