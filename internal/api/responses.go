package api

type ErrorBody struct {
	Code    string `json:"code" example:"VALIDATION"`
	Message string `json:"message" example:"quantity must be at least 1"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type DataResponse struct {
	Data interface{} `json:"data"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
