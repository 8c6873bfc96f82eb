package api

type ErrorResponse struct {
	Error string `json:"error" example:"class not found"`
}

// DenialResponse is a policy refusal: the booking was understood but not
// permitted. Tag is a stable machine key, Error the member-facing reason.
type DenialResponse struct {
	Error string `json:"error" example:"you have reached your weekly limit of 2 class(es)"`
	Tag   string `json:"tag" example:"weekly_limit"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Email queued successfully"`
}

type HealthResponse struct {
	Status     string `json:"status" example:"ok"`
	Database   string `json:"database" example:"ok"`
	EmailQueue int64  `json:"email_queue" example:"0"`
}
