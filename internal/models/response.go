package models

// GenerateRequest is the body of POST /generate/{model_id}.
type GenerateRequest struct {
	Prompt  string `json:"prompt"`
	History []Turn `json:"history"`
}

// GenerateResponse is the success body of POST /generate/{model_id}.
type GenerateResponse struct {
	Output string `json:"output"`
}

// ErrorResponse is the body of any non-2xx backend response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RenderRequest is the body of POST /render.
type RenderRequest struct {
	Text string `json:"text"`
}

// RenderResponse carries the HTML fragment produced for a RenderRequest.
type RenderResponse struct {
	HTML string `json:"html"`
}
