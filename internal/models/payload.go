package models

import "time"

// ForwardPayload is the body posted to a push target by the forward sink.
type ForwardPayload struct {
	ScrapedAt time.Time `json:"scrapedAt"`
	Count     int       `json:"count"`
	Products  []Product `json:"products"`
}

// RunResponse is returned by the pipeline trigger endpoints on success.
type RunResponse struct {
	Message  string    `json:"message"`
	Count    int       `json:"count"`
	Products []Product `json:"products,omitempty"`
}

// ErrorResponse is returned by the pipeline trigger endpoints on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ForwardRequest selects the push target for a forward run.
type ForwardRequest struct {
	WebhookURL string `json:"webhookUrl"`
}
