// Package api defines the request and response bodies of the normalizer
// HTTP service.
package api

import (
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/pipeline"
)

// NormalizeRequest is the body of POST /api/v1/normalize. An empty ID is
// replaced by a generated one.
type NormalizeRequest struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Reprocess bool   `json:"reprocess"`
}

// BatchRequest is the body of POST /api/v1/normalize/batch. Reprocess
// applies to every record.
type BatchRequest struct {
	Records   []pipeline.Record `json:"records"`
	Reprocess bool              `json:"reprocess"`
}

// BatchResponse keeps results in request order.
type BatchResponse struct {
	Results []*pipeline.Result `json:"results"`
}

// CorrectRequest is the body of POST /api/v1/correct.
type CorrectRequest struct {
	Token string `json:"token"`
}
