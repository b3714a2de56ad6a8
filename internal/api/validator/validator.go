// Package validator checks normalizer API requests and reports per-field
// failures.
package validator

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/api"
	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
)

const (
	maxIDLength    = 255
	maxTextLength  = 10000
	maxTokenLength = 64
	maxBatchSize   = 1000
)

// ValidationError holds per-field validation failure messages. It wraps
// apperrors.ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func ValidateNormalizeRequest(req *api.NormalizeRequest) error {
	errs := make(map[string]string)
	checkRecord(req.ID, req.Text, "", errs)
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ValidateBatchRequest checks every record; field names carry the record
// index, e.g. "records[3].text".
func ValidateBatchRequest(req *api.BatchRequest) error {
	errs := make(map[string]string)
	switch n := len(req.Records); {
	case n == 0:
		errs["records"] = "at least one record is required"
	case n > maxBatchSize:
		errs["records"] = fmt.Sprintf("at most %d records per batch", maxBatchSize)
	default:
		seen := make(map[string]int, n)
		for i := range req.Records {
			prefix := fmt.Sprintf("records[%d].", i)
			checkRecord(req.Records[i].ID, req.Records[i].Text, prefix, errs)
			if id := req.Records[i].ID; id != "" {
				if first, dup := seen[id]; dup {
					errs[prefix+"id"] = fmt.Sprintf("duplicates records[%d].id", first)
				}
				seen[id] = i
			}
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func ValidateCorrectRequest(req *api.CorrectRequest) error {
	errs := make(map[string]string)
	switch {
	case req.Token == "":
		errs["token"] = "token is required"
	case len(req.Token) > maxTokenLength:
		errs["token"] = fmt.Sprintf("token must be at most %d bytes", maxTokenLength)
	case strings.IndexFunc(req.Token, unicode.IsSpace) >= 0:
		errs["token"] = "token must be a single word"
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func checkRecord(id, text, prefix string, errs map[string]string) {
	if len(id) > maxIDLength {
		errs[prefix+"id"] = fmt.Sprintf("id must be at most %d characters", maxIDLength)
	}
	if strings.TrimSpace(text) == "" {
		errs[prefix+"text"] = "text is required and must not be blank"
	} else if len(text) > maxTextLength {
		errs[prefix+"text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	}
}
