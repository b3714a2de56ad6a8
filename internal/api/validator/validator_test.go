package validator

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/api"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/pipeline"
	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error %v is not a ValidationError", err)
	}
	return ve.Fields
}

func TestValidateNormalizeRequest(t *testing.T) {
	tests := []struct {
		name  string
		req   api.NormalizeRequest
		field string
	}{
		{"ok", api.NormalizeRequest{Text: "hello"}, ""},
		{"ok with id", api.NormalizeRequest{ID: "t1", Text: "hello"}, ""},
		{"blank text", api.NormalizeRequest{Text: "  \t "}, "text"},
		{"long text", api.NormalizeRequest{Text: strings.Repeat("a", maxTextLength+1)}, "text"},
		{"long id", api.NormalizeRequest{ID: strings.Repeat("x", maxIDLength+1), Text: "hi"}, "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fields(t, ValidateNormalizeRequest(&tt.req))
			if tt.field == "" {
				if got != nil {
					t.Errorf("unexpected errors %v", got)
				}
				return
			}
			if _, ok := got[tt.field]; !ok {
				t.Errorf("expected error on %q, got %v", tt.field, got)
			}
		})
	}
}

func TestValidateBatchRequest(t *testing.T) {
	if got := fields(t, ValidateBatchRequest(&api.BatchRequest{})); got["records"] == "" {
		t.Errorf("empty batch accepted: %v", got)
	}
	req := &api.BatchRequest{Records: []pipeline.Record{
		{ID: "a", Text: "one"},
		{ID: "b", Text: ""},
		{ID: "a", Text: "three"},
	}}
	got := fields(t, ValidateBatchRequest(req))
	if _, ok := got["records[1].text"]; !ok {
		t.Errorf("missing blank text error: %v", got)
	}
	if _, ok := got["records[2].id"]; !ok {
		t.Errorf("missing duplicate id error: %v", got)
	}
	if len(got) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(got), got)
	}
}

func TestValidateCorrectRequest(t *testing.T) {
	tests := map[string]bool{
		"teh":                   true,
		"":                      false,
		"two words":             false,
		strings.Repeat("a", 65): false,
		strings.Repeat("a", 64): true,
	}
	for token, ok := range tests {
		err := ValidateCorrectRequest(&api.CorrectRequest{Token: token})
		if (err == nil) != ok {
			t.Errorf("ValidateCorrectRequest(%q) = %v, want ok=%v", token, err, ok)
		}
	}
}

func TestValidationErrorMessageSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"text": "bad", "id": "long"}}
	if got := err.Error(); got != "id:long; text:bad" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidationErrorIsInvalidInput(t *testing.T) {
	err := ValidateCorrectRequest(&api.CorrectRequest{})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("error %v does not wrap ErrInvalidInput", err)
	}
	if got := apperrors.HTTPStatusCode(err); got != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", got)
	}
}
