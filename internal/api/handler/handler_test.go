package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/api"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/spelling"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/spelling/dictionary"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/stemmer"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/tagger"
	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
)

type failingRunner struct{ err error }

func (f failingRunner) Run(context.Context, pipeline.Record, bool) (*pipeline.Result, error) {
	return nil, f.err
}

func (f failingRunner) RunBatch(context.Context, []pipeline.Record, bool) ([]*pipeline.Result, error) {
	return nil, f.err
}

func newTestMux() *http.ServeMux {
	dict := dictionary.New(map[string]int{"the": 80, "cat": 20, "happy": 50, "so": 100})
	corr := spelling.NewCorrector(dict, spelling.Options{})
	p := pipeline.New(corr, tagger.New(), stemmer.New(), pipeline.Config{Workers: 2})
	mux := http.NewServeMux()
	New(p, corr).Register(mux)
	return mux
}

func do(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNormalize(t *testing.T) {
	rec := do(t, newTestMux(), "/api/v1/normalize", `{"id":"t1","text":"sooo happy with teh cat #blessed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var res pipeline.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.ID != "t1" {
		t.Errorf("id = %q", res.ID)
	}
	if got := strings.Join(res.Tokens, " "); got != "so happy with the cat" {
		t.Errorf("tokens = %q", got)
	}
	if len(res.Hashtags) != 1 || res.Hashtags[0] != "#blessed" {
		t.Errorf("hashtags = %v", res.Hashtags)
	}
}

func TestNormalizeGeneratesID(t *testing.T) {
	rec := do(t, newTestMux(), "/api/v1/normalize", `{"text":"the cat"}`)
	var res pipeline.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if len(res.ID) != 36 {
		t.Errorf("generated id = %q, want a uuid", res.ID)
	}
}

func TestNormalizeRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name, body string
		field      string
		want       int
	}{
		{"malformed json", `{"text":`, "", http.StatusBadRequest},
		{"blank text", `{"text":"   "}`, "text", http.StatusBadRequest},
		{"oversized body", `{"text":"` + strings.Repeat("a", maxBodyBytes) + `"}`, "", http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestMux(), "/api/v1/normalize", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			var body struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Error == "" {
				t.Error("empty error message")
			}
			if tt.field != "" && body.Fields[tt.field] == "" {
				t.Errorf("missing field error for %q: %+v", tt.field, body)
			}
		})
	}
}

func TestNormalizeMapsRunnerErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("load: %w", apperrors.ErrDictionaryUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("process: %w", apperrors.ErrTimeout), http.StatusGatewayTimeout},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		mux := http.NewServeMux()
		New(failingRunner{err: tt.err}, nil).Register(mux)
		if rec := do(t, mux, "/api/v1/normalize", `{"text":"hello"}`); rec.Code != tt.want {
			t.Errorf("error %v: status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}

func TestNormalizeBatch(t *testing.T) {
	body := `{"records":[{"id":"a","text":"the cat"},{"text":"so happy"},{"id":"c","text":"teh"}]}`
	rec := do(t, newTestMux(), "/api/v1/normalize/batch", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp api.BatchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("got %d results", len(resp.Results))
	}
	if resp.Results[0].ID != "a" || resp.Results[2].ID != "c" || resp.Results[1].ID == "" {
		t.Errorf("ids = %s, %s, %s", resp.Results[0].ID, resp.Results[1].ID, resp.Results[2].ID)
	}
	if got := resp.Results[2].Rejoined; got != "the" {
		t.Errorf("corrected record = %q, want the", got)
	}
}

func TestNormalizeBatchRejectsEmpty(t *testing.T) {
	if rec := do(t, newTestMux(), "/api/v1/normalize/batch", `{"records":[]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCorrect(t *testing.T) {
	rec := do(t, newTestMux(), "/api/v1/correct", `{"token":"Teh"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got struct {
		Input  string `json:"input"`
		Output string `json:"output"`
		Tier   string `json:"tier"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Input != "teh" || got.Output != "the" || got.Tier != "edit1" {
		t.Errorf("correction = %+v", got)
	}

	if rec := do(t, newTestMux(), "/api/v1/correct", `{"token":"two words"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("multi-word token status = %d, want 400", rec.Code)
	}
}
