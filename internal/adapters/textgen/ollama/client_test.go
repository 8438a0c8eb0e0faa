package ollama

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pet-companion/internal/domain/pets"
	"pet-companion/internal/platform/httpclient"

	"github.com/goccy/go-json"
)

func TestGenerateText(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"  ¡Hola! Estoy feliz. ","done":true}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", time.Second)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	text, err := c.GenerateText(context.Background(), pets.TextRequest{
		System: "Eres Rabanito", User: "¿cómo estás?", MaxTokens: 60, Temperature: 0.8,
	})
	if err != nil {
		t.Fatalf("GenerateText error: %v", err)
	}
	if text != "¡Hola! Estoy feliz." {
		t.Fatalf("unexpected text %q", text)
	}
	if got.Model != DefaultModel || got.Stream || got.Options.NumPredict != 60 || got.System != "Eres Rabanito" {
		t.Fatalf("unexpected request %#v", got)
	}
}

func TestGenerateText_Errors(t *testing.T) {
	status := http.StatusInternalServerError
	body := `boom`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "tinyllama", time.Second)

	_, err := c.GenerateText(context.Background(), pets.TextRequest{User: "x"})
	var he *httpclient.HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected wrapped HTTPError, got %v", err)
	}

	status, body = http.StatusOK, `{"response":"   "}`
	if _, err := c.GenerateText(context.Background(), pets.TextRequest{User: "x"}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New("", "", 0); err == nil {
		t.Fatalf("expected error without base url")
	}
}
