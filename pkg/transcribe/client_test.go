package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithAPIKey("test-key"),
		WithBaseURL(baseURL),
	}, opts...)
	client, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestTranscribeSendsMultipartForm(t *testing.T) {
	audio := []byte("RIFF fake wav bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-large-v3" {
			t.Errorf("model field: %q", got)
		}
		if got := r.FormValue("language"); got != "ar" {
			t.Errorf("language field: %q", got)
		}
		if got := r.FormValue("response_format"); got != "json" {
			t.Errorf("response_format field: %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "audio.wav" {
			t.Errorf("filename: %q", header.Filename)
		}
		uploaded, _ := io.ReadAll(file)
		if !bytes.Equal(uploaded, audio) {
			t.Error("uploaded audio differs from input")
		}

		json.NewEncoder(w).Encode(map[string]string{"text": "مرحبا"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	text, err := client.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "مرحبا" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestTranscribeFailures(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"message": "file too large"},
			})
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL)
		_, err := client.Transcribe(context.Background(), []byte("x"))
		if !errors.Is(err, ErrTranscriptionFailed) {
			t.Errorf("expected ErrTranscriptionFailed, got %v", err)
		}
	})

	t.Run("empty transcription", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"text": "   "})
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL)
		_, err := client.Transcribe(context.Background(), []byte("x"))
		if !errors.Is(err, ErrTranscriptionFailed) {
			t.Errorf("expected ErrTranscriptionFailed, got %v", err)
		}
	})
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}
