package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
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

func TestSynthesizeRawAudioResponse(t *testing.T) {
	mp3 := []byte{0xFF, 0xFB, 0x90, 0x00, 0x01, 0x02}

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(mp3)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	result, err := client.Synthesize(context.Background(), "مرحباً")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if !bytes.Equal(result.Audio, mp3) {
		t.Error("audio bytes differ from response body")
	}
	if result.Format != FormatMP3 {
		t.Errorf("unexpected format %q", result.Format)
	}
	if result.CharCount != 6 {
		t.Errorf("unexpected char count %d", result.CharCount)
	}

	if got["model"] != "playai-tts-arabic" || got["voice"] != "Amira-PlayAI" {
		t.Errorf("unexpected request payload: %v", got)
	}
	if got["input"] != "مرحباً" || got["response_format"] != "mp3" {
		t.Errorf("unexpected request payload: %v", got)
	}
}

func TestSynthesizeBase64EnvelopeResponse(t *testing.T) {
	mp3 := []byte{0xFF, 0xFB, 0x90, 0x00}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"audio": base64.StdEncoding.EncodeToString(mp3),
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	result, err := client.Synthesize(context.Background(), "أهلاً")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !bytes.Equal(result.Audio, mp3) {
		t.Error("decoded audio differs from the encoded payload")
	}
}

func TestSynthesizeFailures(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"message": "input too long"},
			})
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL)
		if _, err := client.Synthesize(context.Background(), "نص"); !errors.Is(err, ErrSynthesisFailed) {
			t.Errorf("expected ErrSynthesisFailed, got %v", err)
		}
	})

	t.Run("empty audio", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "audio/mpeg")
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL)
		if _, err := client.Synthesize(context.Background(), "نص"); !errors.Is(err, ErrSynthesisFailed) {
			t.Errorf("expected ErrSynthesisFailed, got %v", err)
		}
	})

	t.Run("envelope without audio", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL)
		if _, err := client.Synthesize(context.Background(), "نص"); !errors.Is(err, ErrSynthesisFailed) {
			t.Errorf("expected ErrSynthesisFailed, got %v", err)
		}
	})
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}
