package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		APIKey:    "test-key",
		BaseURL:   srv.URL + "/v1/",
		ChatModel: "gpt-4o",
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	_, err := NewClient(Config{ChatModel: "gpt-4o"})
	require.Error(t, err)

	_, err = NewClient(Config{APIKey: "k"})
	require.Error(t, err)
}

func TestCompleteSendsSingleTurn(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"Hi there"},"finish_reason":"stop"}]}`)
	})
	client := newTestClient(t, mux)

	reply, err := client.Complete(context.Background(), "You are a helpful assistant.", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)

	assert.Equal(t, "gpt-4o", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are a helpful assistant.", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "hello", got.Messages[1].Content)
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limited","type":"requests"}}`)
	})
	client := newTestClient(t, mux)

	_, err := client.Complete(context.Background(), "sys", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSynthesizeStreamsAudio(t *testing.T) {
	var got struct {
		Model  string `json:"model"`
		Input  string `json:"input"`
		Voice  string `json:"voice"`
		Format string `json:"response_format"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/audio/speech", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-fake-mp3"))
	})
	client := newTestClient(t, mux)

	rc, err := client.Synthesize(context.Background(), "Hi there")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)

	assert.Equal(t, "ID3-fake-mp3", string(data))
	assert.Equal(t, "tts-1", got.Model)
	assert.Equal(t, "alloy", got.Voice)
	assert.Equal(t, "mp3", got.Format)
	assert.Equal(t, "Hi there", got.Input)
}

func TestTranscribeUploadsFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "voice.webm", header.Filename)
		assert.Equal(t, "webm-bytes", string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"what is in the document?"}`)
	})
	client := newTestClient(t, mux)

	path := filepath.Join(t.TempDir(), "voice.webm")
	require.NoError(t, os.WriteFile(path, []byte("webm-bytes"), 0o644))

	text, err := client.Transcribe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "what is in the document?", text)
}
