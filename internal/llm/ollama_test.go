package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Success(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","response":"4","done":true,"eval_count":3}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL+"/", time.Second)
	res, err := c.Generate(context.Background(), "2+2=?", "llama3", Options{})
	require.NoError(t, err)

	assert.Equal(t, "4", res.OutputText)
	assert.GreaterOrEqual(t, res.LatencyMs, int64(0))
	raw, ok := res.Metadata["raw_response"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, raw["done"])
	assert.Equal(t, float64(3), raw["eval_count"])

	assert.Equal(t, "llama3", got["model"])
	assert.Equal(t, "2+2=?", got["prompt"])
	assert.Equal(t, false, got["stream"])
	assert.NotContains(t, got, "format")
}

func TestGenerate_StructuredOutputAndExtraOptions(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"{}"}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, time.Second)
	_, err := c.Generate(context.Background(), "p", "mistral", Options{
		Format: "json",
		Extra:  map[string]interface{}{"temperature": 0.1, "stream": true},
	})
	require.NoError(t, err)

	assert.Equal(t, "json", got["format"])
	assert.Equal(t, 0.1, got["temperature"])
	assert.Equal(t, false, got["stream"], "stream is always disabled")
}

func TestGenerate_NonSuccessStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, time.Second).Generate(context.Background(), "p", "missing", Options{})
	require.Error(t, err)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusNotFound, upErr.StatusCode)
	assert.Contains(t, upErr.Body, "model not found")
	assert.Equal(t, 1, calls, "no retry")
}

func TestGenerate_MalformedBody(t *testing.T) {
	for name, body := range map[string]string{
		"not json":         "<html>",
		"missing response": `{"done":true}`,
		"non-string":       `{"response":42}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewOllamaClient(srv.URL, time.Second).Generate(context.Background(), "p", "llama3", Options{})
			var upErr *UpstreamError
			require.True(t, errors.As(err, &upErr))
			assert.Zero(t, upErr.StatusCode)
		})
	}
}

func TestGenerate_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewOllamaClient(url, time.Second).Generate(context.Background(), "p", "llama3", Options{})
	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Error(t, upErr.Unwrap())
}

func TestGenerate_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewOllamaClient(srv.URL, 50*time.Millisecond).Generate(context.Background(), "p", "llama3", Options{})
	var upErr *UpstreamError
	assert.True(t, errors.As(err, &upErr))
}

func TestGenerate_IgnoresCallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte(`{"response":"done"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewOllamaClient(srv.URL, time.Second).Generate(ctx, "p", "llama3", Options{})
	require.NoError(t, err)
	assert.Equal(t, "done", res.OutputText)
}

func TestUpstreamError_Message(t *testing.T) {
	assert.Equal(t, "generation backend returned 500: boom", (&UpstreamError{StatusCode: 500, Body: "boom"}).Error())
	assert.Equal(t, "generation backend: eof", (&UpstreamError{Err: errors.New("eof")}).Error())
}
