package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MadeByJay/ai-product-search/internal/config"
)

type embeddingsHandler struct {
	dims    int
	reverse bool
	status  int
	delay   time.Duration
	gotBody map[string]interface{}
}

func (h *embeddingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.delay > 0 {
		select {
		case <-time.After(h.delay):
		case <-r.Context().Done():
			return
		}
	}
	if h.status != 0 {
		w.WriteHeader(h.status)
		w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
		return
	}

	var body struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	data := make([]map[string]interface{}, len(body.Input))
	for i := range body.Input {
		vec := make([]float32, h.dims)
		vec[0] = float32(i)
		data[i] = map[string]interface{}{"object": "embedding", "index": i, "embedding": vec}
	}
	if h.reverse {
		for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
			data[i], data[j] = data[j], data[i]
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"object": "list",
		"model":  body.Model,
		"data":   data,
	})
}

func newTestEmbeddingService(t *testing.T, handler http.Handler, dims int, timeout time.Duration) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewEmbeddingService(config.EmbeddingConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL + "/v1",
		Model:      "text-embedding-3-small",
		ImageModel: "dall-e-3",
		Dimensions: dims,
		Timeout:    timeout,
	})
}

func TestEmbedReturnsConfiguredDimensions(t *testing.T) {
	svc := newTestEmbeddingService(t, &embeddingsHandler{dims: 8}, 8, time.Second)

	vec, err := svc.Embed(context.Background(), "ergonomic office chair")
	require.NoError(t, err)
	assert.Len(t, vec, 8)
	assert.Equal(t, 8, svc.Dimensions())
}

func TestEmbedBatchRestoresInputOrder(t *testing.T) {
	svc := newTestEmbeddingService(t, &embeddingsHandler{dims: 4, reverse: true}, 4, time.Second)

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for i, v := range vecs {
		assert.Equal(t, float32(i), v[0])
	}
}

func TestEmbedRejectsDimensionMismatch(t *testing.T) {
	svc := newTestEmbeddingService(t, &embeddingsHandler{dims: 3}, 1536, time.Second)

	_, err := svc.Embed(context.Background(), "lamp")
	assert.ErrorIs(t, err, ErrEmbeddingDimensions)
}

func TestEmbedWrapsUpstreamErrors(t *testing.T) {
	svc := newTestEmbeddingService(t, &embeddingsHandler{status: http.StatusBadRequest}, 4, time.Second)

	_, err := svc.Embed(context.Background(), "lamp")
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestEmbedHonoursTimeout(t *testing.T) {
	svc := newTestEmbeddingService(t, &embeddingsHandler{dims: 4, delay: time.Second}, 4, 50*time.Millisecond)

	_, err := svc.Embed(context.Background(), "lamp")
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEmbedBatchRejectsEmptyInput(t *testing.T) {
	svc := newTestEmbeddingService(t, &embeddingsHandler{dims: 4}, 4, time.Second)

	_, err := svc.EmbedBatch(context.Background(), nil)
	assert.Error(t, err)
}

func TestGenerateImageDecodesInlineData(t *testing.T) {
	png := []byte("\x89PNG fake")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"created": 1,
			"data":    []map[string]interface{}{{"b64_json": base64.StdEncoding.EncodeToString(png)}},
		})
	})
	svc := newTestEmbeddingService(t, handler, 4, time.Second)

	img, err := svc.GenerateImage(context.Background(), "walnut desk, studio photo")
	require.NoError(t, err)
	assert.Equal(t, png, img.Data)
	assert.Empty(t, img.URL)
}

func TestGenerateImageReturnsURL(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"created": 1,
			"data":    []map[string]interface{}{{"url": "https://images.example.com/1.png"}},
		})
	})
	svc := newTestEmbeddingService(t, handler, 4, time.Second)

	img, err := svc.GenerateImage(context.Background(), "lamp")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/1.png", img.URL)
}
