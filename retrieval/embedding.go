// Package retrieval supplies the RAG passage collaborator: it embeds the
// query and searches stored passages by vector similarity. The matching
// engine never calls it; retrieval results are passed in by the handler.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "learnpath/errors"
)

// Embedding request/response mirror llama.cpp's expected schema
type embeddingRequest struct {
	Content string `json:"content"`
}

type embeddingResponse []struct {
	Embedding [][]float32 `json:"embedding"`
}

// EmbeddingClient calls an embedding server over HTTP.
type EmbeddingClient struct {
	host       string
	httpClient *http.Client
}

func NewEmbeddingClient(host string, timeout time.Duration) *EmbeddingClient {
	return &EmbeddingClient{
		host:       strings.TrimRight(host, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Embed returns the embedding vector for the given text.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.host == "" {
		return nil, apperrors.ErrServiceUnavailable
	}

	body, err := json.Marshal(embeddingRequest{Content: text})
	if err != nil {
		return nil, apperrors.WrapError(err, "marshal embedding request")
	}

	url := c.host + "/embedding"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.WrapError(err, "create embedding request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.WrapError(err, "call embedding server")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.WrapError(err, "read embedding response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.WrapErrorf(apperrors.ErrEmbedding, "embedding server returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperrors.WrapError(err, "parse embedding response")
	}
	if len(parsed) == 0 || len(parsed[0].Embedding) == 0 || len(parsed[0].Embedding[0]) == 0 {
		return nil, fmt.Errorf("embedding server returned empty vector")
	}

	return parsed[0].Embedding[0], nil
}
