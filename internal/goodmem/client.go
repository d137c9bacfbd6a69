// Package goodmem implements the gateway to the GoodMem retrieval service:
// request shaping, post-processor directives, and parsing of the streamed
// NDJSON retrieve responses.
package goodmem

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/quran-omni/omnisearch/internal/domain"
)

// postProcessorName is the factory class the upstream uses to build both
// the reranker and the overview summarizer.
const postProcessorName = "com.goodmem.retrieval.postprocess.ChatPostProcessorFactory"

const (
	connectTimeout  = 10 * time.Second
	listTimeout     = 15 * time.Second
	retrieveTimeout = 60 * time.Second

	maxErrorBody = 1024
)

// RerankerConfig holds reranker post-processor settings. An empty ID
// disables reranking.
type RerankerConfig struct {
	ID                  string
	CandidatePoolSize   int
	ChronologicalResort bool
}

// OverviewConfig holds overview generation settings. An empty LLMID
// disables the feature.
type OverviewConfig struct {
	LLMID              string
	SysPrompt          string
	Prompt             string
	TokenBudget        int
	Temperature        float64
	MaxResults         int
	CandidatePoolSize  int
	RelevanceThreshold *float64
}

// Config holds the gateway settings.
type Config struct {
	BaseURL     string
	APIKey      string
	InsecureTLS bool
	Reranker    RerankerConfig
	Overview    OverviewConfig
	Logger      *zap.Logger
}

// Client talks to the GoodMem retrieval service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	reranker   RerankerConfig
	overview   OverviewConfig
	logger     *zap.Logger
}

// New creates a GoodMem gateway client.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // dev deployments use self-signed certs
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		reranker:   cfg.Reranker,
		overview:   cfg.Overview,
		logger:     logger,
	}
}

// spaceInfo mirrors one entry of the list-spaces response.
type spaceInfo struct {
	Name    string `json:"name"`
	SpaceID string `json:"spaceId"`
}

// ListSpaces returns the upstream space name to id mapping.
func (c *Client) ListSpaces(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/spaces?maxResults=200", nil)
	if err != nil {
		return nil, fmt.Errorf("build list spaces request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamStatusError{Status: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	var parsed struct {
		Spaces []spaceInfo `json:"spaces"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode list spaces response: %w", err)
	}

	result := make(map[string]string, len(parsed.Spaces))
	for _, space := range parsed.Spaces {
		if space.Name != "" && space.SpaceID != "" {
			result[space.Name] = space.SpaceID
		}
	}
	return result, nil
}

// retrievePayload is the request body of /v1/memories:retrieve.
type retrievePayload struct {
	Message            string         `json:"message"`
	RequestedSize      int            `json:"requestedSize"`
	FetchMemory        bool           `json:"fetchMemory"`
	FetchMemoryContent bool           `json:"fetchMemoryContent"`
	SpaceKeys          []spaceKey     `json:"spaceKeys"`
	PostProcessor      *postProcessor `json:"postProcessor,omitempty"`
}

type spaceKey struct {
	SpaceID string `json:"spaceId"`
	Filter  string `json:"filter,omitempty"`
}

type postProcessor struct {
	Name   string         `json:"name"`
	Config map[string]any `json:"config"`
}

// doRetrieve posts a retrieve payload and returns the NDJSON body stream.
// The caller owns the returned body.
func (c *Client) doRetrieve(ctx context.Context, payload retrievePayload) (io.ReadCloser, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal retrieve payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/memories:retrieve", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build retrieve request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, &domain.UpstreamStatusError{Status: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	return resp.Body, nil
}

// readErrorBody reads a truncated upstream error body for diagnostics.
func readErrorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ""
	}
	return string(data)
}
