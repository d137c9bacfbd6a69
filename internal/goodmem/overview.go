package goodmem

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quran-omni/omnisearch/internal/domain"
)

// overviewRecord mirrors the summary-bearing fields of an overview
// response record.
type overviewRecord struct {
	AbstractReply *struct {
		Text string `json:"text"`
	} `json:"abstractReply"`
	Summary any `json:"summary"`
	Results []struct {
		Summary any `json:"summary"`
	} `json:"results"`
}

// OverviewEnabled reports whether overview generation is configured.
func (c *Client) OverviewEnabled() bool {
	return c.overview.LLMID != ""
}

// GenerateOverview asks the upstream summarizer for an LLM-generated
// synthesis over the given spaces. Returns domain.ErrOverviewDisabled when
// the feature is not configured; "" when no spaces are given or the stream
// carries no summary.
//
// The scan keeps the last non-blank value under a fixed priority: an
// explicit abstractReply always overrides, a top-level summary or a summary
// nested in results[] only fills an empty overview. Later abstractReply
// records overriding earlier fallback matches is observed upstream
// behavior, not a documented contract.
func (c *Client) GenerateOverview(ctx context.Context, query string, spaceIDs []string) (string, error) {
	if !c.OverviewEnabled() {
		return "", domain.ErrOverviewDisabled
	}

	keys := make([]spaceKey, 0, len(spaceIDs))
	for _, id := range spaceIDs {
		if strings.TrimSpace(id) == "" {
			continue
		}
		keys = append(keys, spaceKey{SpaceID: id})
	}
	if len(keys) == 0 {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, retrieveTimeout)
	defer cancel()

	ppConfig := map[string]any{
		"llm_id": c.overview.LLMID,
	}
	if c.reranker.ID != "" {
		ppConfig["reranker_id"] = c.reranker.ID
		if c.overview.RelevanceThreshold != nil {
			ppConfig["relevance_threshold"] = *c.overview.RelevanceThreshold
		}
		ppConfig["chronological_resort"] = c.reranker.ChronologicalResort
	}
	if c.overview.MaxResults > 0 {
		ppConfig["max_results"] = c.overview.MaxResults
	}
	if c.overview.Temperature >= 0 {
		ppConfig["llm_temp"] = c.overview.Temperature
	}
	if c.overview.TokenBudget > 0 {
		ppConfig["gen_token_budget"] = c.overview.TokenBudget
	}
	if strings.TrimSpace(c.overview.SysPrompt) != "" {
		ppConfig["sys_prompt"] = c.overview.SysPrompt
	}
	if strings.TrimSpace(c.overview.Prompt) != "" {
		ppConfig["prompt"] = c.overview.Prompt
	}

	payload := retrievePayload{
		Message:       query,
		RequestedSize: c.overviewCandidateSize(),
		FetchMemory:   true,
		SpaceKeys:     keys,
		PostProcessor: &postProcessor{Name: postProcessorName, Config: ppConfig},
	}

	body, err := c.doRetrieve(ctx, payload)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	var overview string

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record overviewRecord
		if err := json.Unmarshal(line, &record); err != nil {
			c.logger.Warn("skipping malformed overview record", zap.Error(err))
			continue
		}

		if record.AbstractReply != nil {
			if text := strings.TrimSpace(record.AbstractReply.Text); text != "" {
				overview = text
			}
		}
		if overview != "" {
			continue
		}

		if summary, ok := record.Summary.(string); ok {
			overview = strings.TrimSpace(summary)
			continue
		}
		for _, result := range record.Results {
			if summary, ok := result.Summary.(string); ok && strings.TrimSpace(summary) != "" {
				overview = strings.TrimSpace(summary)
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read overview stream: %w", err)
	}

	return overview, nil
}

func (c *Client) overviewCandidateSize() int {
	size := c.overview.CandidatePoolSize
	if size <= 0 {
		size = 24
	}
	if c.overview.MaxResults > size {
		size = c.overview.MaxResults
	}
	return size
}
