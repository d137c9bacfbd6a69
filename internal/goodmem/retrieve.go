package goodmem

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/quran-omni/omnisearch/internal/domain"
)

// streamRecord mirrors one NDJSON record of a retrieve response. Records
// carry a memory definition, a retrieved excerpt, or both.
type streamRecord struct {
	MemoryDefinition *struct {
		MemoryID string          `json:"memoryId"`
		Metadata domain.Metadata `json:"metadata"`
	} `json:"memoryDefinition"`
	RetrievedItem *struct {
		Chunk *struct {
			Chunk *struct {
				MemoryID  string  `json:"memoryId"`
				ChunkText *string `json:"chunkText"`
			} `json:"chunk"`
			RelevanceScore *float64 `json:"relevanceScore"`
		} `json:"chunk"`
	} `json:"retrievedItem"`
}

// Retrieve runs one retrieval call against a single space and returns the
// deduplicated scored hits. limit <= 0 short-circuits to an empty result
// without a network call. A filter disables the reranker: filtered lookups
// address exact items and must not be reordered or truncated.
func (c *Client) Retrieve(
	ctx context.Context,
	query string,
	space domain.SpaceType,
	spaceID string,
	limit int,
	filter string,
) ([]domain.MemoryHit, error) {
	if limit <= 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, retrieveTimeout)
	defer cancel()

	requestedSize := limit
	if c.shouldApplyReranker(filter) {
		// Give the reranker a larger pool to reorder before truncation.
		requestedSize = max(limit, c.rerankCandidateSize())
	}

	payload := retrievePayload{
		Message:       query,
		RequestedSize: requestedSize,
		FetchMemory:   true,
		SpaceKeys:     []spaceKey{{SpaceID: spaceID, Filter: filter}},
	}
	if c.shouldApplyReranker(filter) {
		payload.PostProcessor = &postProcessor{
			Name: postProcessorName,
			Config: map[string]any{
				"reranker_id":          c.reranker.ID,
				"max_results":          limit,
				"chronological_resort": c.reranker.ChronologicalResort,
			},
		}
	}

	body, err := c.doRetrieve(ctx, payload)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	// Three running maps keyed by memory id. An excerpt replaces the
	// stored text/score pair only on a strictly greater normalized score;
	// metadata records simply upsert.
	metadataByID := make(map[string]domain.Metadata)
	textByID := make(map[string]string)
	scoreByID := make(map[string]float64)
	var order []string

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record streamRecord
		if err := json.Unmarshal(line, &record); err != nil {
			c.logger.Warn("skipping malformed retrieve record",
				zap.String("space", space.String()), zap.Error(err))
			continue
		}

		if def := record.MemoryDefinition; def != nil && def.MemoryID != "" && def.Metadata != nil {
			metadataByID[def.MemoryID] = def.Metadata
		}

		item := record.RetrievedItem
		if item == nil || item.Chunk == nil || item.Chunk.Chunk == nil {
			continue
		}
		chunk := item.Chunk.Chunk
		if chunk.MemoryID == "" || chunk.ChunkText == nil {
			continue
		}

		score := normalizeScore(item.Chunk.RelevanceScore)
		existing, seen := scoreByID[chunk.MemoryID]
		if !seen {
			order = append(order, chunk.MemoryID)
		}
		if !seen || score > existing {
			scoreByID[chunk.MemoryID] = score
			textByID[chunk.MemoryID] = *chunk.ChunkText
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read retrieve stream: %w", err)
	}

	// Final hit set: ids present in both the metadata and the text maps.
	hits := make([]domain.MemoryHit, 0, len(order))
	for _, memoryID := range order {
		metadata, ok := metadataByID[memoryID]
		if !ok {
			continue
		}
		hits = append(hits, domain.MemoryHit{
			Space:    space,
			MemoryID: memoryID,
			Metadata: metadata,
			Text:     textByID[memoryID],
			Score:    scoreByID[memoryID],
		})
	}
	return hits, nil
}

func (c *Client) shouldApplyReranker(filter string) bool {
	return c.reranker.ID != "" && filter == ""
}

func (c *Client) rerankCandidateSize() int {
	if c.reranker.CandidatePoolSize > 0 {
		return c.reranker.CandidatePoolSize
	}
	return 100
}

// normalizeScore maps a raw relevance score onto [0, +inf). The upstream
// occasionally emits inverted-sign scores; missing or NaN scores become 0.
func normalizeScore(raw *float64) float64 {
	if raw == nil || math.IsNaN(*raw) {
		return 0
	}
	return math.Abs(*raw)
}
