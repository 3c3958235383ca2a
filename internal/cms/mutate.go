package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Patch 对应 CMS mutate 接口中的 patch 操作。
type Patch struct {
	ID           string         `json:"id"`
	SetIfMissing map[string]any `json:"setIfMissing,omitempty"`
	Set          map[string]any `json:"set,omitempty"`
	Inc          map[string]int `json:"inc,omitempty"`
}

// Mutation 只暴露站点实际需要的 patch 形态。
type Mutation struct {
	Patch *Patch `json:"patch,omitempty"`
}

// MutationResult 是单条变更的回执；Document 仅在 returnDocuments 时存在。
type MutationResult struct {
	ID        string          `json:"id"`
	Operation string          `json:"operation"`
	Document  json.RawMessage `json:"document"`
}

type mutateResponse struct {
	TransactionID string           `json:"transactionId"`
	Results       []MutationResult `json:"results"`
}

// Mutate 提交一组变更并返回变更后的文档，需要带令牌的客户端。
func (c *Client) Mutate(ctx context.Context, mutations []Mutation) ([]MutationResult, error) {
	if !c.CanWrite() {
		return nil, ErrReadOnly
	}
	if len(mutations) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return nil, fmt.Errorf("mutate: encode body: %w", err)
	}
	target := c.endpoint("mutate") + "?returnDocuments=true&visibility=sync"

	body, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("mutate: %w", err)
	}

	var resp mutateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mutate: decode response: %w", err)
	}
	return resp.Results, nil
}
