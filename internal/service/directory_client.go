package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DirectoryArtisan 外部工匠目录返回的条目
type DirectoryArtisan struct {
	Name  string `json:"name"`
	Trade string `json:"trade"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type directoryResponse struct {
	Status   int                `json:"status"`
	Msg      string             `json:"msg"`
	Artisans []DirectoryArtisan `json:"artisans"`
}

// DirectoryClient 外部工匠目录（第三方 API）客户端
type DirectoryClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewDirectoryClient 创建目录客户端
func NewDirectoryClient(baseURL, apiKey string, logger *zap.Logger) *DirectoryClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader("X-Api-Key", apiKey)
	}
	return &DirectoryClient{httpClient: client, logger: logger}
}

// SearchArtisans 按工种检索目录，trade 为空返回全部
func (c *DirectoryClient) SearchArtisans(ctx context.Context, trade string) ([]DirectoryArtisan, error) {
	var out directoryResponse
	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(&out)
	if trade != "" {
		req.SetQueryParam("trade", trade)
	}

	resp, err := req.Get("/api/v1/artisans")
	if err != nil {
		return nil, fmt.Errorf("directory request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode())
	}
	if out.Status != 0 {
		return nil, fmt.Errorf("directory error: %s", out.Msg)
	}

	c.logger.Debug("directory search",
		zap.String("trade", trade), zap.Int("count", len(out.Artisans)))
	return out.Artisans, nil
}
