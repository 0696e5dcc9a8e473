// Package imagegen 提供图片生成提供商客户端
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"deckgen-ai-api/internal/config"
	apperrors "deckgen-ai-api/pkg/errors"
	"deckgen-ai-api/pkg/metrics"
	"deckgen-ai-api/pkg/tracer"
)

// Generator 图片生成接口
type Generator interface {
	// Generate 根据提示词生成一张图片，返回原始字节
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Client 基于 openai-go Images API 的实现
type Client struct {
	cfg  config.ImageGenConfig
	opts []option.RequestOption
}

// NewClient 创建图片生成客户端
func NewClient(cfg *config.Config) (*Client, error) {
	igCfg := cfg.ImageGen
	if igCfg.APIKey == "" {
		return nil, errors.New("imagegen api key missing; provide imagegen.api_key")
	}
	opts := []option.RequestOption{option.WithAPIKey(igCfg.APIKey)}
	if igCfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(igCfg.BaseURL))
	}
	return &Client{cfg: igCfg, opts: opts}, nil
}

// Generate 生成一张图片并返回解码后的字节
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "imagegen.Generate")
	defer span.End()

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	client := openai.NewClient(c.opts...)
	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(c.cfg.Model),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		Size:           openai.ImageGenerateParamsSize(c.cfg.Size),
	})
	metrics.ImageGenDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ImageGenTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Wrap(err, apperrors.CodeLLMProviderTimeout, "image generation timed out")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeImageGenFailed, "image provider call failed")
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		metrics.ImageGenTotal.WithLabelValues("error").Inc()
		return nil, apperrors.New(apperrors.CodeImageGenFailed, "image provider returned no image")
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		metrics.ImageGenTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err, apperrors.CodeImageGenFailed, "failed to decode image payload")
	}

	metrics.ImageGenTotal.WithLabelValues("success").Inc()
	return raw, nil
}
