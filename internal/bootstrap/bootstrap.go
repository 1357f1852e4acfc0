// Package bootstrap wires configuration, provider clients and the handler for
// both process entry points.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"rai-agent/handler"
	"rai-agent/internal/config"
	"rai-agent/internal/integrations/openai"
	"rai-agent/internal/integrations/paramstore"
	"rai-agent/internal/integrations/solscan"
	"rai-agent/internal/metrics"
	"rai-agent/internal/usecase"
)

type App struct {
	Config  config.Config
	Handler *handler.Handler
	Metrics *metrics.Recorder
}

// Build loads configuration and assembles the relay. secrets may be nil, in
// which case SSM is consulted only when PARAM_PREFIX is set.
func Build(ctx context.Context, env config.Env, secrets config.TokenGetter) (*App, error) {
	if env == nil {
		return nil, errors.New("bootstrap: env lookup must not be nil")
	}
	if secrets == nil {
		if prefix := strings.TrimSpace(env("PARAM_PREFIX")); prefix != "" {
			ps, err := newParamStore(ctx, prefix)
			if err != nil {
				return nil, err
			}
			secrets = ps
		}
	}

	cfg, err := config.Load(ctx, env, secrets)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	solscanClient, err := solscan.NewClient(cfg.SolscanAPIKey,
		solscan.WithBaseURL(cfg.SolscanBaseURL),
		solscan.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: solscan client: %w", err)
	}
	openaiClient, err := openai.NewClient(cfg.OpenAIAPIKey,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithHTTPClient(httpClient),
		openai.WithModel(cfg.OpenAIModel),
		openai.WithMaxTokens(cfg.ChatMaxTokens),
		openai.WithTemperature(cfg.ChatTemperature),
	)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: openai client: %w", err)
	}

	recorder := metrics.New()
	svc, err := usecase.NewAnalyzeService(solscanClient, solscanClient, openaiClient, usecase.Settings{
		Mode:           cfg.Mode,
		TransferCount:  cfg.TransferCount,
		MaxQueryLength: cfg.MaxQueryLength,
		TokenName:      cfg.TokenName,
		Observer:       recorder,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: analyze service: %w", err)
	}
	h, err := handler.NewHandler(svc)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: handler: %w", err)
	}

	slog.Info("relay configured",
		"mode", string(cfg.Mode),
		"model", cfg.OpenAIModel,
		"transfer_count", cfg.TransferCount,
		"http_timeout", cfg.HTTPTimeout.String(),
	)
	return &App{Config: cfg, Handler: h, Metrics: recorder}, nil
}

func newParamStore(ctx context.Context, prefix string) (*paramstore.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load AWS config: %w", err)
	}
	ps, err := paramstore.New(awsssm.NewFromConfig(awsCfg), prefix)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: param store: %w", err)
	}
	return ps, nil
}
