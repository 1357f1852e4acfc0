package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"rai-agent/internal/address"
	"rai-agent/internal/config"
	"rai-agent/internal/domain"
	"rai-agent/internal/supply"
)

const (
	defaultTransferCount  = 20
	defaultMaxQueryLength = 1000
	defaultTokenName      = "RAI"
)

// Routes taken by Analyze.
const (
	RouteAnalysis = "analysis"
	RouteChat     = "chat"
)

// Provider labels reported to the Observer.
const (
	ProviderMetadata  = "solscan_meta"
	ProviderTransfers = "solscan_transfers"
	ProviderChat      = "openai"
)

type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, address string) (domain.TokenInfo, error)
}

type TransferFetcher interface {
	FetchEarlyTransfers(ctx context.Context, address string, count int) ([]domain.TransferRecord, error)
}

type ChatResponder interface {
	Respond(ctx context.Context, systemPrompt, userText string) (string, error)
}

// Observer receives per-call and per-request outcomes. *metrics.Recorder
// satisfies it.
type Observer interface {
	ObserveUpstream(provider, outcome string, elapsed time.Duration)
	ObserveRoute(route, outcome string)
}

type noopObserver struct{}

func (noopObserver) ObserveUpstream(string, string, time.Duration) {}
func (noopObserver) ObserveRoute(string, string)                   {}

// Settings are the process-level knobs of the service. Zero values fall back
// to defaults.
type Settings struct {
	Mode           config.Mode
	TransferCount  int
	MaxQueryLength int
	TokenName      string
	Observer       Observer
}

type AnalyzeService struct {
	metadata  MetadataFetcher
	transfers TransferFetcher
	chat      ChatResponder
	observer  Observer

	mode           config.Mode
	transferCount  int
	maxQueryLength int
	tokenName      string
}

type AnalyzeInput struct {
	Query     string
	TokenName string
}

// AnalyzeOutput carries exactly one of Reply (chat route) or Analysis
// (analysis route).
type AnalyzeOutput struct {
	Route    string
	Reply    string
	Analysis *domain.TokenAnalysis
}

func NewAnalyzeService(m MetadataFetcher, t TransferFetcher, c ChatResponder, st Settings) (*AnalyzeService, error) {
	if m == nil {
		return nil, errors.New("usecase: metadata fetcher must not be nil")
	}
	if t == nil {
		return nil, errors.New("usecase: transfer fetcher must not be nil")
	}
	if c == nil {
		return nil, errors.New("usecase: chat responder must not be nil")
	}
	if st.Mode == "" {
		st.Mode = config.ModeConcentration
	}
	if !st.Mode.Valid() {
		return nil, newError(ErrorInternal, ReasonUnsupportedMode, errors.New(string(st.Mode)))
	}
	if st.TransferCount <= 0 {
		st.TransferCount = defaultTransferCount
	}
	if st.MaxQueryLength <= 0 {
		st.MaxQueryLength = defaultMaxQueryLength
	}
	if strings.TrimSpace(st.TokenName) == "" {
		st.TokenName = defaultTokenName
	}
	if st.Observer == nil {
		st.Observer = noopObserver{}
	}
	return &AnalyzeService{
		metadata:       m,
		transfers:      t,
		chat:           c,
		observer:       st.Observer,
		mode:           st.Mode,
		transferCount:  st.TransferCount,
		maxQueryLength: st.MaxQueryLength,
		tokenName:      strings.TrimSpace(st.TokenName),
	}, nil
}

// Analyze routes one query. A detected address is always resolved through the
// token providers; a failure there is returned, never retried as chat.
func (s *AnalyzeService) Analyze(ctx context.Context, in AnalyzeInput) (AnalyzeOutput, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return AnalyzeOutput{}, newError(ErrorInvalidInput, ReasonEmptyQuery, nil)
	}
	if utf8.RuneCountInString(query) > s.maxQueryLength {
		return AnalyzeOutput{}, newError(ErrorInvalidInput, ReasonQueryTooLong, nil)
	}
	log := LoggerFrom(ctx)

	addr, ok := address.Detect(query)
	if !ok {
		log.InfoContext(ctx, "routing query", "route", RouteChat)
		reply, err := s.respond(ctx, in.Query, in.TokenName)
		s.observer.ObserveRoute(RouteChat, routeOutcome(err))
		if err != nil {
			return AnalyzeOutput{}, err
		}
		return AnalyzeOutput{Route: RouteChat, Reply: reply}, nil
	}

	log.InfoContext(ctx, "routing query", "route", RouteAnalysis, "address", addr, "mode", string(s.mode))
	analysis, err := s.analyze(ctx, addr)
	s.observer.ObserveRoute(RouteAnalysis, routeOutcome(err))
	if err != nil {
		return AnalyzeOutput{}, err
	}
	return AnalyzeOutput{Route: RouteAnalysis, Analysis: analysis}, nil
}

func (s *AnalyzeService) respond(ctx context.Context, query, tokenName string) (string, error) {
	if strings.TrimSpace(tokenName) == "" {
		tokenName = s.tokenName
	}
	reply, err := timed(s, ProviderChat, func() (string, error) {
		return s.chat.Respond(ctx, buildChatSystemPrompt(tokenName), query)
	})
	if err != nil {
		return "", s.fail(ctx, upstreamFailure{failed: ReasonChatFailed, empty: ReasonChatEmpty}, err)
	}
	return reply, nil
}

func (s *AnalyzeService) analyze(ctx context.Context, addr string) (*domain.TokenAnalysis, error) {
	info, err := timed(s, ProviderMetadata, func() (domain.TokenInfo, error) {
		return s.metadata.FetchMetadata(ctx, addr)
	})
	if err != nil {
		return nil, s.fail(ctx, upstreamFailure{failed: ReasonMetadataFailed, empty: ReasonMetadataEmpty}, err, "address", addr)
	}
	analysis := &domain.TokenAnalysis{ContractAddress: addr, TokenInfo: info}
	if s.mode == config.ModeMetadata {
		return analysis, nil
	}

	transfers, err := timed(s, ProviderTransfers, func() ([]domain.TransferRecord, error) {
		return s.transfers.FetchEarlyTransfers(ctx, addr, s.transferCount)
	})
	if err != nil {
		return nil, s.fail(ctx, upstreamFailure{failed: ReasonTransfersFailed, empty: ReasonTransfersEmpty}, err, "address", addr)
	}
	if s.mode == config.ModeTransfers {
		analysis.FirstTransfers = transfers
		return analysis, nil
	}

	amounts := domain.Amounts(transfers)
	pct := supply.Concentration(info.TotalSupply, amounts)
	if pct > 100 {
		LoggerFrom(ctx).WarnContext(ctx, "supply concentration above 100%",
			"address", addr,
			"percentage", pct,
			"total_supply", info.TotalSupply,
			"moved", sum(amounts),
		)
	}
	analysis.SupplyPercentage = &pct
	if s.mode == config.ModeConcentration {
		return analysis, nil
	}

	narrative, err := timed(s, ProviderChat, func() (string, error) {
		return s.chat.Respond(ctx, buildNarrationSystemPrompt(), buildAnalysisPrompt(*analysis, len(transfers)))
	})
	if err != nil {
		return nil, s.fail(ctx, upstreamFailure{failed: ReasonNarrationFailed, empty: ReasonNarrationEmpty}, err, "address", addr)
	}
	analysis.Narrative = narrative
	return analysis, nil
}

// fail classifies err for the call site and logs the provider detail that
// the caller will not see.
func (s *AnalyzeService) fail(ctx context.Context, site upstreamFailure, err error, attrs ...any) *Error {
	ucErr := site.classify(err)
	attrs = append(attrs, "code", string(ucErr.Code), "reason", ucErr.Reason, "err", err)
	if status, ok := upstreamStatusCode(err); ok {
		attrs = append(attrs, "status", status)
	}
	LoggerFrom(ctx).WarnContext(ctx, "upstream call failed", attrs...)
	return ucErr
}

func timed[T any](s *AnalyzeService, provider string, call func() (T, error)) (T, error) {
	start := time.Now()
	v, err := call()
	s.observer.ObserveUpstream(provider, upstreamOutcome(err), time.Since(start))
	return v, err
}

func upstreamOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrEmptyResult):
		return "empty"
	case isStatusError(err):
		return "http_error"
	default:
		return "network_error"
	}
}

func routeOutcome(err error) string {
	var ucErr *Error
	if errors.As(err, &ucErr) {
		return strings.ToLower(string(ucErr.Code))
	}
	if err != nil {
		return strings.ToLower(string(ErrorInternal))
	}
	return "ok"
}

func sum(vs []float64) float64 {
	var total float64
	for _, v := range vs {
		total += v
	}
	return total
}

type loggerKey struct{}

// ContextWithLogger attaches a request-scoped logger, typically carrying a
// correlation id.
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFrom returns the logger attached to ctx, or slog.Default().
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
