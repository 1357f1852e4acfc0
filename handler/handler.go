package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"rai-agent/internal/domain"
	"rai-agent/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	maxBodyBytes      = 1 << 20
	welcomeMessage    = "Welcome to the RAI Token Analysis API. Use /analyze to get token insights."
)

type Analyzer interface {
	Analyze(ctx context.Context, in usecase.AnalyzeInput) (usecase.AnalyzeOutput, error)
}

// Handler serves the relay over both net/http and API Gateway proxy events.
type Handler struct {
	analyzer Analyzer
}

type analyzeRequest struct {
	UserQuery string `json:"user_query"`
	TokenName string `json:"token_name"`
}

type analysisResponse struct {
	ContractAddress  string                  `json:"contract_address"`
	TokenInfo        domain.TokenInfo        `json:"token_info"`
	FirstTransfers   []domain.TransferRecord `json:"first_transfers,omitempty"`
	SupplyPercentage *float64                `json:"first_20_transactions_supply_percentage,omitempty"`
	Analysis         string                  `json:"analysis,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type response struct {
	status int
	body   any
	allow  string
}

func NewHandler(a Analyzer) (*Handler, error) {
	if a == nil {
		return nil, errors.New("handler: analyzer must not be nil")
	}
	return &Handler{analyzer: a}, nil
}

// Handle is the AWS Lambda entry point.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			body = nil
		} else {
			body = decoded
		}
	}

	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = newCorrelationID()
	}
	resp := h.dispatch(ctx, correlationID, req.HTTPMethod, req.Path, body)

	headers := map[string]string{
		"Content-Type":                "application/json",
		correlationHeader:             correlationID,
		"Access-Control-Allow-Origin": "*",
	}
	if resp.allow != "" {
		headers["Allow"] = resp.allow
	}
	return events.APIGatewayProxyResponse{
		StatusCode: resp.status,
		Headers:    headers,
		Body:       string(encode(resp.body)),
	}, nil
}

// ServeHTTP serves the same routes as Handle for the standalone server.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	correlationID := strings.TrimSpace(r.Header.Get(correlationHeader))
	if correlationID == "" {
		correlationID = newCorrelationID()
	}

	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			body = nil
		}
	}
	resp := h.dispatch(r.Context(), correlationID, r.Method, r.URL.Path, body)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(correlationHeader, correlationID)
	if resp.allow != "" {
		w.Header().Set("Allow", resp.allow)
	}
	w.WriteHeader(resp.status)
	_, _ = w.Write(encode(resp.body))
}

func (h *Handler) dispatch(ctx context.Context, correlationID, method, path string, body []byte) response {
	logger := slog.Default().With("correlation_id", correlationID)
	ctx = usecase.ContextWithLogger(ctx, logger)
	start := time.Now()

	resp := h.route(ctx, method, path, body)
	logger.InfoContext(ctx, "request handled",
		"method", method,
		"path", path,
		"status", resp.status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp
}

func (h *Handler) route(ctx context.Context, method, path string, body []byte) response {
	switch normalizePath(path) {
	case "/":
		if method != http.MethodGet && method != http.MethodHead {
			return methodNotAllowed(http.MethodGet)
		}
		return response{status: http.StatusOK, body: messageResponse{Message: welcomeMessage}}
	case "/analyze":
		if method != http.MethodPost {
			return methodNotAllowed(http.MethodPost)
		}
		return h.analyze(ctx, body)
	default:
		return response{status: http.StatusNotFound, body: errorResponse{Error: "Not found.", Code: "NOT_FOUND"}}
	}
}

func (h *Handler) analyze(ctx context.Context, body []byte) response {
	var req analyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		usecase.LoggerFrom(ctx).WarnContext(ctx, "invalid request body", "err", err)
		return response{status: http.StatusBadRequest, body: errorResponse{
			Error: "Invalid request body.",
			Code:  string(usecase.ErrorInvalidInput),
		}}
	}

	out, err := h.analyzer.Analyze(ctx, usecase.AnalyzeInput{Query: req.UserQuery, TokenName: req.TokenName})
	if err != nil {
		return errorResult(ctx, err)
	}
	if out.Analysis != nil {
		a := out.Analysis
		return response{status: http.StatusOK, body: analysisResponse{
			ContractAddress:  a.ContractAddress,
			TokenInfo:        a.TokenInfo,
			FirstTransfers:   a.FirstTransfers,
			SupplyPercentage: a.SupplyPercentage,
			Analysis:         a.Narrative,
		}}
	}
	return response{status: http.StatusOK, body: chatResponse{Response: out.Reply}}
}

// errorResult serializes a failed analysis. Only malformed input is a 4xx;
// provider failures travel as a 200 with an error payload.
func errorResult(ctx context.Context, err error) response {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		usecase.LoggerFrom(ctx).ErrorContext(ctx, "unexpected analyze error", "err", err)
		ucErr = &usecase.Error{Code: usecase.ErrorInternal, Reason: "unexpected", Err: err}
	}
	status := http.StatusOK
	if ucErr.Code == usecase.ErrorInvalidInput {
		status = http.StatusBadRequest
	}
	return response{status: status, body: errorResponse{Error: ucErr.Message(), Code: string(ucErr.Code)}}
}

func methodNotAllowed(allow string) response {
	return response{
		status: http.StatusMethodNotAllowed,
		body:   errorResponse{Error: "Method not allowed.", Code: "METHOD_NOT_ALLOWED"},
		allow:  allow,
	}
}

func normalizePath(p string) string {
	if p = strings.TrimRight(strings.TrimSpace(p), "/"); p == "" {
		return "/"
	}
	return p
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":"Internal server error.","code":"INTERNAL_ERROR"}`)
	}
	return b
}

var newCorrelationID = func() string {
	return uuid.NewString()
}
