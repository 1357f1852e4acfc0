package usecase

import (
	"errors"
	"fmt"

	"rai-agent/internal/domain"
)

type ErrorCode string

const (
	ErrorInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrorUpstream      ErrorCode = "UPSTREAM_ERROR"
	ErrorUpstreamEmpty ErrorCode = "UPSTREAM_EMPTY"
	ErrorNetwork       ErrorCode = "NETWORK_ERROR"
	ErrorInternal      ErrorCode = "INTERNAL_ERROR"
)

// Reasons, one per failure site.
const (
	ReasonEmptyQuery      = "empty_query"
	ReasonQueryTooLong    = "query_too_long"
	ReasonMetadataFailed  = "metadata_fetch_failed"
	ReasonMetadataEmpty   = "metadata_empty"
	ReasonTransfersFailed = "transfers_fetch_failed"
	ReasonTransfersEmpty  = "transfers_empty"
	ReasonChatFailed      = "chat_error"
	ReasonChatEmpty       = "chat_empty_reply"
	ReasonConnection      = "connection_error"
	ReasonUnsupportedMode = "unsupported_mode"
	ReasonNarrationFailed = "narration_error"
	ReasonNarrationEmpty  = "narration_empty_reply"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var messages = map[string]string{
	ReasonEmptyQuery:      "Please send a question or a token contract address.",
	ReasonQueryTooLong:    "Your message is too long. Please shorten it and try again.",
	ReasonMetadataFailed:  "Failed to fetch token metadata. Please try again later.",
	ReasonMetadataEmpty:   "No token data found for this contract address.",
	ReasonTransfersFailed: "Failed to fetch transfer history. Please try again later.",
	ReasonTransfersEmpty:  "No transfer data available for this token.",
	ReasonChatFailed:      "Sorry, I couldn't process your request right now. Please try again later.",
	ReasonChatEmpty:       "Sorry, I didn't get a response. Please try again.",
	ReasonNarrationFailed: "Sorry, I couldn't analyze this token right now. Please try again later.",
	ReasonNarrationEmpty:  "Sorry, I couldn't produce an analysis for this token. Please try again.",
	ReasonConnection:      "Connection error. Please try again later.",
}

// Message is the user-facing text for the error. Provider details never
// appear in it.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	if e.Code == ErrorNetwork {
		return messages[ReasonConnection]
	}
	if m, ok := messages[e.Reason]; ok {
		return m
	}
	return "Internal server error."
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// upstreamFailure describes, for one call site, the reasons to use for
// HTTP-level and empty-payload failures.
type upstreamFailure struct {
	failed string
	empty  string
}

// classify maps an integration error onto the usecase taxonomy. Network
// failures keep the site's failed reason so logs still say which call broke.
func (f upstreamFailure) classify(err error) *Error {
	switch {
	case errors.Is(err, domain.ErrEmptyResult):
		return newError(ErrorUpstreamEmpty, f.empty, err)
	case isStatusError(err):
		return newError(ErrorUpstream, f.failed, err)
	default:
		return newError(ErrorNetwork, f.failed, err)
	}
}

func isStatusError(err error) bool {
	var statusErr httpStatusCoder
	return errors.As(err, &statusErr)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
