package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"

	"civicdesk/internal/constants"
	"civicdesk/internal/dto"
	"civicdesk/internal/helper"

	"go.uber.org/zap"
)

const maxRequestBody = 1 << 20

// AuditSink accepts audit entries without blocking the caller.
type AuditSink interface {
	RecordAsync(req *dto.RecordAuditLogRequest)
}

// OperationFunc is an admin operation producing a finalized response envelope.
type OperationFunc func(r *http.Request) *Response

// AuditHook records successful admin operations after they complete.
type AuditHook struct {
	sink   AuditSink
	logger *zap.Logger
}

// NewAuditHook creates a new AuditHook.
func NewAuditHook(sink AuditSink, logger *zap.Logger) *AuditHook {
	return &AuditHook{
		sink:   sink,
		logger: logger.Named("AuditHook"),
	}
}

// Plain adapts op to an http.HandlerFunc without auditing.
func Plain(op OperationFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteResponse(w, orInternalError(op(r)))
	}
}

// Guarded runs op, hands the finalized response to AfterOperation as action and writes it.
func (h *AuditHook) Guarded(action string, op OperationFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := captureBody(w, r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteHttpError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			WriteHttpError(w, http.StatusBadRequest, "failed to read request body")
			return
		}

		resp := orInternalError(op(r))
		h.AfterOperation(r, action, body, resp)
		WriteResponse(w, resp)
	}
}

// AfterOperation dispatches one audit entry for a successful response. It never blocks on
// the write and never panics.
func (h *AuditHook) AfterOperation(r *http.Request, action string, body []byte, resp *Response) {
	defer func() {
		if p := recover(); p != nil {
			h.logger.Error("AfterOperation: panic recovered",
				zap.String("action", action),
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()))
		}
	}()

	if resp == nil || !resp.Success {
		return
	}

	operator, ok := helper.OperatorFromContext(r.Context())
	if !ok {
		h.logger.Debug("AfterOperation: no operator on request, skipping", zap.String("action", action))
		return
	}

	targetID := r.PathValue("id")
	if targetID == "" {
		targetID = idFromData(resp.Data)
	}

	h.sink.RecordAsync(&dto.RecordAuditLogRequest{
		ActorID:    operator.UserId,
		Action:     action,
		TargetType: InferTargetType(r.URL.Path).String(),
		TargetID:   targetID,
		Details:    requestDetails(r, body),
		IPAddress:  helper.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
}

// InferTargetType picks the innermost path segment naming an audit target,
// singular or plural. Paths naming none are system actions.
func InferTargetType(path string) constants.TargetType {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.ToLower(segments[i])
		for _, t := range constants.InferableTargetTypes {
			if seg == t.String() || seg == t.String()+"s" {
				return t
			}
		}
	}
	return constants.TargetTypeSystem
}

func captureBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func requestDetails(r *http.Request, body []byte) map[string]interface{} {
	details := map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
	}
	if len(body) > 0 {
		var parsed interface{}
		if err := json.Unmarshal(body, &parsed); err == nil {
			details["body"] = parsed
		} else {
			details["body"] = string(body)
		}
	}
	if q := r.URL.Query(); len(q) > 0 {
		query := make(map[string]interface{}, len(q))
		for k, v := range q {
			if len(v) == 1 {
				query[k] = v[0]
			} else {
				query[k] = v
			}
		}
		details["query"] = query
	}
	if params := pathParams(r); len(params) > 0 {
		details["params"] = params
	}
	if client := helper.DescribeUserAgent(r.UserAgent()); client != nil {
		details["client"] = client
	}
	return details
}

// pathParams resolves the wildcards of the matched route pattern.
func pathParams(r *http.Request) map[string]string {
	var params map[string]string
	pattern := r.Pattern
	for {
		open := strings.IndexByte(pattern, '{')
		if open < 0 {
			return params
		}
		end := strings.IndexByte(pattern[open:], '}')
		if end < 0 {
			return params
		}
		name := strings.TrimSuffix(pattern[open+1:open+end], "...")
		pattern = pattern[open+end+1:]
		if name == "" || name == "$" {
			continue
		}
		if v := r.PathValue(name); v != "" {
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = v
		}
	}
}

// idFromData reads the id field of a response payload of any JSON-encodable shape.
func idFromData(data interface{}) string {
	if data == nil {
		return ""
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	switch id := fields["id"].(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return ""
	}
}

func orInternalError(resp *Response) *Response {
	if resp == nil {
		return ResponseErrorWithStatus(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
	return resp
}
