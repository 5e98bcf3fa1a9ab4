package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a transport failure by backend status code.
type Kind int

const (
	// KindNetwork means no response was received at all (DNS failure,
	// connection refused, timeout). Distinct from a received error response.
	KindNetwork Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindServerFault
	KindUnavailable
	KindUnclassified
)

// String returns the taxonomy name for logging.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindServerFault:
		return "server_fault"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unclassified"
	}
}

// APIError represents a classified failure of a backend call.
type APIError struct {
	Kind       Kind
	StatusCode int    // 0 for network failures
	Message    string // user-facing message
	Body       []byte // raw response body, nil for network failures
}

func (e *APIError) Error() string {
	if e.Kind == KindNetwork {
		return fmt.Sprintf("api network failure: %s", e.Message)
	}
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Kind, e.Message)
}

// ErrorKind extracts the taxonomy kind from err, or KindUnclassified if err
// is not an *APIError.
func ErrorKind(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnclassified
}

// IsUnauthorized reports whether err is a credential-expiry failure.
func IsUnauthorized(err error) bool {
	return ErrorKind(err) == KindUnauthorized
}

// IsNotFound reports whether err is a 404 failure.
func IsNotFound(err error) bool {
	return ErrorKind(err) == KindNotFound
}

// errorDetail matches the backend's error envelope: {"detail": "..."} for
// plain errors, or {"detail": [{"msg": "...", ...}]} for validation errors.
type errorDetail struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

// classify maps a received status code and body to an APIError.
func classify(statusCode int, body []byte) *APIError {
	e := &APIError{StatusCode: statusCode, Body: body}

	switch statusCode {
	case 400:
		e.Kind = KindBadRequest
		e.Message = firstDetail(body, "请求参数错误")
	case 401:
		e.Kind = KindUnauthorized
		e.Message = "登录已过期，请重新登录"
	case 403:
		e.Kind = KindForbidden
		e.Message = "没有权限访问"
	case 404:
		e.Kind = KindNotFound
		e.Message = "请求的资源不存在"
	case 422:
		e.Kind = KindValidation
		e.Message = firstValidationMsg(body, "数据验证失败")
	case 500:
		e.Kind = KindServerFault
		e.Message = "服务器内部错误"
	case 502, 503, 504:
		e.Kind = KindUnavailable
		e.Message = "服务器暂时不可用，请稍后重试"
	default:
		e.Kind = KindUnclassified
		e.Message = firstDetail(body, "网络请求失败")
	}

	return e
}

// firstDetail returns the string "detail" (or "message") field of the error
// body, falling back to def.
func firstDetail(body []byte, def string) string {
	var env errorDetail
	if err := json.Unmarshal(body, &env); err != nil {
		return def
	}
	var s string
	if len(env.Detail) > 0 && json.Unmarshal(env.Detail, &s) == nil && s != "" {
		return s
	}
	if env.Message != "" {
		return env.Message
	}
	return def
}

// firstValidationMsg extracts the first validation message from a 422 body,
// where detail is a list of {"msg": ...} entries.
func firstValidationMsg(body []byte, def string) string {
	var env errorDetail
	if err := json.Unmarshal(body, &env); err != nil {
		return def
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(env.Detail, &items) == nil && len(items) > 0 && items[0].Msg != "" {
		return items[0].Msg
	}
	return def
}
