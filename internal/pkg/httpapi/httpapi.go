package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// 所有 HTTP 接口共用的身份与编解码约定。
// 会话与用户身份都来自请求头，服务端不做任何鉴权，上游网关负责认证。

const (
	HeaderSessionID = "X-Session-ID"
	HeaderUserID    = "X-User-ID"
	HeaderAdmin     = "X-Admin"
)

var ErrNoUser = errors.New("missing or invalid X-User-ID header")

// SessionID 读取请求的会话标识；缺失时签发一个新的并回写到响应头,
// 客户端应保存并在后续请求中带回。
func SessionID(w http.ResponseWriter, r *http.Request) string {
	sessionID := r.Header.Get(HeaderSessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	w.Header().Set(HeaderSessionID, sessionID)
	return sessionID
}

// UserID 解析调用方身份
func UserID(r *http.Request) (int64, error) {
	raw := r.Header.Get(HeaderUserID)
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrNoUser
	}
	return userID, nil
}

func IsAdmin(r *http.Request) bool {
	return r.Header.Get(HeaderAdmin) == "true"
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
