package httpapi

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// Request headers and gin context keys.
const (
	HeaderRequestID = "X-Request-Id"
	HeaderUserID    = "X-User-Id"

	ctxRequestID = "request_id"
	ctxUserID    = "user_id"
)

var (
	idMu    sync.Mutex
	entropy io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptorand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// newRequestID returns a ULID, monotonic within a millisecond.
func newRequestID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}

// requestID propagates the caller's X-Request-Id or mints one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = newRequestID()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			"request_id", c.GetString(ctxRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"user_id", c.GetString(ctxUserID),
		)
	}
}

func recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("http request panicked",
					"request_id", c.GetString(ctxRequestID),
					"panic", r,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("Internal server error"))
			}
		}()
		c.Next()
	}
}

// identity resolves the caller from "Authorization: Bearer <jwt>", or from
// X-User-Id when allowHeader is set and no token was sent.
func identity(id Identity, allowHeader bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID string

		if authz := c.GetHeader("Authorization"); authz != "" {
			token, ok := strings.CutPrefix(authz, "Bearer ")
			if !ok || id == nil {
				abortUnauthorized(c)
				return
			}
			uid, err := id.UserID(strings.TrimSpace(token))
			if err != nil {
				abortUnauthorized(c)
				return
			}
			userID = uid
		} else if allowHeader {
			userID = strings.TrimSpace(c.GetHeader(HeaderUserID))
		}

		if userID == "" {
			abortUnauthorized(c)
			return
		}
		c.Set(ctxUserID, userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("Unauthorized"))
}

func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
