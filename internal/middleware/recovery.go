package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxLoggedBody = 16 << 10

var sensitiveFields = map[string]struct{}{
	"password":       {},
	"password_hash":  {},
	"newpassword":    {},
	"new_password":   {},
	"token":          {},
	"otp":            {},
	"verified_token": {},
	"verifiedtoken":  {},
	"signature":      {},
}

// RedactBody masks sensitive fields of a JSON body at any depth. Non-JSON
// input is replaced with a size marker.
func RedactBody(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "[non-json body]"
	}
	out, _ := json.Marshal(redact(v))
	return string(out)
}

func redact(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			if isSensitive(k) {
				t[k] = "[REDACTED]"
				continue
			}
			t[k] = redact(val)
		}
	case []interface{}:
		for i := range t {
			t[i] = redact(t[i])
		}
	}
	return v
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	if _, ok := sensitiveFields[k]; ok {
		return true
	}
	return strings.HasSuffix(k, "_signature")
}

// SafeHeaders returns request headers without cookie or authorization values.
func SafeHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		switch strings.ToLower(k) {
		case "cookie", "authorization", "set-cookie":
			continue
		}
		out[k] = strings.Join(v, ",")
	}
	return out
}

// Recovery turns a panic into a 500 and logs the request with secrets removed.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBody))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
		}
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("ip", c.ClientIP()),
					zap.Any("headers", SafeHeaders(c.Request.Header)),
					zap.String("body", RedactBody(body)),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
		}()
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("request", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}
