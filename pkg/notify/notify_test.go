package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMobile(t *testing.T) {
	require.Equal(t, "919876543210", normalizeMobile("98765 43210"))
	require.Equal(t, "919876543210", normalizeMobile("+91-98765-43210"))
}

func TestMSG91SendOTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/otp", r.URL.Path)
		assert.Equal(t, "auth-key", r.Header.Get("authkey"))
		assert.Equal(t, "919876543210", r.URL.Query().Get("mobile"))
		assert.Equal(t, "123456", r.URL.Query().Get("otp"))
		_, _ = w.Write([]byte(`{"type":"success","request_id":"abc"}`))
	}))
	defer srv.Close()

	sms := NewMSG91(srv.URL, "auth-key", "tmpl")
	require.NoError(t, sms.SendOTP(context.Background(), "9876543210", "123456"))
}

func TestMSG91SendOTP_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"error","message":"invalid authkey"}`))
	}))
	defer srv.Close()

	err := NewMSG91(srv.URL, "bad", "tmpl").SendOTP(context.Background(), "9876543210", "123456")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid authkey")
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("FWF <no-reply@fwfindia.org>", "a@b.c", "Hi", "line1\nline2"))
	require.True(t, strings.HasPrefix(msg, "From: FWF <no-reply@fwfindia.org>\r\n"))
	require.Contains(t, msg, "Subject: Hi\r\n")
	require.True(t, strings.HasSuffix(msg, "line1\r\nline2"))
	require.Equal(t, "no-reply@fwfindia.org", envelopeAddr("FWF <no-reply@fwfindia.org>"))
}
