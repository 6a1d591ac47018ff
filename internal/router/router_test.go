package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fwf/internal/database"
	"fwf/internal/router"
	"fwf/internal/service"
	"fwf/internal/testutil"
	"fwf/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type client struct {
	t      *testing.T
	engine *gin.Engine
}

func newServer(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	log := zap.NewNop()
	require.NoError(t, database.SeedAdmin(db, &cfg.Admin, service.HashPassword, log))
	require.NoError(t, database.SeedSocialTasks(db, log))

	engine := router.Setup(router.Deps{
		Config:   cfg,
		DB:       db,
		Log:      log,
		Payments: &payment.StubProvider{},
	})
	return &client{t: t, engine: engine}
}

func (c *client) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.engine.ServeHTTP(rec, req)
	out := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (c *client) register(email, mobile, code string) (string, map[string]interface{}) {
	c.t.Helper()
	status, body := c.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Member " + mobile, "email": email, "mobile": mobile, "password": "secret1", "referralCode": code,
	})
	require.Equal(c.t, http.StatusCreated, status, body)
	return body["token"].(string), body["user"].(map[string]interface{})
}

func (c *client) adminLogin() string {
	c.t.Helper()
	status, body := c.do(http.MethodPost, "/api/admin/login", "", gin.H{"identifier": "admin@fwf", "password": "Admin@12345"})
	require.Equal(c.t, http.StatusOK, status, body)
	return body["token"].(string)
}

func (c *client) order(path, token string, body interface{}) string {
	c.t.Helper()
	status, out := c.do(http.MethodPost, path, token, body)
	require.Equal(c.t, http.StatusOK, status, out)
	return out["order"].(map[string]interface{})["id"].(string)
}

func TestHealth(t *testing.T) {
	c := newServer(t)
	status, body := c.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
}

func TestMemberRoutesRequireAuth(t *testing.T) {
	c := newServer(t)
	status, _ := c.do(http.MethodGet, "/api/member/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = c.do(http.MethodGet, "/api/member/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestReferralFlowOverHTTP(t *testing.T) {
	c := newServer(t)

	referrerToken, referrer := c.register("asha@example.org", "9000000001", "")
	assert.Equal(t, "FWF-000001", referrer["memberId"])
	code := referrer["referralCode"].(string)

	joinerToken, joiner := c.register("meera@example.org", "9000000002", code)
	assert.Equal(t, "FWF-000002", joiner["memberId"])

	status, body := c.do(http.MethodPost, "/api/member/record-donation", joinerToken, gin.H{"amount": 1000, "donorName": "Ravi"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(10), body["points"])
	assert.Equal(t, "DON-000001", body["donationId"])

	status, body = c.do(http.MethodPost, "/api/member/record-donation", joinerToken, gin.H{"amount": 50000})
	assert.Equal(t, http.StatusBadRequest, status, body)

	status, body = c.do(http.MethodPost, "/api/member/sell-ticket", joinerToken, gin.H{"buyerName": "Kiran", "ticketPrice": 100})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(1), body["points"])

	// Members cannot activate referrals; admins can, once.
	activate := gin.H{"referredMemberId": "FWF-000002", "paymentAmount": 500}
	status, _ = c.do(http.MethodPost, "/api/member/activate-referral", referrerToken, activate)
	assert.Equal(t, http.StatusForbidden, status)

	adminToken := c.adminLogin()

	status, body = c.do(http.MethodPost, "/api/member/activate-referral", adminToken, activate)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(25), body["points"])
	status, _ = c.do(http.MethodPost, "/api/member/activate-referral", adminToken, activate)
	assert.Equal(t, http.StatusConflict, status)

	status, body = c.do(http.MethodGet, "/api/member/referrals", referrerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, code, body["referralCode"])
	assert.Len(t, body["referrals"], 1)

	status, body = c.do(http.MethodGet, "/api/admin/member/FWF-000001/reconcile", adminToken, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["reconciliation"].(map[string]interface{})["consistent"])

	status, _ = c.do(http.MethodGet, "/api/admin/overview", referrerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestTaskCompletionOverHTTP(t *testing.T) {
	c := newServer(t)
	token, _ := c.register("asha@example.org", "9000000001", "")

	status, body := c.do(http.MethodGet, "/api/social-tasks", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["tasks"], 10)

	submit := gin.H{"task_id": "T01", "photo_url": "https://img/1.jpg"}
	status, body = c.do(http.MethodPost, "/api/member/complete-task", token, submit)
	require.Equal(t, http.StatusOK, status, body)
	status, body = c.do(http.MethodPost, "/api/member/complete-task", token, submit)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, service.ErrTaskAlreadyCompleted.Error(), body["error"])

	status, body = c.do(http.MethodGet, "/api/member/points-history", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["ledger"], 1)
}

func TestDonationOTPOverHTTP(t *testing.T) {
	c := newServer(t)

	status, body := c.do(http.MethodPost, "/api/donation-otp", "", gin.H{"action": "bogus"})
	assert.Equal(t, http.StatusBadRequest, status, body)

	send := gin.H{"action": "send", "email": "d@example.org", "mobile": "9876543210", "name": "D", "amount": 60000}
	for i := 0; i < 3; i++ {
		status, body = c.do(http.MethodPost, "/api/donation-otp", "", send)
		require.Equal(t, http.StatusOK, status, body)
	}
	status, _ = c.do(http.MethodPost, "/api/donation-otp", "", send)
	assert.Equal(t, http.StatusTooManyRequests, status)

	status, body = c.do(http.MethodPost, "/api/donation-otp", "", gin.H{"action": "verify", "email": "d@example.org", "otp": "not-it"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "attempt(s) remaining")
}

func TestMeIsFlatWithNumericPoints(t *testing.T) {
	c := newServer(t)
	token, _ := c.register("asha@example.org", "9000000001", "")
	status, body := c.do(http.MethodPost, "/api/member/record-donation", token, gin.H{"amount": 1000})
	require.Equal(t, http.StatusOK, status, body)

	status, body = c.do(http.MethodGet, "/api/member/me", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["ok"])
	assert.NotContains(t, body, "dashboard")
	require.Contains(t, body, "user")
	wallet := body["wallet"].(map[string]interface{})
	assert.Equal(t, float64(10), wallet["points_balance"])
	assert.Equal(t, float64(1000), body["donationTotal"])
}

func TestPayDonationUsesOrderAmount(t *testing.T) {
	c := newServer(t)
	c.register("asha@example.org", "9000000001", "")

	orderID := c.order("/api/pay/order", "", gin.H{"amount": 100})
	pay := gin.H{
		"amount":              500000,
		"memberId":            "fwf-000001",
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "sig",
	}
	status, body := c.do(http.MethodPost, "/api/pay/donation", "", pay)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(1), body["pointsEarned"])

	status, _ = c.do(http.MethodPost, "/api/pay/donation", "", pay)
	assert.Equal(t, http.StatusConflict, status)

	pay["razorpay_order_id"] = "order_unknown"
	status, _ = c.do(http.MethodPost, "/api/pay/donation", "", pay)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMembershipOrderIsBoundToMember(t *testing.T) {
	c := newServer(t)
	ashaToken, _ := c.register("asha@example.org", "9000000001", "")
	meeraToken, _ := c.register("meera@example.org", "9000000002", "")

	orderID := c.order("/api/pay/membership/order", ashaToken, nil)
	pay := gin.H{"razorpay_order_id": orderID, "razorpay_payment_id": "pay_m1", "razorpay_signature": "sig"}

	status, _ := c.do(http.MethodPost, "/api/pay/membership", meeraToken, pay)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := c.do(http.MethodPost, "/api/pay/membership", ashaToken, pay)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(500), body["fee"].(map[string]interface{})["amount"])
}

func TestAdminMembershipFeesOverHTTP(t *testing.T) {
	c := newServer(t)
	token, _ := c.register("asha@example.org", "9000000001", "")
	adminToken := c.adminLogin()

	status, body := c.do(http.MethodPost, "/api/admin/membership-fee", token, gin.H{"memberId": "FWF-000001", "amount": 500})
	assert.Equal(t, http.StatusForbidden, status, body)

	status, body = c.do(http.MethodPost, "/api/admin/membership-fee", adminToken, gin.H{
		"memberId": "fwf-000001", "amount": 500, "paymentMode": "cash", "notes": "collected at camp",
	})
	require.Equal(t, http.StatusCreated, status, body)
	fee := body["fee"].(map[string]interface{})
	assert.Equal(t, "pending", fee["status"])
	txnID := fee["txn_id"].(string)

	status, body = c.do(http.MethodGet, "/api/admin/membership-fees", adminToken, nil)
	require.Equal(t, http.StatusOK, status, body)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["pending"])
	assert.Equal(t, float64(500), stats["pendingAmount"])

	status, body = c.do(http.MethodPost, "/api/admin/membership-fee/"+txnID, adminToken, gin.H{"status": "verified"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "verified", body["fee"].(map[string]interface{})["status"])

	status, body = c.do(http.MethodGet, "/api/member/me", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["user"].(map[string]interface{})["membership_active"])

	status, body = c.do(http.MethodGet, "/api/admin/membership-fees/FWF-000001", adminToken, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["fees"], 1)

	status, _ = c.do(http.MethodPost, "/api/admin/membership-fee/MF-NOPE", adminToken, gin.H{"status": "verified"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = c.do(http.MethodPost, "/api/admin/membership-fee/"+txnID, adminToken, gin.H{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, status)
}
