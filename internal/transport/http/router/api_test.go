package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bidmarket/internal/repo/memory"
	"bidmarket/internal/service"
)

func newTestEngine(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := memory.NewStore()
	log := zap.NewNop()
	authSvc := service.NewAuthService(st.Users(), log)
	offerSvc := service.NewOfferService(st.Offers(), st.Bids(), st.Users(), log)
	return NewAPIEngine(log, authSvc, offerSvc, 5*time.Second), st
}

func do(t *testing.T, r http.Handler, method, path string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []any {
	t.Helper()
	var l []any
	if err := json.Unmarshal(w.Body.Bytes(), &l); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return l
}

func signupBody(username, role, password string) map[string]any {
	return map[string]any{
		"username": username,
		"LEI":      "LEI-" + username,
		"email":    username + "@example.com",
		"phone":    "555-0100",
		"role":     role,
		"city":     "Rotterdam",
		"address1": "Dock 1",
		"address2": "",
		"password": password,
	}
}

func mustSignup(t *testing.T, r http.Handler, username, role, password string) uint {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/auth/signup", signupBody(username, role, password))
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d body %s", username, w.Code, w.Body.String())
	}
	user := decodeMap(t, w)["user"].(map[string]any)
	return uint(user["id"].(float64))
}

func creds(username, password string) map[string]any {
	return map[string]any{"username": username, "password": password}
}

func withCreds(username, password string, extra map[string]any) map[string]any {
	m := creds(username, password)
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func TestSignupAndDuplicates(t *testing.T) {
	r, st := newTestEngine(t)

	w := do(t, r, http.MethodPost, "/api/auth/signup", signupBody("alice", "supplier", "pw1"))
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: status %d body %s", w.Code, w.Body.String())
	}
	out := decodeMap(t, w)
	user := out["user"].(map[string]any)
	if user["username"] != "alice" || user["role"] != "supplier" {
		t.Fatalf("bad signup payload: %v", out)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("signup response leaks password")
	}

	// 重复提交幂等地 409，行数不变
	for i := 0; i < 2; i++ {
		w = do(t, r, http.MethodPost, "/api/auth/signup", signupBody("alice", "supplier", "pw1"))
		if w.Code != http.StatusConflict {
			t.Fatalf("duplicate signup: status %d", w.Code)
		}
	}
	if n := st.UserCount(); n != 1 {
		t.Fatalf("user count = %d, want 1", n)
	}

	// 缺字段
	bad := signupBody("dave", "supplier", "pw")
	delete(bad, "password")
	if w = do(t, r, http.MethodPost, "/api/auth/signup", bad); w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: status %d", w.Code)
	}
	bad = signupBody("dave", "admin", "pw")
	if w = do(t, r, http.MethodPost, "/api/auth/signup", bad); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid role: status %d", w.Code)
	}
}

func TestLoginOutcomes(t *testing.T) {
	r, _ := newTestEngine(t)
	mustSignup(t, r, "alice", "supplier", "pw1")

	w := do(t, r, http.MethodPost, "/api/auth/login", creds("nobody", "pw"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown user: status %d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/auth/login", creds("alice", "wrong"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/auth/login", creds("alice", "pw1"))
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
	user := decodeMap(t, w)["user"].(map[string]any)
	if user["username"] != "alice" {
		t.Fatalf("bad login user: %v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("login response leaks password hash")
	}
}

func TestProfile(t *testing.T) {
	r, _ := newTestEngine(t)
	mustSignup(t, r, "alice", "supplier", "pw1")

	// 认证读取（GET 与 POST 同义）
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := do(t, r, method, "/api/auth/profile", creds("alice", "pw1"))
		if w.Code != http.StatusOK {
			t.Fatalf("%s profile: status %d", method, w.Code)
		}
		p := decodeMap(t, w)
		if p["username"] != "alice" || p["role"] != "supplier" {
			t.Fatalf("bad profile: %v", p)
		}
		if _, leaked := p["password"]; leaked {
			t.Fatal("profile leaks password hash")
		}
	}

	// 缺凭证 400，错凭证 401
	if w := do(t, r, http.MethodPost, "/api/auth/profile", map[string]any{"username": "alice"}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing credentials: status %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/auth/profile", creds("alice", "bad")); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad credentials: status %d", w.Code)
	}

	// 更新联系信息后仍可用同一密码登录
	w := do(t, r, http.MethodPut, "/api/auth/profile", withCreds("alice", "pw1", map[string]any{
		"email": "alice@corp.example.com", "phone": "555-0199",
		"city": "Antwerp", "address1": "Quay 9", "address2": "",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("update profile: status %d body %s", w.Code, w.Body.String())
	}
	user := decodeMap(t, w)["user"].(map[string]any)
	if user["email"] != "alice@corp.example.com" || user["city"] != "Antwerp" {
		t.Fatalf("profile not updated: %v", user)
	}
	if w = do(t, r, http.MethodPost, "/api/auth/login", creds("alice", "pw1")); w.Code != http.StatusOK {
		t.Fatalf("login after update: status %d", w.Code)
	}
}

func TestRoleGates(t *testing.T) {
	r, _ := newTestEngine(t)
	mustSignup(t, r, "alice", "supplier", "pw1")
	mustSignup(t, r, "bob", "buyer", "pw2")

	// buyer 不可用 supplier 路由
	w := do(t, r, http.MethodPost, "/api/offers/myoffers", creds("bob", "pw2"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("buyer on myoffers: status %d", w.Code)
	}
	if decodeMap(t, w)["error"] != "Access denied: Supplier role required." {
		t.Fatalf("wrong denial message: %s", w.Body.String())
	}
	w = do(t, r, http.MethodPost, "/api/offers/offercreate", withCreds("bob", "pw2", map[string]any{
		"product": "wheat", "quantity": 1, "start_date": "2024-01-01",
		"end_date": "2024-02-01", "price": 1, "batches": 1,
	}))
	if w.Code != http.StatusForbidden {
		t.Fatalf("buyer on offercreate: status %d", w.Code)
	}

	// supplier 不可出价
	w = do(t, r, http.MethodPost, "/api/offers/offerbid", withCreds("alice", "pw1", map[string]any{
		"offerId": 1, "bidPrice": 45,
	}))
	if w.Code != http.StatusForbidden {
		t.Fatalf("supplier on offerbid: status %d", w.Code)
	}
	if decodeMap(t, w)["error"] != "Access denied: Buyer role required." {
		t.Fatalf("wrong denial message: %s", w.Body.String())
	}

	// 双角色路由对两种角色都放行
	for _, c := range []map[string]any{creds("alice", "pw1"), creds("bob", "pw2")} {
		if w = do(t, r, http.MethodPost, "/api/offers/", c); w.Code != http.StatusOK {
			t.Fatalf("list offers: status %d", w.Code)
		}
	}
}

func TestOfferCreateValidation(t *testing.T) {
	r, st := newTestEngine(t)
	mustSignup(t, r, "alice", "supplier", "pw1")

	full := map[string]any{
		"product": "wheat", "quantity": 100, "start_date": "2024-01-01",
		"end_date": "2024-02-01", "price": 50, "batches": 4,
	}
	for field := range full {
		body := withCreds("alice", "pw1", map[string]any{})
		for k, v := range full {
			if k != field {
				body[k] = v
			}
		}
		w := do(t, r, http.MethodPost, "/api/offers/offercreate", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("missing %s: status %d", field, w.Code)
		}
	}
	if n := st.OfferCount(); n != 0 {
		t.Fatalf("offer count = %d after rejected creates, want 0", n)
	}

	w := do(t, r, http.MethodPost, "/api/offers/offercreate", withCreds("alice", "pw1", full))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}
	if n := st.OfferCount(); n != 1 {
		t.Fatalf("offer count = %d, want 1", n)
	}
}

func TestOfferDetailAndBadIDs(t *testing.T) {
	r, _ := newTestEngine(t)
	aliceID := mustSignup(t, r, "alice", "supplier", "pw1")

	w := do(t, r, http.MethodPost, "/api/offers/offercreate", withCreds("alice", "pw1", map[string]any{
		"product": "wheat", "quantity": 100, "start_date": "2024-01-01",
		"end_date": "2024-02-01", "price": 50, "batches": 4,
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d", w.Code)
	}
	offer := decodeMap(t, w)["offer"].(map[string]any)
	if uint(offer["offerer"].(float64)) != aliceID {
		t.Fatalf("offer.offerer = %v, want %d", offer["offerer"], aliceID)
	}

	w = do(t, r, http.MethodPost, "/api/offers/offerdetails/1", creds("alice", "pw1"))
	if w.Code != http.StatusOK {
		t.Fatalf("detail: status %d body %s", w.Code, w.Body.String())
	}
	d := decodeMap(t, w)
	if d["product"] != "wheat" || d["quantity"].(float64) != 100 ||
		d["start_date"] != "2024-01-01" || d["end_date"] != "2024-02-01" ||
		d["price"].(float64) != 50 || d["batches"].(float64) != 4 {
		t.Fatalf("detail fields changed in flight: %v", d)
	}
	if d["offerer_name"] != "alice" || d["offerer_role"] != "supplier" {
		t.Fatalf("offerer identity missing: %v", d)
	}

	if w = do(t, r, http.MethodPost, "/api/offers/offerdetails/999", creds("alice", "pw1")); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: status %d", w.Code)
	}
	if w = do(t, r, http.MethodPost, "/api/offers/offerdetails/abc", creds("alice", "pw1")); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: status %d", w.Code)
	}
	if w = do(t, r, http.MethodPost, "/api/offers/offerbid/abc", creds("alice", "pw1")); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed bid list id: status %d", w.Code)
	}
}

func TestBidFlow(t *testing.T) {
	r, st := newTestEngine(t)
	mustSignup(t, r, "alice", "supplier", "pw1")
	mustSignup(t, r, "bob", "buyer", "pw2")

	w := do(t, r, http.MethodPost, "/api/offers/offercreate", withCreds("alice", "pw1", map[string]any{
		"product": "wheat", "quantity": 100, "start_date": "2024-01-01",
		"end_date": "2024-02-01", "price": 50, "batches": 4,
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d", w.Code)
	}

	// 缺字段
	w = do(t, r, http.MethodPost, "/api/offers/offerbid", withCreds("bob", "pw2", map[string]any{"offerId": 1}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing bidPrice: status %d", w.Code)
	}

	// 不存在的报盘
	w = do(t, r, http.MethodPost, "/api/offers/offerbid", withCreds("bob", "pw2", map[string]any{"offerId": 999, "bidPrice": 45}))
	if w.Code != http.StatusNotFound {
		t.Fatalf("bid on missing offer: status %d", w.Code)
	}
	if n := st.BidCount(); n != 0 {
		t.Fatalf("bid count = %d after failed bids, want 0", n)
	}

	// 成功出价，重复提交各成一行
	for i := 1; i <= 2; i++ {
		w = do(t, r, http.MethodPost, "/api/offers/offerbid", withCreds("bob", "pw2", map[string]any{"offerId": 1, "bidPrice": 45}))
		if w.Code != http.StatusCreated {
			t.Fatalf("bid %d: status %d body %s", i, w.Code, w.Body.String())
		}
		if n := st.BidCount(); n != i {
			t.Fatalf("bid count = %d, want %d", n, i)
		}
	}

	w = do(t, r, http.MethodGet, "/api/offers/offerbid/1", creds("alice", "pw1"))
	if w.Code != http.StatusOK {
		t.Fatalf("list bids: status %d", w.Code)
	}
	out := decodeMap(t, w)
	if out["totalBids"].(float64) != 2 {
		t.Fatalf("totalBids = %v, want 2", out["totalBids"])
	}
	bids := out["bids"].([]any)
	first := bids[0].(map[string]any)
	if first["price"].(float64) != 45 || first["bidder_name"] != "bob" {
		t.Fatalf("bad bid row: %v", first)
	}
}

func TestDeleteOffer(t *testing.T) {
	r, st := newTestEngine(t)
	mustSignup(t, r, "alice", "supplier", "pw1")
	mustSignup(t, r, "carol", "supplier", "pw3")

	w := do(t, r, http.MethodPost, "/api/offers/offercreate", withCreds("alice", "pw1", map[string]any{
		"product": "wheat", "quantity": 100, "start_date": "2024-01-01",
		"end_date": "2024-02-01", "price": 50, "batches": 4,
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d", w.Code)
	}

	if w = do(t, r, http.MethodDelete, "/api/offers/abc", creds("alice", "pw1")); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: status %d", w.Code)
	}

	// 非属主：模糊 403，报盘仍在
	w = do(t, r, http.MethodDelete, "/api/offers/1", creds("carol", "pw3"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: status %d", w.Code)
	}
	if decodeMap(t, w)["error"] != "Unauthorized or offer not found." {
		t.Fatalf("wrong delete denial: %s", w.Body.String())
	}
	if n := st.OfferCount(); n != 1 {
		t.Fatalf("offer count = %d after denied delete, want 1", n)
	}

	// 不存在的报盘同样 403
	if w = do(t, r, http.MethodDelete, "/api/offers/999", creds("alice", "pw1")); w.Code != http.StatusForbidden {
		t.Fatalf("missing offer delete: status %d", w.Code)
	}

	// 属主删除成功
	w = do(t, r, http.MethodDelete, "/api/offers/1", creds("alice", "pw1"))
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete: status %d body %s", w.Code, w.Body.String())
	}
	if n := st.OfferCount(); n != 0 {
		t.Fatalf("offer count = %d after owner delete, want 0", n)
	}
}

func TestNoRouteKeepsLegacyEnvelope(t *testing.T) {
	r, _ := newTestEngine(t)
	w := do(t, r, http.MethodGet, "/api/nothing/here", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("noroute status = %d, want 200 (legacy envelope)", w.Code)
	}
	if decodeMap(t, w)["message"] != "Page/Route not found" {
		t.Fatalf("noroute body: %s", w.Body.String())
	}
}

// 完整走一遍：注册供需双方、报盘、出价、查询
func TestEndToEndScenario(t *testing.T) {
	r, _ := newTestEngine(t)

	aliceID := mustSignup(t, r, "alice", "supplier", "pw1")
	if w := do(t, r, http.MethodPost, "/api/auth/login", creds("alice", "pw1")); w.Code != http.StatusOK {
		t.Fatalf("alice login: status %d", w.Code)
	}

	w := do(t, r, http.MethodPost, "/api/offers/offercreate", withCreds("alice", "pw1", map[string]any{
		"product": "wheat", "quantity": 100, "start_date": "2024-01-01",
		"end_date": "2024-02-01", "price": 50, "batches": 4,
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("create offer: status %d", w.Code)
	}
	offer := decodeMap(t, w)["offer"].(map[string]any)
	if uint(offer["offerer"].(float64)) != aliceID {
		t.Fatalf("offer.offerer = %v, want alice id %d", offer["offerer"], aliceID)
	}
	offerID := int(offer["id"].(float64))

	mustSignup(t, r, "bob", "buyer", "pw2")
	if w = do(t, r, http.MethodPost, "/api/auth/login", creds("bob", "pw2")); w.Code != http.StatusOK {
		t.Fatalf("bob login: status %d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/offers/offerbid", withCreds("bob", "pw2", map[string]any{
		"offerId": offerID, "bidPrice": 45,
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("bid: status %d body %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/offers/offerbid/1", creds("bob", "pw2"))
	if w.Code != http.StatusOK {
		t.Fatalf("list bids: status %d", w.Code)
	}
	out := decodeMap(t, w)
	if out["totalBids"].(float64) != 1 {
		t.Fatalf("totalBids = %v, want 1", out["totalBids"])
	}
	bid := out["bids"].([]any)[0].(map[string]any)
	if bid["price"].(float64) != 45 || bid["bidder_name"] != "bob" {
		t.Fatalf("bad bid: %v", bid)
	}

	// 双方都能看到公开列表
	w = do(t, r, http.MethodPost, "/api/offers/", creds("bob", "pw2"))
	if w.Code != http.StatusOK {
		t.Fatalf("list offers: status %d", w.Code)
	}
	offers := decodeList(t, w)
	if len(offers) != 1 {
		t.Fatalf("offers = %d, want 1", len(offers))
	}
	row := offers[0].(map[string]any)
	if row["offerer_name"] != "alice" {
		t.Fatalf("offerer join missing: %v", row)
	}
}
