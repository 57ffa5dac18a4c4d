package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// testConfig はバースト1の厳しい制限でテスト用の設定を返す。
func testConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0),
		GeneralBurst:    1,
		AssistRate:      rate.Limit(1.0 / 60.0),
		AssistBurst:     1,
		CleanupInterval: time.Minute,
	}
}

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.RemoteAddr = addr
	return req
}

// TestGeneralMiddleware_AllowsWithinLimit は制限内のリクエストが通ることを検証する。
func TestGeneralMiddleware_AllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("192.0.2.1:12345"))
		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("リクエスト%d: status = %d, want 200", i, w.Result().StatusCode)
		}
	}
}

// TestGeneralMiddleware_Returns429OverLimit は制限超過で429が返ることを検証する。
func TestGeneralMiddleware_Returns429OverLimit(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, requestFrom("192.0.2.2:1000"))
	if w1.Result().StatusCode != http.StatusOK {
		t.Fatalf("1回目: status = %d, want 200", w1.Result().StatusCode)
	}

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, requestFrom("192.0.2.2:1001"))
	if w2.Result().StatusCode != http.StatusTooManyRequests {
		t.Fatalf("2回目: status = %d, want 429", w2.Result().StatusCode)
	}

	// Retry-Afterヘッダーと統一JSONフォーマットを確認
	if w2.Result().Header.Get("Retry-After") == "" {
		t.Error("Retry-Afterヘッダーが設定されるべき")
	}
	retrySec, err := strconv.Atoi(w2.Result().Header.Get("Retry-After"))
	if err != nil || retrySec < 1 {
		t.Errorf("Retry-Afterは1以上の整数であるべき, 結果: %q", w2.Result().Header.Get("Retry-After"))
	}

	var body map[string]string
	if err := json.NewDecoder(w2.Result().Body).Decode(&body); err != nil {
		t.Fatalf("429レスポンスのJSONパースに失敗: %v", err)
	}
	if body["code"] != "rate_limit_exceeded" {
		t.Errorf("code = %q, want rate_limit_exceeded", body["code"])
	}
}

// TestGeneralMiddleware_IsolatesClients はクライアントIPごとに制限が
// 独立していることを検証する。
func TestGeneralMiddleware_IsolatesClients(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// クライアントAが制限に達する
	wA1 := httptest.NewRecorder()
	handler.ServeHTTP(wA1, requestFrom("192.0.2.10:1000"))
	wA2 := httptest.NewRecorder()
	handler.ServeHTTP(wA2, requestFrom("192.0.2.10:1001"))
	if wA2.Result().StatusCode != http.StatusTooManyRequests {
		t.Fatalf("クライアントA 2回目: status = %d, want 429", wA2.Result().StatusCode)
	}

	// クライアントBは影響を受けない
	wB := httptest.NewRecorder()
	handler.ServeHTTP(wB, requestFrom("192.0.2.11:1000"))
	if wB.Result().StatusCode != http.StatusOK {
		t.Errorf("クライアントB 1回目: status = %d, want 200", wB.Result().StatusCode)
	}
}

// TestAssistMiddleware_IndependentOfGeneral はコラボレータ操作の制限が
// API全般の制限と独立していることを検証する。
func TestAssistMiddleware_IndependentOfGeneral(t *testing.T) {
	cfg := testConfig()
	cfg.GeneralBurst = 100
	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	general := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	assist := rl.AssistMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	addr := "192.0.2.20:1000"

	// コラボレータ操作が制限に達する
	w1 := httptest.NewRecorder()
	assist.ServeHTTP(w1, requestFrom(addr))
	w2 := httptest.NewRecorder()
	assist.ServeHTTP(w2, requestFrom(addr))
	if w2.Result().StatusCode != http.StatusTooManyRequests {
		t.Fatalf("assist 2回目: status = %d, want 429", w2.Result().StatusCode)
	}

	// API全般は引き続き通る
	w3 := httptest.NewRecorder()
	general.ServeHTTP(w3, requestFrom(addr))
	if w3.Result().StatusCode != http.StatusOK {
		t.Errorf("general: status = %d, want 200", w3.Result().StatusCode)
	}
}

// TestRateLimiter_TracksClients はリミッターのエントリ数が
// クライアント数に対応することを検証する。
func TestRateLimiter_TracksClients(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, addr := range []string{"192.0.2.30:1", "192.0.2.31:1", "192.0.2.30:2"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom(addr))
	}

	// ポートを除いたIPがキーになるため2エントリ
	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", got)
	}
	if got := rl.AssistLimiterCount(); got != 0 {
		t.Errorf("AssistLimiterCount = %d, want 0", got)
	}
}
