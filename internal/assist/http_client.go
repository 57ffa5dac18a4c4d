package assist

import (
	"net/http"
	"time"
)

// LatencyRecorder はコラボレータ呼び出しのレイテンシを記録するインターフェース。
type LatencyRecorder interface {
	RecordAssistLatency(duration time.Duration)
}

// latencyTransport はリクエストごとの所要時間をレコーダーに記録するRoundTripper。
type latencyTransport struct {
	base     http.RoundTripper
	recorder LatencyRecorder
}

// RoundTrip はリクエストを委譲し、所要時間を記録する。
func (t *latencyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	t.recorder.RecordAssistLatency(time.Since(start))
	return resp, err
}

// NewHTTPClient はコラボレータ呼び出し用のHTTPクライアントを生成する。
// recorderが非nilの場合、呼び出しごとのレイテンシを記録する。
func NewHTTPClient(timeout time.Duration, recorder LatencyRecorder) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var transport http.RoundTripper = http.DefaultTransport
	if recorder != nil {
		transport = &latencyTransport{
			base:     http.DefaultTransport,
			recorder: recorder,
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
