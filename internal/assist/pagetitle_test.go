package assist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// --- extractHTMLTitle のテスト ---

// TestExtractHTMLTitle_Simple は単純なHTMLから<title>を抽出することをテストする。
func TestExtractHTMLTitle_Simple(t *testing.T) {
	body := []byte(`<html><head><title>Example Page</title></head><body></body></html>`)
	if got := extractHTMLTitle(body); got != "Example Page" {
		t.Errorf("期待: Example Page, 結果: %q", got)
	}
}

// TestExtractHTMLTitle_Whitespace はタイトル前後の空白が除去されることをテストする。
func TestExtractHTMLTitle_Whitespace(t *testing.T) {
	body := []byte("<html><head><title>\n  Example  \n</title></head></html>")
	if got := extractHTMLTitle(body); got != "Example" {
		t.Errorf("期待: Example, 結果: %q", got)
	}
}

// TestExtractHTMLTitle_Missing はtitle要素がない場合に空文字列を返すことをテストする。
func TestExtractHTMLTitle_Missing(t *testing.T) {
	body := []byte(`<html><head></head><body><h1>本文の見出し</h1></body></html>`)
	if got := extractHTMLTitle(body); got != "" {
		t.Errorf("title要素なしでは空文字列を返すべき, 結果: %q", got)
	}
}

// TestExtractHTMLTitle_EmptyTitle は空の<title></title>に空文字列を返すことをテストする。
func TestExtractHTMLTitle_EmptyTitle(t *testing.T) {
	body := []byte(`<html><head><title></title></head></html>`)
	if got := extractHTMLTitle(body); got != "" {
		t.Errorf("空title要素では空文字列を返すべき, 結果: %q", got)
	}
}

// --- isFeedContent のテスト ---

// TestIsFeedContent_RSSContentType はapplication/rss+xmlがフィードと判定されることをテストする。
func TestIsFeedContent_RSSContentType(t *testing.T) {
	if !isFeedContent("application/rss+xml", nil) {
		t.Error("application/rss+xml はフィードと判定されるべき")
	}
}

// TestIsFeedContent_XMLWithRSSBody はtext/xml + RSSボディがフィードと判定されることをテストする。
func TestIsFeedContent_XMLWithRSSBody(t *testing.T) {
	body := []byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>Blog</title></channel></rss>`)
	if !isFeedContent("text/xml", body) {
		t.Error("text/xml + RSSボディ はフィードと判定されるべき")
	}
}

// TestIsFeedContent_HTML はtext/htmlがフィードと判定されないことをテストする。
func TestIsFeedContent_HTML(t *testing.T) {
	if isFeedContent("text/html; charset=utf-8", []byte("<html></html>")) {
		t.Error("text/html はフィードと判定されるべきではない")
	}
}

// --- Summarize のテスト ---
// SSRFガードなし（nil）でhttptestサーバーに対して実行する。

// TestPageTitleSummarizer_HTMLPage はHTMLページからタイトルを抽出することをテストする。
func TestPageTitleSummarizer_HTMLPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>技術ブログの記事</title></head><body>本文</body></html>`))
	}))
	defer ts.Close()

	p := NewPageTitleSummarizer(nil, testLogger(), 0, 0)
	got, err := p.Summarize(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Summarizeが失敗した: %v", err)
	}
	if got != "技術ブログの記事" {
		t.Errorf("期待: 技術ブログの記事, 結果: %q", got)
	}
}

// TestPageTitleSummarizer_FeedResponse はRSSフィードのレスポンスにフィードタイトルを返すことをテストする。
func TestPageTitleSummarizer_FeedResponse(t *testing.T) {
	rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>開発者ブログ</title>
<link>https://example.com</link>
<description>desc</description>
</channel></rss>`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rss))
	}))
	defer ts.Close()

	p := NewPageTitleSummarizer(nil, testLogger(), 0, 0)
	got, err := p.Summarize(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Summarizeが失敗した: %v", err)
	}
	if got != "開発者ブログ" {
		t.Errorf("期待: 開発者ブログ, 結果: %q", got)
	}
}

// TestPageTitleSummarizer_NoTitle はタイトルのないページでエラーを返すことをテストする。
func TestPageTitleSummarizer_NoTitle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head></head><body>タイトルなし</body></html>`))
	}))
	defer ts.Close()

	p := NewPageTitleSummarizer(nil, testLogger(), 0, 0)
	if _, err := p.Summarize(context.Background(), ts.URL); err == nil {
		t.Error("タイトルが抽出できない場合はエラーを返すべき")
	}
}

// TestPageTitleSummarizer_ErrorStatus は2xx以外のステータスでエラーを返すことをテストする。
func TestPageTitleSummarizer_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	p := NewPageTitleSummarizer(nil, testLogger(), 0, 0)
	if _, err := p.Summarize(context.Background(), ts.URL); err == nil {
		t.Error("404レスポンスはエラーを返すべき")
	}
}

// TestPageTitleSummarizer_SSRFBlocked はSSRFガードがURLを拒否した場合にエラーを返すことをテストする。
func TestPageTitleSummarizer_SSRFBlocked(t *testing.T) {
	p := NewPageTitleSummarizer(rejectAllGuard{}, testLogger(), 0, 0)
	if _, err := p.Summarize(context.Background(), "http://10.0.0.1/internal"); err == nil {
		t.Error("SSRFガードに拒否されたURLはエラーを返すべき")
	}
}

// rejectAllGuard は全URLを拒否するテスト用SSRFValidator。
type rejectAllGuard struct{}

func (rejectAllGuard) ValidateURL(rawURL string) error {
	return errors.New("プライベートIPアドレスへのアクセスは禁止されています")
}

func (rejectAllGuard) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	return &http.Client{Timeout: timeout}
}
