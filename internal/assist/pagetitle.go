package assist

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
)

// SSRFValidator はSSRF検証のインターフェース。
// security.SSRFGuardServiceを抽象化してテスタビリティを向上させる。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// PageTitleSummarizer は要約サービス未設定時のローカルフォールバック実装。
// URLのページを直接取得し、HTMLの<title>要素を抽出する。
// レスポンスがRSS/Atomフィードの場合はフィードタイトルを使用する。
type PageTitleSummarizer struct {
	ssrfGuard SSRFValidator
	logger    *slog.Logger
	timeout   time.Duration
	maxSize   int64
}

// NewPageTitleSummarizer はPageTitleSummarizerの新しいインスタンスを生成する。
// timeoutが0以下の場合は10秒、maxSizeが0以下の場合は5MBを使用する。
func NewPageTitleSummarizer(ssrfGuard SSRFValidator, logger *slog.Logger, timeout time.Duration, maxSize int64) *PageTitleSummarizer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}
	return &PageTitleSummarizer{
		ssrfGuard: ssrfGuard,
		logger:    logger,
		timeout:   timeout,
		maxSize:   maxSize,
	}
}

// Summarize はURLのページを取得し、表示タイトルを抽出する。
// 1. SSRF検証を実行
// 2. URLにHTTPリクエストを送信
// 3. フィードの場合はフィードタイトル、HTMLの場合は<title>要素を抽出
// 4. タイトルが得られない場合はエラーを返す
func (p *PageTitleSummarizer) Summarize(ctx context.Context, rawURL string) (string, error) {
	if p.ssrfGuard != nil {
		if err := p.ssrfGuard.ValidateURL(rawURL); err != nil {
			return "", fmt.Errorf("URLの検証に失敗しました: %w", err)
		}
	}

	client := p.getHTTPClient()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html, application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ページの取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ページ取得がステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxSize))
	if err != nil {
		return "", fmt.Errorf("レスポンスの読み取りに失敗しました: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")

	// フィードの場合はフィードタイトルを採用する
	if isFeedContent(contentType, body) {
		feed, parseErr := gofeed.NewParser().ParseString(string(body))
		if parseErr == nil && feed.Title != "" {
			return feed.Title, nil
		}
		p.logger.Warn("フィードのパースに失敗したためHTMLタイトル抽出にフォールバックします",
			slog.String("url", rawURL),
		)
	}

	title := extractHTMLTitle(body)
	if title == "" {
		return "", fmt.Errorf("ページからタイトルを抽出できませんでした: %s", rawURL)
	}

	return title, nil
}

// getHTTPClient はHTTPクライアントを取得する。
// SSRFGuardが設定されている場合はSSRF防止付きクライアントを返す。
func (p *PageTitleSummarizer) getHTTPClient() *http.Client {
	if p.ssrfGuard != nil {
		return p.ssrfGuard.NewSafeClient(p.timeout, p.maxSize)
	}
	return &http.Client{Timeout: p.timeout}
}

// feedContentTypes はフィードとして認識するContent-Typeのリスト。
var feedContentTypes = []string{
	"application/rss+xml",
	"application/atom+xml",
}

// xmlContentTypes はXMLとして認識するContent-Type（ボディ解析が必要）。
var xmlContentTypes = []string{
	"text/xml",
	"application/xml",
}

// isFeedContent はContent-Typeとボディを解析して、
// レスポンスがRSS/Atomフィードかどうかを判定する。
func isFeedContent(contentType string, body []byte) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	mediaType = strings.ToLower(mediaType)

	for _, feedCT := range feedContentTypes {
		if mediaType == feedCT {
			return true
		}
	}

	isXML := false
	for _, xmlCT := range xmlContentTypes {
		if mediaType == xmlCT {
			isXML = true
			break
		}
	}
	if !isXML || len(body) == 0 {
		return false
	}

	// 先頭4KBを検査（XMLプロローグ + ルート要素が含まれるのに十分）
	checkSize := 4096
	if len(body) < checkSize {
		checkSize = len(body)
	}
	prefix := strings.ToLower(string(body[:checkSize]))

	if strings.Contains(prefix, "<rss") || strings.Contains(prefix, "<rdf:rdf") {
		return true
	}
	if strings.Contains(prefix, "<feed") && strings.Contains(prefix, "http://www.w3.org/2005/atom") {
		return true
	}
	return false
}

// extractHTMLTitle はHTMLボディから<title>要素のテキストを抽出する。
// headタグの解析が終了した時点で打ち切る。見つからない場合は空文字列を返す。
func extractHTMLTitle(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	inTitle := false

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""

		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			tagName := string(tn)
			if tagName == "title" {
				inTitle = true
			}
			if tagName == "body" {
				// bodyに入ったらheadの解析を終了
				return ""
			}

		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "title":
				// 空の<title></title>
				return ""
			case "head":
				return ""
			}
		}
	}
}
