// Package link はURLからリンクメタデータを構築するリゾルバを提供する。
package link

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hitoshi/paraman/internal/model"
)

// TitleSummarizer はURLから表示タイトルを取得するコラボレータのインターフェース。
type TitleSummarizer interface {
	Summarize(ctx context.Context, rawURL string) (string, error)
}

// SlugGenerator はテキストからスラグを生成するコラボレータのインターフェース。
type SlugGenerator interface {
	GenerateSlug(ctx context.Context, text string) (string, error)
}

// TitleSanitizer は表示タイトルのサニタイズ機能のインターフェース。
type TitleSanitizer interface {
	Sanitize(raw string) string
}

// Resolver はURLからLinkMetadataを構築する。
// ドメインとファビコンはURLから決定的に導出し、
// 表示タイトルとスラグは2つのコラボレータから並行して取得する。
type Resolver struct {
	summarizer TitleSummarizer
	slugger    SlugGenerator
	sanitizer  TitleSanitizer
	logger     *slog.Logger
}

// NewResolver はResolverの新しいインスタンスを生成する。
func NewResolver(summarizer TitleSummarizer, slugger SlugGenerator, sanitizer TitleSanitizer, logger *slog.Logger) *Resolver {
	return &Resolver{
		summarizer: summarizer,
		slugger:    slugger,
		sanitizer:  sanitizer,
		logger:     logger,
	}
}

// Resolve はURLからリンクメタデータを構築する。
// タイトル取得とスラグ生成のどちらかが失敗した場合、メタデータ構築全体が失敗する。
// 呼び出し側はエラー時にリンクなしの分類パスへフォールバックする。
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*model.LinkMetadata, error) {
	domain, err := DomainFromURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("URLの解析に失敗しました: %w", err)
	}

	// タイトル取得とスラグ生成を並行実行する
	titleCh := make(chan resolveResult, 1)
	slugCh := make(chan resolveResult, 1)

	go func() {
		title, err := r.summarizer.Summarize(ctx, rawURL)
		titleCh <- resolveResult{value: title, err: err}
	}()
	go func() {
		slug, err := r.slugger.GenerateSlug(ctx, rawURL)
		slugCh <- resolveResult{value: slug, err: err}
	}()

	titleRes := <-titleCh
	slugRes := <-slugCh

	if titleRes.err != nil {
		r.logger.Warn("表示タイトルの取得に失敗しました",
			slog.String("url", rawURL),
			slog.String("error", titleRes.err.Error()),
		)
		return nil, fmt.Errorf("表示タイトルの取得に失敗しました: %w", titleRes.err)
	}
	if slugRes.err != nil {
		r.logger.Warn("スラグの生成に失敗しました",
			slog.String("url", rawURL),
			slog.String("error", slugRes.err.Error()),
		)
		return nil, fmt.Errorf("スラグの生成に失敗しました: %w", slugRes.err)
	}

	return &model.LinkMetadata{
		DisplayTitle: r.sanitizer.Sanitize(titleRes.value),
		Domain:       domain,
		FaviconURL:   FaviconURL(domain),
		Slug:         slugRes.value,
		IsPinned:     false,
	}, nil
}

// resolveResult はコラボレータ呼び出しの結果を保持する。
type resolveResult struct {
	value string
	err   error
}

// DomainFromURL はURLから表示用ドメインを導出する。
// ホスト名を小文字化し、先頭の「www.」を取り除く。
// http/https以外のスキームおよびホストのないURLはエラーを返す。
func DomainFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("サポート外のスキームです: %s", parsed.Scheme)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", fmt.Errorf("ホストが含まれていません: %s", rawURL)
	}
	return strings.TrimPrefix(host, "www."), nil
}

// faviconServiceFormat はファビコン参照のURLテンプレート。
// ドメインから決定的に導出され、取得は行わない。
const faviconServiceFormat = "https://icons.duckduckgo.com/ip3/%s.ico"

// FaviconURL はドメインからファビコン参照URLを決定的に導出する。
func FaviconURL(domain string) string {
	return fmt.Sprintf(faviconServiceFormat, domain)
}
