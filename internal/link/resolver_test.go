package link

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// stubSummarizer はテスト用のTitleSummarizer。
type stubSummarizer struct {
	title string
	err   error
	delay time.Duration
}

func (s *stubSummarizer) Summarize(ctx context.Context, rawURL string) (string, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.title, s.err
}

// stubSlugger はテスト用のSlugGenerator。
type stubSlugger struct {
	slug  string
	err   error
	delay time.Duration
}

func (s *stubSlugger) GenerateSlug(ctx context.Context, text string) (string, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.slug, s.err
}

// passthroughSanitizer は入力をそのまま返すテスト用のTitleSanitizer。
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(raw string) string { return raw }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResolver(sum *stubSummarizer, slg *stubSlugger) *Resolver {
	return NewResolver(sum, slg, passthroughSanitizer{}, testLogger())
}

// TestResolve_Success は両コラボレータ成功時にメタデータが構築されることをテストする。
func TestResolve_Success(t *testing.T) {
	r := newTestResolver(
		&stubSummarizer{title: "Example Domain"},
		&stubSlugger{slug: "example-domain-a1b2"},
	)

	meta, err := r.Resolve(context.Background(), "https://www.example.com/path")
	if err != nil {
		t.Fatalf("Resolveが失敗した: %v", err)
	}

	if meta.DisplayTitle != "Example Domain" {
		t.Errorf("期待DisplayTitle: Example Domain, 結果: %s", meta.DisplayTitle)
	}
	if meta.Domain != "example.com" {
		t.Errorf("期待Domain: example.com, 結果: %s", meta.Domain)
	}
	if meta.Slug != "example-domain-a1b2" {
		t.Errorf("期待Slug: example-domain-a1b2, 結果: %s", meta.Slug)
	}
	if meta.IsPinned {
		t.Error("作成直後のIsPinnedはfalseであるべき")
	}
	if !strings.Contains(meta.FaviconURL, "example.com") {
		t.Errorf("FaviconURLはドメインを含むべき, 結果: %s", meta.FaviconURL)
	}
}

// TestResolve_FaviconDeterministic は同一ドメインに対するファビコン参照が常に同一であることをテストする。
func TestResolve_FaviconDeterministic(t *testing.T) {
	first := FaviconURL("example.com")
	second := FaviconURL("example.com")
	if first != second {
		t.Errorf("ファビコン参照は決定的であるべき: %s != %s", first, second)
	}
	if FaviconURL("other.org") == first {
		t.Error("異なるドメインのファビコン参照は異なるべき")
	}
}

// TestResolve_SummarizerFailure はタイトル取得失敗でメタデータ構築全体が失敗することをテストする。
func TestResolve_SummarizerFailure(t *testing.T) {
	r := newTestResolver(
		&stubSummarizer{err: errors.New("タイムアウト")},
		&stubSlugger{slug: "some-slug"},
	)

	if _, err := r.Resolve(context.Background(), "https://example.com"); err == nil {
		t.Error("タイトル取得失敗時はエラーを返すべき")
	}
}

// TestResolve_SluggerFailure はスラグ生成失敗でメタデータ構築全体が失敗することをテストする。
func TestResolve_SluggerFailure(t *testing.T) {
	r := newTestResolver(
		&stubSummarizer{title: "タイトル"},
		&stubSlugger{err: errors.New("サービス障害")},
	)

	if _, err := r.Resolve(context.Background(), "https://example.com"); err == nil {
		t.Error("スラグ生成失敗時はエラーを返すべき")
	}
}

// TestResolve_Concurrent は両コラボレータが並行実行されることをテストする。
// 逐次実行なら2×delayかかるところ、並行実行なら約1×delayで完了する。
func TestResolve_Concurrent(t *testing.T) {
	delay := 100 * time.Millisecond
	r := newTestResolver(
		&stubSummarizer{title: "タイトル", delay: delay},
		&stubSlugger{slug: "slug", delay: delay},
	)

	start := time.Now()
	if _, err := r.Resolve(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("Resolveが失敗した: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed >= 2*delay {
		t.Errorf("並行実行なら%v未満で完了するはず, 結果: %v", 2*delay, elapsed)
	}
}

// TestResolve_MalformedURL は不正なURLでエラーを返すことをテストする。
func TestResolve_MalformedURL(t *testing.T) {
	r := newTestResolver(&stubSummarizer{title: "t"}, &stubSlugger{slug: "s"})

	tests := []string{
		"://missing-scheme",
		"ftp://example.com/file",
		"https://",
		"ただのテキスト",
	}
	for _, rawURL := range tests {
		if _, err := r.Resolve(context.Background(), rawURL); err == nil {
			t.Errorf("不正なURL %q はエラーを返すべき", rawURL)
		}
	}
}

// TestDomainFromURL はドメイン導出の各ルールをテストする。
func TestDomainFromURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"wwwの除去", "https://www.example.com/a", "example.com"},
		{"小文字化", "https://EXAMPLE.COM", "example.com"},
		{"サブドメインは保持", "https://blog.example.com", "blog.example.com"},
		{"ポートの除去", "http://example.com:8080/x", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DomainFromURL(tt.in)
			if err != nil {
				t.Fatalf("DomainFromURLが失敗した: %v", err)
			}
			if got != tt.want {
				t.Errorf("期待: %s, 結果: %s", tt.want, got)
			}
		})
	}
}
