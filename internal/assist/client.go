// Package assist は外部支援サービスのクライアントを提供する。
// テキスト分類・リンク要約・スラグ生成・プロジェクト分解の4つのコラボレータ
// 呼び出しと、外部サービス未設定時のローカルフォールバック実装を含む。
//
// すべてのコラボレータ呼び出しはコンテキストでキャンセル可能であり、
// リトライは行わない。失敗時の扱い（フォールバック）は呼び出し元が決定する。
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// userAgent はコラボレータ呼び出しで使用するUser-Agentヘッダ。
const userAgent = "Paraman/1.0 PARA Organizer"

// maxResponseBytes はコラボレータレスポンスの最大サイズ（1MB）。
const maxResponseBytes = 1 * 1024 * 1024

// postJSON はJSONリクエストをPOSTし、JSONレスポンスをデコードする共通ヘルパー。
// 2xx以外のステータスはエラーとして扱う。
func postJSON(ctx context.Context, httpClient *http.Client, endpoint string, reqBody any, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("支援サービスがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if err := json.Unmarshal(body, respBody); err != nil {
		return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return nil
}
