package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

// TestSetup_JSONOutput はSetupがJSON形式のログを出力することをテストする。
func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf, "info")

	l.Info("テストメッセージ", slog.String("key", "value"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("ログ出力はJSONであるべき: %v", err)
	}
	if record["msg"] != "テストメッセージ" {
		t.Errorf("期待msg: テストメッセージ, 結果: %v", record["msg"])
	}
	if record["key"] != "value" {
		t.Errorf("期待key: value, 結果: %v", record["key"])
	}
}

// TestSetup_LevelFiltering は指定レベル未満のログが出力されないことをテストする。
func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf, "warn")

	l.Info("出力されないメッセージ")
	if buf.Len() != 0 {
		t.Errorf("warnレベル設定時にinfoログは出力されるべきではない: %s", buf.String())
	}

	l.Warn("出力されるメッセージ")
	if buf.Len() == 0 {
		t.Error("warnログは出力されるべき")
	}
}

// TestParseLevel_UnknownValue は未知のレベル文字列がinfoとして扱われることをテストする。
func TestParseLevel_UnknownValue(t *testing.T) {
	if got := parseLevel("verbose"); got != slog.LevelInfo {
		t.Errorf("未知のレベルはinfoであるべき, 結果: %v", got)
	}
	if got := parseLevel(""); got != slog.LevelInfo {
		t.Errorf("空文字列はinfoであるべき, 結果: %v", got)
	}
}
