package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaguanLabs/glosslive/provider"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testGlossary = `{
  "ko_to_ja": {"사업자등록번호": "事業者登録番号", "계좌": "口座"},
  "ja_to_ko": {"事業者登録番号": "사업자등록번호", "口座": "계좌"}
}`

// testEnv points every setting at temporary files and selects the mock backend.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	glossaryPath := filepath.Join(dir, "glossary.json")
	require.NoError(t, os.WriteFile(glossaryPath, []byte(testGlossary), 0o644))

	for key, value := range map[string]string{
		"TRANSLATOR":      "mock",
		"GLOSSARY_PATH":   glossaryPath,
		"HISTORY_DIR":     filepath.Join(dir, "history"),
		"REDIS_URL":       "",
		"DEEPL_API_KEY":   "",
		"OPENAI_API_KEY":  "",
		"LISTEN_ADDR":     "",
		"PORT":            "",
		"LISTEN_LANGUAGE": "",
		"LOG_LEVEL":       "",
		"REQUEST_TIMEOUT": "",
		"CACHE_SIZE":      "",
		"MAX_RETRIES":     "",
		"RATE_LIMIT_RPM":  "",
	} {
		t.Setenv(key, value)
	}
	return dir
}

type testCLI struct {
	*cli
	out  *bytes.Buffer
	mock *provider.MockProvider
}

func newTestCLI(t *testing.T, stdin string) *testCLI {
	t.Helper()
	out := &bytes.Buffer{}
	mock := provider.NewMockProvider()
	return &testCLI{
		cli: &cli{
			stdin:    strings.NewReader(stdin),
			stdout:   out,
			stderr:   out,
			provider: mock,
			logger:   zap.NewNop().Sugar(),
		},
		out:  out,
		mock: mock,
	}
}

func (tc *testCLI) execute(t *testing.T, args ...string) error {
	t.Helper()
	root := tc.rootCommand()
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	return root.ExecuteContext(context.Background())
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"version"}, strings.NewReader(""), &stdout, &stderr)

	require.NoError(t, err)
	require.Contains(t, stdout.String(), "glosslive")
}

func TestRun_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"bogus"}, strings.NewReader(""), &stdout, &stderr)

	require.Error(t, err)
}

func TestTranslateCommand(t *testing.T) {
	testEnv(t)
	tc := newTestCLI(t, "")

	require.NoError(t, tc.execute(t, "translate", "사업자등록번호를", "알려주세요"))
	require.Equal(t, "事業者登録番号を教えてください\n", tc.out.String())

	require.Equal(t, 1, tc.mock.CallCount)
	require.Equal(t, []string{`<x id="0"/>를 알려주세요`}, tc.mock.LastRequest.Texts)
	require.True(t, tc.mock.LastRequest.PreserveMarkup)
}

func TestTranslateCommand_JSON(t *testing.T) {
	testEnv(t)
	tc := newTestCLI(t, "")

	require.NoError(t, tc.execute(t, "translate", "--json", "안녕하세요"))
	require.Contains(t, tc.out.String(), `"translated": "こんにちは"`)
	require.Contains(t, tc.out.String(), `"detectedLang": "KO"`)
}

func TestTranslateCommand_ExplicitRoute(t *testing.T) {
	testEnv(t)
	tc := newTestCLI(t, "")

	require.NoError(t, tc.execute(t, "translate", "--from", "ja", "--to", "ko", "こんにちは"))
	require.Equal(t, "안녕하세요\n", tc.out.String())
	require.Equal(t, "JA", string(tc.mock.LastRequest.SourceLang))
}

func TestTranslateCommand_MissingKey(t *testing.T) {
	testEnv(t)
	t.Setenv("TRANSLATOR", "deepl")
	tc := newTestCLI(t, "")

	err := tc.execute(t, "translate", "안녕하세요")
	require.Error(t, err)
	require.Contains(t, err.Error(), "API key")
	require.Zero(t, tc.mock.CallCount)
}

func TestTranslateCommand_RecordAndHistory(t *testing.T) {
	testEnv(t)

	tc := newTestCLI(t, "")
	require.NoError(t, tc.execute(t, "translate", "--record", "계좌를 만들고 싶어요"))

	tc = newTestCLI(t, "")
	require.NoError(t, tc.execute(t, "history", "list"))
	require.Contains(t, tc.out.String(), "#1")
	require.Contains(t, tc.out.String(), "1 items")

	tc = newTestCLI(t, "")
	require.NoError(t, tc.execute(t, "history", "search", "계좌"))
	require.Contains(t, tc.out.String(), "#1/1")

	tc = newTestCLI(t, "")
	require.NoError(t, tc.execute(t, "history", "star", "1", "1"))
	require.Equal(t, "#1/1 starred\n", tc.out.String())

	tc = newTestCLI(t, "")
	require.NoError(t, tc.execute(t, "history", "export", "1"))
	require.True(t, strings.HasPrefix(tc.out.String(), "=== 대화 기록 ===\n\n⭐ ["))
	require.Contains(t, tc.out.String(), "원문: 계좌를 만들고 싶어요\n")

	tc = newTestCLI(t, "")
	require.NoError(t, tc.execute(t, "history", "export", "--format", "html", "1"))
	require.Contains(t, tc.out.String(), `<html lang="ja">`)

	tc = newTestCLI(t, "")
	require.NoError(t, tc.execute(t, "history", "delete", "1"))

	tc = newTestCLI(t, "")
	require.NoError(t, tc.execute(t, "history", "list"))
	require.Equal(t, "no saved sessions\n", tc.out.String())
}

func TestTranslateCommand_RecordReusesLatestSession(t *testing.T) {
	testEnv(t)

	for _, text := range []string{"안녕하세요", "계좌를 만들고 싶어요", "안녕하세요"} {
		tc := newTestCLI(t, "")
		require.NoError(t, tc.execute(t, "translate", "--record", text))
	}

	tc := newTestCLI(t, "")
	require.NoError(t, tc.execute(t, "history", "list"))
	require.Equal(t, 1, strings.Count(tc.out.String(), "\n"), tc.out.String())
	require.Contains(t, tc.out.String(), "#1")
	require.Contains(t, tc.out.String(), "3 items")
}

func TestHistoryCommand_InvalidIDs(t *testing.T) {
	testEnv(t)
	tc := newTestCLI(t, "")

	require.Error(t, tc.execute(t, "history", "star", "one", "1"))
	require.Error(t, tc.execute(t, "history", "delete", "0"))
	require.Error(t, tc.execute(t, "history", "export", "9"))
}
