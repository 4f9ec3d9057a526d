package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/tokengaps/internal/errors"
	"github.com/Aman-CERP/tokengaps/pkg/version"
)

// isolate points config lookup at empty temp directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, v := range []string{"TOKENGAPS_TOKENIZER", "TOKENGAPS_LOG_LEVEL", "TOKENGAPS_STOP_WORDS", "TOKENGAPS_MAX_RESULTS", "NO_COLOR"} {
		t.Setenv(v, "")
	}
	dir := t.TempDir()
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldDir) })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithStderr(t, args...)
	return out, err
}

func runWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root, opts := newRootCmd()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := execute(root, opts)
	return out.String(), errOut.String(), err
}

func TestAnalyzeCmd_RemovesGaps(t *testing.T) {
	isolate(t)

	// When: analyzing text with a leading stop word
	out, err := run(t, "analyze", "the quick fox")

	// Then: every token has increment 1
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "quick")
	assert.Contains(t, lines[0], "posinc=1")
	assert.Contains(t, lines[1], "fox")
	assert.Contains(t, lines[1], "posinc=1")
}

func TestAnalyzeCmd_KeepGaps(t *testing.T) {
	isolate(t)

	out, err := run(t, "analyze", "--keep-gaps", "the quick fox")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "posinc=2")
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	isolate(t)

	out, err := run(t, "analyze", "--json", "getUserById")

	require.NoError(t, err)
	var results []analyzeResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "args", results[0].Source)
	assert.Equal(t, "code | lowercase | stop | removeTokenGaps", results[0].Chain)

	terms := make([]string, 0, len(results[0].Tokens))
	for _, tk := range results[0].Tokens {
		terms = append(terms, tk.Term)
		assert.Equal(t, 1, tk.PositionIncrement)
	}
	// "by" is a stop word
	assert.Equal(t, []string{"get", "user", "id"}, terms)
}

func TestAnalyzeCmd_Files(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("alpha and beta"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("gamma"), 0644))

	out, err := run(t, "analyze", "--json", "--keep-gaps", "-f", a, "-f", b)

	require.NoError(t, err)
	var results []analyzeResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, a, results[0].Source)
	assert.Equal(t, b, results[1].Source)
	require.Len(t, results[0].Tokens, 2)
	assert.Equal(t, 2, results[0].Tokens[1].PositionIncrement)
}

func TestAnalyzeCmd_MissingFile(t *testing.T) {
	isolate(t)

	_, err := run(t, "analyze", "-f", filepath.Join(t.TempDir(), "nope.txt"))

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
}

func TestAnalyzeCmd_UnknownTokenizer(t *testing.T) {
	isolate(t)

	_, err := run(t, "analyze", "--tokenizer", "nope", "text")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownComponent, errors.GetCode(err))
}

func TestAnalyzeCmd_ProjectConfig(t *testing.T) {
	// Given: a project config with a custom stop list and whitespace tokenizer
	isolate(t)
	yaml := `analysis:
  tokenizer: whitespace
  filters:
    - name: stop
      args:
        words: "fox"
    - name: remove_token_gaps
`
	require.NoError(t, os.WriteFile(".tokengaps.yaml", []byte(yaml), 0644))

	// When: analyzing
	out, err := run(t, "analyze", "--json", "the quick fox jumps")

	// Then: only "fox" is removed and gaps are closed
	require.NoError(t, err)
	var results []analyzeResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results[0].Tokens, 3)
	assert.Equal(t, "jumps", results[0].Tokens[2].Term)
	assert.Equal(t, 1, results[0].Tokens[2].PositionIncrement)
}

func TestAnalyzeCmd_BadConfig(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".tokengaps.yaml", []byte("analysis:\n  filters:\n    - name: removeTokenGaps\n      args:\n        foo: bar\n"), 0644))

	_, err := run(t, "analyze", "text")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "foo")

	// version does not need the config
	_, err = run(t, "version", "--short")
	assert.NoError(t, err)
}

func TestSearchCmd_PhraseAcrossStopWords(t *testing.T) {
	isolate(t)

	out, err := run(t, "search", "--json", "quick fox",
		"--doc", "the quick as the fox", "--doc", "slow dog")

	require.NoError(t, err)
	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1", results[0]["id"])
}

func TestSearchCmd_KeepGaps(t *testing.T) {
	isolate(t)

	out, err := run(t, "search", "--keep-gaps", "quick fox", "--doc", "the quick as the fox")

	require.NoError(t, err)
	assert.Contains(t, out, "no documents match")
}

func TestSearchCmd_NoDocuments(t *testing.T) {
	isolate(t)

	_, err := run(t, "search", "quick fox")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestSearchCmd_Bluge(t *testing.T) {
	isolate(t)

	out, err := run(t, "search", "--bluge", "--json", "quick fox",
		"--doc", "the quick and the fox", "--doc", "slow dog")

	require.NoError(t, err)
	var hits []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-1", hits[0]["id"])
}

func TestSearchCmd_BlugeQueryString(t *testing.T) {
	isolate(t)

	out, err := run(t, "search", "--bluge", "--query-string", "dog",
		"--doc", "the quick and the fox", "--doc", "slow dog")

	require.NoError(t, err)
	assert.Contains(t, out, "doc-2")
	assert.NotContains(t, out, "doc-1")
}

func TestSearchCmd_QueryStringNeedsBluge(t *testing.T) {
	isolate(t)

	_, err := run(t, "search", "--query-string", "dog", "--doc", "dog")

	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestAnalyzeCmd_Bluge(t *testing.T) {
	isolate(t)

	out, err := run(t, "analyze", "--bluge", "the cat's toy")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "cat")
	assert.Contains(t, lines[0], "posinc=1")
}

func TestConfigCmd_InitAndShow(t *testing.T) {
	isolate(t)

	out, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, ".tokengaps.yaml")

	_, err = run(t, "config", "init")
	assert.Error(t, err)

	out, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "tokenizer: code")
	assert.Contains(t, out, "removeTokenGaps")
}

func TestConfigCmd_Filters(t *testing.T) {
	isolate(t)

	out, err := run(t, "config", "filters")

	require.NoError(t, err)
	assert.Contains(t, out, "remove_token_gaps")
	assert.Contains(t, out, "whitespace")
}

func TestVersionCmd_DefaultOutput(t *testing.T) {
	isolate(t)

	out, err := run(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "tokengaps")
	assert.Contains(t, out, version.Short())
}

func TestVersionCmd_JSONOutput(t *testing.T) {
	isolate(t)

	out, err := run(t, "version", "--json")

	require.NoError(t, err)
	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Short(), info.Version)
}

func TestRootCmd_ProfileMem(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "heap.prof")

	_, err := run(t, "--profile-mem", path, "analyze", "the quick fox")

	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestAnalyzeCmd_BlugeFiles(t *testing.T) {
	// Given: a file analyzed with the bluge analyzer
	isolate(t)
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("the quick fox"), 0644))

	// When: passing it with --file instead of arguments
	out, err := run(t, "analyze", "--bluge", "--json", "--file", path)

	// Then: the file is read, not stdin
	require.NoError(t, err)
	var results []analyzeResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, path, results[0].Source)
	assert.Contains(t, results[0].Chain, "remove_token_gaps")
	require.Len(t, results[0].Tokens, 2)
	assert.Equal(t, "quick", results[0].Tokens[0].Term)
	assert.Equal(t, "fox", results[0].Tokens[1].Term)
	assert.Equal(t, 1, results[0].Tokens[0].PositionIncrement)
}

func TestAnalyzeCmd_BlugeMissingFile(t *testing.T) {
	isolate(t)

	_, err := run(t, "analyze", "--bluge", "--file", filepath.Join(t.TempDir(), "nope.txt"))

	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
}

// withIndexPath writes a project config pointing search at an on-disk index.
func withIndexPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index")
	yaml := "search:\n  index_path: " + path + "\n"
	require.NoError(t, os.WriteFile(".tokengaps.yaml", []byte(yaml), 0644))
	return path
}

func TestSearchCmd_IndexPathRejectsKeepGaps(t *testing.T) {
	// Given: an on-disk index built with gap removal
	isolate(t)
	withIndexPath(t)
	out, err := run(t, "search", "--json", "quick fox", "--doc", "quick the fox")
	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")

	// When: searching it again with --keep-gaps
	_, err = run(t, "search", "--keep-gaps", "quick fox", "--doc", "quick the fox")

	// Then: the run fails instead of using the stored gapless analyzer
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestSearchCmd_IndexPathPersistsAndDeletes(t *testing.T) {
	isolate(t)
	withIndexPath(t)
	_, err := run(t, "search", "quick fox", "--doc", "quick the fox")
	require.NoError(t, err)

	// Documents from the previous run are still searchable
	out, err := run(t, "search", "--json", "quick fox")
	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")

	// Deleting the only document leaves nothing to search
	_, err = run(t, "search", "quick fox", "--delete", "doc-1")
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestSearchCmd_DeleteNeedsBleve(t *testing.T) {
	isolate(t)

	_, err := run(t, "search", "--bluge", "fox", "--doc", "fox", "--delete", "doc-1")

	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestRootCmd_ProfileCPUWrittenOnFailure(t *testing.T) {
	// Given: a CPU profile requested for a command that fails
	isolate(t)
	path := filepath.Join(t.TempDir(), "cpu.prof")

	_, err := run(t, "--profile-cpu", path, "analyze", "--file", filepath.Join(t.TempDir(), "missing.txt"))

	// Then: the profile is still flushed
	require.Error(t, err)
	info, statErr := os.Stat(path)
	require.NoError(t, statErr)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRootCmd_ReportsErrorOnStderr(t *testing.T) {
	isolate(t)
	missing := filepath.Join(t.TempDir(), "missing.txt")

	_, stderr, err := runWithStderr(t, "analyze", "--file", missing)

	require.Error(t, err)
	assert.Contains(t, stderr, "Error: file not found")
	assert.Contains(t, stderr, "Code: "+errors.ErrCodeFileNotFound)
	assert.NotContains(t, stderr, "--help")
}

func TestRootCmd_ReportsJSONErrorWhenJSONRequested(t *testing.T) {
	isolate(t)
	missing := filepath.Join(t.TempDir(), "missing.txt")

	_, stderr, err := runWithStderr(t, "analyze", "--json", "--file", missing)

	require.Error(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stderr), &decoded))
	assert.Equal(t, errors.ErrCodeFileNotFound, decoded["code"])
	assert.Equal(t, "IO", decoded["category"])
}

func TestRootCmd_ValidationErrorPointsAtHelp(t *testing.T) {
	isolate(t)

	_, stderr, err := runWithStderr(t, "search", "--query-string", "dog", "--doc", "dog")

	require.Error(t, err)
	assert.Contains(t, stderr, "Code: "+errors.ErrCodeInvalidInput)
	assert.Contains(t, stderr, "Run 'tokengaps search --help' for usage.")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.ValidationError("bad", nil)))
	assert.Equal(t, 1, exitCode(fmt.Errorf("plain")))
	assert.Equal(t, 2, exitCode(fmt.Errorf("open: %w", errors.New(errors.ErrCodeCorruptIndex, "corrupt", nil))))
}

func TestRootCmd_UnknownFlagIsValidationError(t *testing.T) {
	isolate(t)

	_, err := run(t, "analyze", "--nope")

	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestRootCmd_LogsFailureWithErrorCode(t *testing.T) {
	// Given: info-level logging
	isolate(t)
	t.Setenv("TOKENGAPS_LOG_LEVEL", "info")
	missing := filepath.Join(t.TempDir(), "missing.txt")

	// When: a command fails
	_, stderr, err := runWithStderr(t, "analyze", "--file", missing)

	// Then: the log line carries the structured error fields
	require.Error(t, err)
	assert.Contains(t, stderr, "command failed")
	assert.Contains(t, stderr, "error_code="+errors.ErrCodeFileNotFound)
	assert.Contains(t, stderr, "detail_path=")
}
