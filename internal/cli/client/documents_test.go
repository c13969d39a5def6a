package client

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloo-solutions/kbdocs/internal/cli"
	"github.com/cloo-solutions/kbdocs/internal/domain"
	"github.com/cloo-solutions/kbdocs/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Setenv("RAGFLOW_API_URL", "")
	t.Setenv("RAGFLOW_API_KEY", "")
	t.Setenv("RAGFLOW_SENTRY_DSN", "")
}

// execute runs the command against fake and returns stdout.
func execute(t *testing.T, fake *testutil.FakeRAGFlow, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)

	base := []string{"--config", filepath.Join(t.TempDir(), "absent.json")}
	if fake != nil {
		base = append(base, "--api-url", fake.URL(), "--api-key", testutil.APIKey)
	}

	cmd := RootCmd("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(base, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func twoDatasets() []testutil.FakeDataset {
	return []testutil.FakeDataset{
		{ID: "kb-alpha", Name: "Alpha Base", DocumentCount: 237, ChunkCount: 900, Pages: testutil.PagesOfSize(100, 100, 37)},
		{ID: "kb-beta", Name: "beta", DocumentCount: 2, Pages: []testutil.FakePage{{Docs: []map[string]interface{}{
			testutil.Doc("b1", "guide.pdf", "SUCCESS", 1048576),
			testutil.Doc("b2", "faq.md", "FAIL", 0),
		}}}},
	}
}

func TestRoot_ListKnowledgeBases(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t, twoDatasets()...)

	out, err := execute(t, fake, "--list-kbs")
	require.NoError(t, err)

	assert.Contains(t, out, "Connected to RAGFlow API: "+fake.URL())
	assert.Contains(t, out, "All knowledge bases:")
	assert.Contains(t, out, "kb-alpha")
	assert.Contains(t, out, "Alpha Base")
	assert.Contains(t, out, "Total: 2 knowledge bases")
	assert.Equal(t, 0, fake.DocumentRequests("kb-alpha"))
}

func TestRoot_ListKnowledgeBases_ApplicationError(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t, twoDatasets()...)
	fake.DatasetsCode = 100
	fake.DatasetsMessage = "database unavailable"

	out, err := execute(t, fake, "--list-kbs")
	require.NoError(t, err)
	assert.Contains(t, out, "database unavailable")
	assert.Contains(t, out, "no knowledge bases found")
}

func TestRoot_DocumentsByID_Table(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t, twoDatasets()...)

	out, err := execute(t, fake, "--kb-id", "kb-alpha")
	require.NoError(t, err)

	assert.Equal(t, 3, fake.DocumentRequests("kb-alpha"))
	assert.Contains(t, out, "fetched 237 documents...")
	assert.Contains(t, out, "Fetched 237 documents in total")
	assert.Contains(t, out, "Total: 237 documents")
	assert.Contains(t, out, "doc-3-36")
}

func TestRoot_DocumentsByName_OverridesID(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t, twoDatasets()...)

	out, err := execute(t, fake, "--kb-id", "kb-alpha", "--kb-name", "BETA", "--brief")
	require.NoError(t, err)

	assert.Contains(t, out, "Found knowledge base: beta (ID: kb-beta)")
	assert.Contains(t, out, "guide.pdf\nfaq.md\n")
	assert.Equal(t, 0, fake.DocumentRequests("kb-alpha"))
	assert.Equal(t, 1, fake.DocumentRequests("kb-beta"))
}

func TestRoot_NameNotFound(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t, twoDatasets()...)

	out, err := execute(t, fake, "--kb-name", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "knowledge base not found: zzz")
	assert.Contains(t, out, "--list-kbs")
}

func TestRoot_NoKnowledgeBaseGiven(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t)

	out, err := execute(t, fake)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "Error: specify --kb-id or --kb-name")
	assert.Empty(t, fake.Requests())
}

func TestRoot_MissingAPIKey(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t)

	_, err := execute(t, nil, "--api-url", fake.URL(), "--kb-id", "kb-alpha")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Empty(t, fake.Requests())
}

func TestRoot_InvalidFormat(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t)

	_, err := execute(t, fake, "--kb-id", "kb-alpha", "--format", "xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, fake.Requests())
}

func TestRoot_PartialFailure(t *testing.T) {
	pages := testutil.PagesOfSize(10)
	pages = append(pages, testutil.FakePage{Code: 100, Message: "page exploded"})
	fake := testutil.NewFakeRAGFlow(t, testutil.FakeDataset{ID: "kb1", Name: "one", Pages: pages})

	out, err := execute(t, fake, "--kb-id", "kb1", "--page-size", "10", "--format", "csv")
	require.NoError(t, err)

	assert.Equal(t, 2, fake.DocumentRequests("kb1"))
	assert.Contains(t, out, "page exploded")
	assert.Contains(t, out, "listing stopped early, showing 10 documents")
	assert.Equal(t, 10, strings.Count(out, "SUCCESS,\"0.00 MB\""))
}

func TestRoot_OutputJSONFile(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t, twoDatasets()...)
	path := filepath.Join(t.TempDir(), "docs.json")

	out, err := execute(t, fake, "--kb-id", "kb-beta", "--format", "json", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved document list to: "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var docs []domain.Document
	require.NoError(t, json.Unmarshal(data, &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "b1", docs[0].ID)
	assert.Equal(t, domain.DocumentStatusFail, docs[1].Status)
	assert.Contains(t, string(data), `"run": "SUCCESS"`)
}

func TestRoot_OutputTXTForTable(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t, twoDatasets()...)
	path := filepath.Join(t.TempDir(), "docs.txt")

	_, err := execute(t, fake, "--kb-id", "kb-beta", "--output", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1. guide.pdf\n   ID: b1\n")
}

func TestRoot_EmptyKnowledgeBaseWritesNoFile(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t, testutil.FakeDataset{ID: "empty", Name: "empty"})
	path := filepath.Join(t.TempDir(), "docs.csv")

	out, err := execute(t, fake, "--kb-id", "empty", "--format", "csv", "--output", path)
	require.NoError(t, err)

	assert.Contains(t, out, "no documents in this knowledge base")
	assert.NoFileExists(t, path)
}

func TestRoot_SaveFailureDoesNotFail(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t, twoDatasets()...)
	path := filepath.Join(t.TempDir(), "no-such-dir", "docs.json")

	out, err := execute(t, fake, "--kb-id", "kb-beta", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Error: failed to save file")
	assert.Contains(t, out, "guide.pdf")
}

func TestRoot_Interrupted(t *testing.T) {
	fake := testutil.NewFakeRAGFlow(t, twoDatasets()...)
	clearEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := RootCmd("test")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", "", "--api-url", fake.URL(), "--api-key", testutil.APIKey, "--kb-id", "kb-alpha"})

	err := cmd.ExecuteContext(ctx)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Equal(t, 0, fake.DocumentRequests("kb-alpha"))
}

func TestRoot_HelpJSON(t *testing.T) {
	cmd := RootCmd("1.2.3")
	var buf bytes.Buffer

	handled, err := cli.HandleHelpJSON(cmd, []string{"--help-json"}, &buf)
	require.NoError(t, err)
	require.True(t, handled)

	var schema cli.CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &schema))
	assert.Equal(t, "kbdocs", schema.Name)
	assert.Equal(t, "1.2.3", schema.Version)

	flags := map[string]cli.FlagSchema{}
	for _, f := range schema.Flags {
		flags[f.Name] = f
	}
	assert.Equal(t, "ragflow_config.json", flags["config"].Default)
	assert.Equal(t, []string{"table", "json", "csv"}, flags["format"].Choices)
	assert.Equal(t, "100", flags["page-size"].Default)
	assert.Contains(t, flags, "kb-name")
	assert.NotContains(t, flags, "help-json")
}

func TestRoot_HelpJSONNotRequested(t *testing.T) {
	handled, err := cli.HandleHelpJSON(RootCmd("dev"), []string{"--list-kbs"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, handled)
}
