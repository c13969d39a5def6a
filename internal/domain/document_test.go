package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_UnmarshalJSON_DocumentID(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"document_id":"d1","name":"a.pdf","chunk_count":3,"status":"SUCCESS","size":2097152}`), &doc)
	require.NoError(t, err)

	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, "a.pdf", doc.Name)
	assert.Equal(t, 3, doc.ChunkCount)
	assert.Equal(t, DocumentStatusSuccess, doc.Status)
	assert.Equal(t, int64(2097152), doc.Size)
	assert.Equal(t, "2.00 MB", doc.FormatSize("-"))
}

func TestDocument_UnmarshalJSON_FallsBackToID(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x9","name":"b.txt"}`), &doc))

	assert.Equal(t, "x9", doc.ID)
	assert.Equal(t, DocumentStatus(""), doc.Status)
	assert.False(t, doc.HasSize())
	assert.Equal(t, "N/A", doc.FormatSize("N/A"))
}

func TestDocument_UnmarshalJSON_NumericStatus(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","status":1}`), &doc))
	assert.Equal(t, DocumentStatus("1"), doc.Status)
	assert.False(t, doc.Status.IsKnown())
}

func TestDocument_MarshalJSON_KeepsServerFields(t *testing.T) {
	input := `{"id":"d1","name":"报告.pdf","chunk_count":2,"status":"RUNNING","size":0,"run":"RUNNING","token_count":120}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(input), &doc))

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}

func TestDocument_MarshalJSON_UnescapesServerStrings(t *testing.T) {
	input := `{"id":"d1","name":"\u5e74\u5ea6\u62a5\u544a \u003cv2\u003e \u0026 notes.pdf","chunk_count":3,"size":1500,"score":1.5e3,"meta":{"tags":["\u00e9t\u00e9",null,true]}}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(input), &doc))
	assert.Equal(t, "年度报告 <v2> & notes.pdf", doc.Name)

	out, err := doc.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"id":"d1","name":"年度报告 <v2> & notes.pdf","chunk_count":3,"size":1500,"score":1.5e3,"meta":{"tags":["été",null,true]}}`, string(out))
}

func TestDocument_MarshalJSON_WithoutServerRecord(t *testing.T) {
	doc := Document{ID: "d2", Name: "c.md", ChunkCount: 1, Status: DocumentStatusFail, Size: 10}

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"document_id":"d2","name":"c.md","chunk_count":1,"status":"FAIL","size":10}`, string(out))
}

func TestKnowledgeBase_NameContains(t *testing.T) {
	kb := KnowledgeBase{Name: "Alpha Base"}

	assert.True(t, kb.NameContains("alpha"))
	assert.True(t, kb.NameContains("HA B"))
	assert.False(t, kb.NameContains("beta"))
}
