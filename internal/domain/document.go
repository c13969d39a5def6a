package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DocumentStatus is the server-side parsing state of a document.
type DocumentStatus string

const (
	DocumentStatusSuccess DocumentStatus = "SUCCESS"
	DocumentStatusRunning DocumentStatus = "RUNNING"
	DocumentStatusUnstart DocumentStatus = "UNSTART"
	DocumentStatusFail    DocumentStatus = "FAIL"
)

// IsKnown reports whether the status is one of the four documented states.
func (s DocumentStatus) IsKnown() bool {
	switch s {
	case DocumentStatusSuccess, DocumentStatusRunning, DocumentStatusUnstart, DocumentStatusFail:
		return true
	}
	return false
}

const bytesPerMB = 1024 * 1024

// Document is a single ingested file inside a knowledge base.
// It keeps the server record so JSON output can reproduce every field.
type Document struct {
	ID         string
	Name       string
	ChunkCount int
	Status     DocumentStatus
	Size       int64

	raw json.RawMessage
}

// SizeMB returns the size in mebibytes.
func (d Document) SizeMB() float64 {
	return float64(d.Size) / bytesPerMB
}

// HasSize reports whether the server reported a non-zero size.
func (d Document) HasSize() bool {
	return d.Size != 0
}

// FormatSize renders the size as "X.XX MB", or fallback when the size is zero.
func (d Document) FormatSize(fallback string) string {
	if !d.HasSize() {
		return fallback
	}
	return fmt.Sprintf("%.2f MB", d.SizeMB())
}

type documentFields struct {
	DocumentID string          `json:"document_id,omitempty"`
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name"`
	ChunkCount int             `json:"chunk_count"`
	Status     json.RawMessage `json:"status,omitempty"`
	Size       int64           `json:"size"`
}

// UnmarshalJSON accepts both "document_id" and "id" as the identifier and
// tolerates a non-string status.
func (d *Document) UnmarshalJSON(data []byte) error {
	var f documentFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	raw, err := unescapeRecord(data)
	if err != nil {
		return err
	}

	*d = Document{
		ID:         f.DocumentID,
		Name:       f.Name,
		ChunkCount: f.ChunkCount,
		Status:     decodeStatus(f.Status),
		Size:       f.Size,
		raw:        raw,
	}
	if d.ID == "" {
		d.ID = f.ID
	}
	return nil
}

// MarshalJSON emits the server record, when there is one, with its fields in server order.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d.raw) > 0 {
		return d.raw, nil
	}
	status, err := json.Marshal(string(d.Status))
	if err != nil {
		return nil, err
	}
	return json.Marshal(documentFields{
		DocumentID: d.ID,
		Name:       d.Name,
		ChunkCount: d.ChunkCount,
		Status:     status,
		Size:       d.Size,
	})
}

func decodeStatus(raw json.RawMessage) DocumentStatus {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return DocumentStatus(s)
	}
	return DocumentStatus(strings.TrimSpace(string(raw)))
}

// unescapeRecord compacts a JSON value and rewrites every string literally, so \uXXXX
// escapes of non-ASCII text and of <>& come out as the characters themselves.
// Key order and number literals are kept as received.
func unescapeRecord(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var buf bytes.Buffer
	if err := copyValue(dec, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func copyValue(dec *json.Decoder, buf *bytes.Buffer) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		return copyComposite(dec, buf, v)
	case string:
		return writeLiteral(buf, v)
	case json.Number:
		buf.WriteString(v.String())
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case nil:
		buf.WriteString("null")
	default:
		return fmt.Errorf("unexpected JSON token %v", tok)
	}
	return nil
}

func copyComposite(dec *json.Decoder, buf *bytes.Buffer, open json.Delim) error {
	isObject := open == '{'
	buf.WriteRune(rune(open))

	for first := true; dec.More(); first = false {
		if !first {
			buf.WriteByte(',')
		}
		if isObject {
			key, err := dec.Token()
			if err != nil {
				return err
			}
			name, ok := key.(string)
			if !ok {
				return fmt.Errorf("unexpected JSON object key %v", key)
			}
			if err := writeLiteral(buf, name); err != nil {
				return err
			}
			buf.WriteByte(':')
		}
		if err := copyValue(dec, buf); err != nil {
			return err
		}
	}

	// closing delimiter
	if _, err := dec.Token(); err != nil {
		return err
	}
	if isObject {
		buf.WriteByte('}')
	} else {
		buf.WriteByte(']')
	}
	return nil
}

func writeLiteral(buf *bytes.Buffer, s string) error {
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(out.Bytes(), []byte("\n")))
	return nil
}
