package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	analyst "github.com/Protocol-Lattice/go-analyst"
	"github.com/Protocol-Lattice/go-analyst/src/models"
	"github.com/Protocol-Lattice/go-analyst/src/normalize"
	"github.com/stretchr/testify/require"
)

type brokenProvider struct {
	*models.DummyProvider
}

func (brokenProvider) StartChat(context.Context, string) (models.Conversation, error) {
	return nil, errors.New("quota exceeded")
}

func newTestServer(t *testing.T, provider models.Provider, maxBytes int64) *Server {
	t.Helper()
	n := normalize.New(normalize.WithTempDir(t.TempDir()), normalize.WithMaxBytes(maxBytes))
	s, err := analyst.New(analyst.Options{Provider: provider, Normalizer: n})
	require.NoError(t, err)
	return New(s, Options{Port: "0", MaxUploadBytes: maxBytes})
}

func do(t *testing.T, srv *Server, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, name, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "missing data in %v", body)
	return d
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, models.NewDummyProvider(""), 1024)
	code, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])
}

func TestUploadThenSendCarriesAttachmentOnce(t *testing.T) {
	srv := newTestServer(t, models.NewDummyProvider("echo:"), 1024)

	code, body := do(t, srv, uploadRequest(t, "notes.txt", "text/plain", []byte("kilroy was here")))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, data(t, body)["skipped"])
	require.Equal(t, "text/plain", data(t, body)["mime_type"])

	code, body = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "attached", data(t, body)["state"])
	require.Equal(t, "notes.txt", data(t, body)["pending_file"])

	code, body = do(t, srv, jsonRequest(http.MethodPost, "/api/v1/messages", `{"prompt":"explain"}`))
	require.Equal(t, http.StatusOK, code)
	reply := data(t, body)["reply"].(string)
	require.True(t, strings.HasPrefix(reply, "echo: explain"))
	require.Contains(t, reply, "kilroy was here")

	code, body = do(t, srv, jsonRequest(http.MethodPost, "/api/v1/messages", `{"prompt":"more detail"}`))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "echo: more detail", data(t, body)["reply"])

	code, body = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil))
	require.Equal(t, http.StatusOK, code)
	entries, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 4)
	first := entries[0].(map[string]any)
	require.Equal(t, "user", first["role"])
	require.Equal(t, "explain", first["text"])
}

func TestDuplicateUploadIsSkipped(t *testing.T) {
	srv := newTestServer(t, models.NewDummyProvider(""), 1024)

	code, _ := do(t, srv, uploadRequest(t, "notes.txt", "text/plain", []byte("one")))
	require.Equal(t, http.StatusOK, code)

	code, body := do(t, srv, uploadRequest(t, "notes.txt", "text/plain", []byte("two")))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, data(t, body)["skipped"])
}

func TestUploadErrors(t *testing.T) {
	srv := newTestServer(t, models.NewDummyProvider(""), 16)

	code, body := do(t, srv, uploadRequest(t, "tool.exe", "application/octet-stream", []byte("MZ")))
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Equal(t, false, body["success"])

	code, _ = do(t, srv, uploadRequest(t, "big.txt", "text/plain", bytes.Repeat([]byte("x"), 64)))
	require.Equal(t, http.StatusRequestEntityTooLarge, code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", strings.NewReader("nope"))
	req.Header.Set("Content-Type", "text/plain")
	code, _ = do(t, srv, req)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestSendValidation(t *testing.T) {
	srv := newTestServer(t, models.NewDummyProvider(""), 1024)

	code, _ := do(t, srv, jsonRequest(http.MethodPost, "/api/v1/messages", `{}`))
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, srv, jsonRequest(http.MethodPost, "/api/v1/messages", `{"prompt":"   "}`))
	require.Equal(t, http.StatusBadRequest, code)
}

func TestSendRemoteFailureIsBadGateway(t *testing.T) {
	srv := newTestServer(t, brokenProvider{models.NewDummyProvider("")}, 1024)

	code, body := do(t, srv, jsonRequest(http.MethodPost, "/api/v1/messages", `{"prompt":"hello"}`))
	require.Equal(t, http.StatusBadGateway, code)
	require.Contains(t, body["message"], "quota exceeded")
}

func TestResetAndPersona(t *testing.T) {
	srv := newTestServer(t, models.NewDummyProvider(""), 1024)

	do(t, srv, uploadRequest(t, "notes.txt", "text/plain", []byte("abc")))
	do(t, srv, jsonRequest(http.MethodPost, "/api/v1/messages", `{"prompt":"hi"}`))

	code, body := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/v1/session/reset", nil))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "idle", data(t, body)["state"])
	require.EqualValues(t, 0, data(t, body)["entries"])
	require.Equal(t, "analyst", data(t, body)["persona"])

	code, body = do(t, srv, jsonRequest(http.MethodPut, "/api/v1/session/persona", `{"persona":"Timetable"}`))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, data(t, body)["changed"])
	require.Equal(t, "timetable", data(t, body)["persona"])

	code, body = do(t, srv, jsonRequest(http.MethodPut, "/api/v1/session/persona", `{"persona":"timetable"}`))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, data(t, body)["changed"])

	code, _ = do(t, srv, jsonRequest(http.MethodPut, "/api/v1/session/persona", `{"persona":"poet"}`))
	require.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/personas", nil))
	require.Equal(t, http.StatusOK, code)
	list := body["data"].([]any)
	require.Len(t, list, len(analyst.Personas()))
	for _, raw := range list {
		p := raw.(map[string]any)
		require.Equal(t, p["name"] == "timetable", p["active"])
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	srv := newTestServer(t, models.NewDummyProvider(""), 1024)
	code, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, false, body["success"])
}

func TestBodyLimitLeavesRoomForMultipartFraming(t *testing.T) {
	s, err := analyst.New(analyst.Options{Provider: models.NewDummyProvider("")})
	require.NoError(t, err)

	srv := New(s, Options{Port: "0"})
	require.Greater(t, srv.App().Config().BodyLimit, int(normalize.DefaultMaxBytes))

	srv = New(s, Options{Port: "0", MaxUploadBytes: 2048})
	require.Greater(t, srv.App().Config().BodyLimit, 2048)
}

func TestUploadAtDefaultCapReachesNormalizer(t *testing.T) {
	n := normalize.New(normalize.WithTempDir(t.TempDir()))
	s, err := analyst.New(analyst.Options{Provider: models.NewDummyProvider(""), Normalizer: n})
	require.NoError(t, err)
	srv := New(s, Options{Port: "0"})

	big := bytes.Repeat([]byte("x"), int(normalize.DefaultMaxBytes)+1)
	code, body := do(t, srv, uploadRequest(t, "big.txt", "text/plain", big))
	require.Equal(t, http.StatusRequestEntityTooLarge, code)
	require.Contains(t, body["message"], "too_large")
}
