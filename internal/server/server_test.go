package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/archive"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
	"github.com/joseph-ayodele/resume-extractor/internal/extract"
	"github.com/joseph-ayodele/resume-extractor/internal/jobs"
	"github.com/joseph-ayodele/resume-extractor/internal/pipeline"
)

const janeReply = `{"Full Name":"Jane Doe","Email":"jane@x.com","ATS Score":70,"Work Experience":[{"Company Name":"Acme","Role":"Engineer","Skills/Technologies":["Go"]}]}`

type fakeExtractor struct{}

// Extract treats the content itself as the document text.
func (fakeExtractor) Extract(_ context.Context, content []byte, mt constants.MediaType) (extract.TextExtractionResult, error) {
	if mt != constants.PDF && mt != constants.DOCX {
		return extract.TextExtractionResult{}, common.NewAppError(common.CodeExtraction, "Unsupported file type.", common.ErrUnsupportedMediaType)
	}
	return extract.TextExtractionResult{Text: string(content), MediaType: mt}, nil
}

type fakeClient struct {
	mu    sync.Mutex
	reply string
}

func (f *fakeClient) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.HasPrefix(prompt, "You are an applicant tracking system.") {
		if strings.Contains(prompt, "matchedKeywords") {
			return `{"score": 77, "matchedKeywords": ["Go"], "missingKeywords": [], "summary": "Good."}`, nil
		}
		return "77", nil
	}
	return f.reply, nil
}

func (f *fakeClient) Model() string { return "fake-model" }

type harness struct {
	srv   *Server
	queue *jobs.Queue
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := &fakeClient{reply: janeReply}
	proc := pipeline.NewProcessor(logger, fakeExtractor{}, client)
	orch := pipeline.NewOrchestrator(proc, archive.NewExpander(archive.Config{}, logger), pipeline.WithLogger(logger))
	q := jobs.NewQueue(orch, logger)
	t.Cleanup(func() { q.Shutdown(context.Background()) })

	srv := New(common.ServerConfig{Addr: ":0", MaxUploadBytes: 1 << 20}, Deps{
		Runner:  orch,
		Queue:   q,
		Text:    proc.Text,
		Matcher: pipeline.NewMatcher(client, logger),
	}, logger)
	return &harness{srv: srv, queue: q}
}

func multipartBody(t *testing.T, filename, contentType string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func buildZip(t *testing.T, files map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, files[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func (h *harness) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "fake-model", body["model"])
}

func TestExtract_SingleFile(t *testing.T) {
	h := newHarness(t)
	body, ct := multipartBody(t, "jane.pdf", constants.MIMEPDF, []byte("Jane Doe resume"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", ct)

	rec := h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res entity.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Records, 1)
	assert.Equal(t, "jane.pdf", res.Records[0].SourceName)
	assert.Empty(t, res.Failures)
}

func TestExtract_EmptyArchiveIs422(t *testing.T) {
	h := newHarness(t)
	blob := buildZip(t, map[string]string{"notes.txt": "x"}, "notes.txt")
	body, ct := multipartBody(t, "batch.zip", constants.MIMEZip, blob, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", ct)

	rec := h.do(t, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var er errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	assert.Contains(t, er.Error, "no supported resume files")
	assert.Equal(t, common.CodeInput, er.Code)
}

func TestExtract_OversizedUploadIs413(t *testing.T) {
	h := newHarness(t)
	h.srv.cfg.MaxUploadBytes = 64
	body, ct := multipartBody(t, "jane.pdf", constants.MIMEPDF, bytes.Repeat([]byte("x"), 4096), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", ct)

	rec := h.do(t, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestExtract_MissingFile(t *testing.T) {
	h := newHarness(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/extract", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := h.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractText(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodPost, "/api/extract/text", strings.NewReader(`{"name":"pasted","text":"Jane Doe, engineer"}`))
	rec := h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res entity.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Records, 1)
	assert.Equal(t, "pasted", res.Records[0].SourceName)

	rec = h.do(t, httptest.NewRequest(http.MethodPost, "/api/extract/text", strings.NewReader(`{"text":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatches_SubmitPollExport(t *testing.T) {
	h := newHarness(t)
	blob := buildZip(t, map[string]string{"a.pdf": "resume a", "b.docx": " "}, "a.pdf", "b.docx")
	body, ct := multipartBody(t, "batch.zip", constants.MIMEZip, blob, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/batches", body)
	req.Header.Set("Content-Type", ct)

	rec := h.do(t, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var submitted map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	id := submitted["id"]
	require.NotEmpty(t, id)

	var job entity.BatchJob
	require.Eventually(t, func() bool {
		rec := h.do(t, httptest.NewRequest(http.MethodGet, "/api/batches/"+id, nil))
		if rec.Code != http.StatusOK {
			return false
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
		return job.Done()
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, constants.StateSuccess, job.State)
	require.NotNil(t, job.Result)
	assert.Len(t, job.Result.Records, 1)
	assert.Contains(t, job.Result.Failures, "b.docx")

	rec = h.do(t, httptest.NewRequest(http.MethodGet, "/api/batches/"+id+"/export?format=csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, constants.MIMECSV, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"a.pdf","Jane Doe"`)

	rec = h.do(t, httptest.NewRequest(http.MethodGet, "/api/batches/"+id+"/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, constants.MIMEXLSX, rec.Header().Get("Content-Type"))

	rec = h.do(t, httptest.NewRequest(http.MethodGet, "/api/batches/"+id+"/export?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatches_NotFoundAndBadID(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/api/batches/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, httptest.NewRequest(http.MethodGet, "/api/batches/7f1c2a52-0d7e-4f7a-9d0e-6b7b8f3b2f10", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchStream(t *testing.T) {
	h := newHarness(t)
	ts := httptest.NewServer(h.srv.Router())
	defer ts.Close()

	id, err := h.queue.Submit(context.Background(), pipeline.Input{Name: "a.pdf", Content: []byte("resume"), DeclaredType: constants.MIMEPDF})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/batches/" + id.String() + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var last entity.BatchJob
	for {
		var snap entity.BatchJob
		if err := conn.ReadJSON(&snap); err != nil {
			break
		}
		last = snap
	}
	assert.Equal(t, constants.StateSuccess, last.State)
	require.NotNil(t, last.Result)
	assert.Len(t, last.Result.Records, 1)
}

func TestATSMatch(t *testing.T) {
	h := newHarness(t)

	body, ct := multipartBody(t, "jane.pdf", constants.MIMEPDF, []byte("Go engineer"), map[string]string{"job_description": "Go developer"})
	req := httptest.NewRequest(http.MethodPost, "/api/ats-match", body)
	req.Header.Set("Content-Type", ct)
	rec := h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"score":77}`, rec.Body.String())

	body, ct = multipartBody(t, "jane.pdf", constants.MIMEPDF, []byte("Go engineer"), map[string]string{"job_description": "Go developer", "detailed": "true"})
	req = httptest.NewRequest(http.MethodPost, "/api/ats-match", body)
	req.Header.Set("Content-Type", ct)
	rec = h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var match entity.ATSMatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))
	assert.Equal(t, 77, match.Score)
	assert.Equal(t, []string{"Go"}, match.MatchedKeywords)

	body, ct = multipartBody(t, "jane.pdf", constants.MIMEPDF, []byte("Go engineer"), nil)
	req = httptest.NewRequest(http.MethodPost, "/api/ats-match", body)
	req.Header.Set("Content-Type", ct)
	assert.Equal(t, http.StatusBadRequest, h.do(t, req).Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&pipeline.RunError{State: constants.StateError, Err: common.ErrEmptyArchive}, http.StatusUnprocessableEntity},
		{common.ErrNotFound, http.StatusNotFound},
		{common.NewAppError(common.CodeInput, "bad", common.ErrInvalidInput), http.StatusBadRequest},
		{common.ErrClientNotInitialized, http.StatusServiceUnavailable},
		{jobs.ErrQueueClosed, http.StatusServiceUnavailable},
		{common.ErrEmptyText, http.StatusUnprocessableEntity},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
