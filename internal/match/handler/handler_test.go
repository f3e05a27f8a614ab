package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipmatch-service/internal/match/model"
	"shipmatch-service/internal/match/service"
	"shipmatch-service/internal/store"
)

func newTestService(t *testing.T) (*service.Service, store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return service.New(st, zerolog.Nop()), st
}

func TestMatchHBLMissingParam(t *testing.T) {
	svc, _ := newTestService(t)
	h := MatchHBL(svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/match/hbl", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchHBLNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	h := MatchHBL(svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/match/hbl?hbl=NOPE", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMatchHBLFound(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	require.NoError(t, st.Table(model.TableShipments).Insert(ctx, []store.Row{{
		"hbl_no": "HBL-1", "agent": "ACME", "sheet_name": "June",
		"raw_json": map[string]any{"Vessel": "MAERSK KODA", "Port": "SINGAPORE"},
	}}))
	require.NoError(t, st.Table(model.TableBookings).Insert(ctx, []store.Row{{
		"vessel": "MAERSK KODA", "vessel_clean": "MAERSKKODA", "port": "SINGAPORE",
	}}))

	h := MatchHBL(svc, zerolog.Nop())
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/match/hbl?hbl=HBL-1&agent=ACME&similarity_threshold=75", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var res model.MatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.MatchFound)
	assert.GreaterOrEqual(t, res.SimilarityScore, 75.0)
	require.NotNil(t, res.BookingVessel)
	assert.Equal(t, "MAERSK KODA", *res.BookingVessel)
}

func multipartUpload(t *testing.T, field, filename, content string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadBookings(t *testing.T) {
	svc, _ := newTestService(t)
	h := UploadBookings(svc, zerolog.Nop())

	csv := "Vessel,Port,Booking ETA\nMV Ocean Star,SINGAPORE,03/04/2024\nWan Hai 503,KAOHSIUNG,\n"
	body, ctype := multipartUpload(t, "file", "bookings.csv", csv, nil)

	req := httptest.NewRequest(http.MethodPost, "/bookings/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Inserted int `json:"inserted"`
		Updated  int `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 0, res.Updated)
}

func TestUploadShipmentsRequiresAgent(t *testing.T) {
	svc, _ := newTestService(t)
	h := UploadShipments(svc, zerolog.Nop())

	body, ctype := multipartUpload(t, "file", "shipments.csv", "HBL NO,Sheet\nHBL-1,June\n", nil)
	req := httptest.NewRequest(http.MethodPost, "/shipments/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadShipments(t *testing.T) {
	svc, _ := newTestService(t)
	h := UploadShipments(svc, zerolog.Nop())

	body, ctype := multipartUpload(t, "file", "shipments.csv",
		"HBL NO,Sheet,Vessel\nHBL-1,June,Ocean Star\nHBL-2,June,Wan Hai 503\n",
		map[string]string{"agent": "ACME"})
	req := httptest.NewRequest(http.MethodPost, "/shipments/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Uploaded int `json:"uploaded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Uploaded)
}

func TestUploadShipmentsMissingColumns(t *testing.T) {
	svc, _ := newTestService(t)
	h := UploadShipments(svc, zerolog.Nop())

	body, ctype := multipartUpload(t, "file", "shipments.csv",
		"Container,Vessel\nABCD,Ocean Star\n",
		map[string]string{"agent": "ACME"})
	req := httptest.NewRequest(http.MethodPost, "/shipments/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
