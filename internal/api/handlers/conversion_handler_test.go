package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	middleware "github.com/markdave123-py/pdfcsv/internal/api/middlewares"
	objectclient "github.com/markdave123-py/pdfcsv/internal/core/object-client"
	"github.com/markdave123-py/pdfcsv/internal/models"
	"github.com/markdave123-py/pdfcsv/internal/services"
)

func TestConversionHandler(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	key := "conversions/s1/c1/report_converted.csv"
	objs := memObjects{key: []byte("a,b\n1,2")}
	require.NoError(t, db.CreateConversion(ctx, &models.Conversion{
		ID: "c1", UserID: "u1", FileName: "report.pdf", Status: models.StatusSuccess,
		CSVURL: objectclient.ObjectURL("archive", "us-east-2", key),
	}))
	require.NoError(t, db.CreateConversion(ctx, &models.Conversion{ID: "c2", UserID: "u1", FileName: "bad.pdf", Status: models.StatusError}))
	require.NoError(t, db.CreateConversion(ctx, &models.Conversion{ID: "c3", UserID: "u2", FileName: "theirs.pdf", Status: models.StatusSuccess}))

	h := NewConversionHandler(services.NewConversionService(db, objs, "archive"), discardLogger())
	r := chi.NewRouter()
	r.Get("/api/conversions", h.ListConversions)
	r.Get("/api/conversions/{id}/download", h.DownloadConversion)

	get := func(path, user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), user))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/api/conversions", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Conversion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	assert.Equal(t, http.StatusBadRequest, get("/api/conversions?limit=abc", "u1").Code)

	rec = get("/api/conversions/c1/download", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a,b\n1,2", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report_converted.csv")

	assert.Equal(t, http.StatusConflict, get("/api/conversions/c2/download", "u1").Code)
	assert.Equal(t, http.StatusNotFound, get("/api/conversions/c3/download", "u1").Code)
	assert.Equal(t, http.StatusNotFound, get("/api/conversions/missing/download", "u1").Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
