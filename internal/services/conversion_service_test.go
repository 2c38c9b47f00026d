package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	objectclient "github.com/markdave123-py/pdfcsv/internal/core/object-client"
	"github.com/markdave123-py/pdfcsv/internal/models"
)

func TestConversionService_GetChecksOwner(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	require.NoError(t, db.CreateConversion(ctx, &models.Conversion{ID: "c1", UserID: "u1", FileName: "a.pdf"}))
	svc := NewConversionService(db, nil, "")

	conv, err := svc.Get(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", conv.FileName)

	_, err = svc.Get(ctx, "u2", "c1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, "u1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.ListByUser(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestConversionService_DownloadCSV(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	objs := memObjects{"conversions/s/c1/Q3_Report_converted.csv": []byte("a,b\n1,2")}
	csvURL := objectclient.ObjectURL("archive", "us-east-2", "conversions/s/c1/Q3_Report_converted.csv")
	require.NoError(t, db.CreateConversion(ctx, &models.Conversion{ID: "c1", UserID: "u1", FileName: "Q3 Report.PDF", CSVURL: csvURL}))
	require.NoError(t, db.CreateConversion(ctx, &models.Conversion{ID: "c2", UserID: "u1", FileName: "failed.pdf"}))

	svc := NewConversionService(db, objs, "archive")

	data, name, err := svc.DownloadCSV(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2", string(data))
	assert.Equal(t, "Q3 Report_converted.csv", name)

	_, _, err = svc.DownloadCSV(ctx, "u1", "c2")
	assert.ErrorIs(t, err, ErrNotArchived)

	_, _, err = NewConversionService(db, nil, "archive").DownloadCSV(ctx, "u1", "c1")
	assert.ErrorIs(t, err, ErrNotArchived)
}
