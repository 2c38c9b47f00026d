// Package view turns session snapshots into the JSON the client renders.
package view

import (
	"fmt"
	"math"
	"strconv"

	"github.com/markdave123-py/pdfcsv/internal/models"
)

const (
	// PreviewRows is how many data rows the preview table shows.
	PreviewRows = 10
	// EmptyMessage is shown when a successful run found no table.
	EmptyMessage = "No tabular data found in the document."
)

type File struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	SizeLabel string `json:"size_label"`
	MimeType  string `json:"mime_type"`
	PageCount int    `json:"page_count,omitempty"`
}

type Preview struct {
	Headers       []string   `json:"headers"`
	Rows          [][]string `json:"rows"`
	TotalRows     int        `json:"total_rows"`
	RemainingRows int        `json:"remaining_rows"`
	Empty         bool       `json:"empty"`
	Message       string     `json:"message,omitempty"`
}

type Session struct {
	ID               string        `json:"id"`
	Status           models.Status `json:"status"`
	File             *File         `json:"file,omitempty"`
	Preview          *Preview      `json:"preview,omitempty"`
	Error            string        `json:"error,omitempty"`
	ErrorSource      string        `json:"error_source,omitempty"`
	ProcessTime      float64       `json:"process_time"`
	ProcessTimeLabel string        `json:"process_time_label,omitempty"`
	DownloadName     string        `json:"download_name,omitempty"`
}

// FromState builds the session view. downloadName is only reported on success.
func FromState(st models.SessionState, downloadName string) Session {
	v := Session{
		ID:          st.ID,
		Status:      st.Status,
		Error:       st.Error,
		ErrorSource: st.ErrorSource,
		ProcessTime: st.ProcessTime,
	}
	if st.File != nil {
		v.File = &File{
			Name:      st.File.Name,
			Size:      st.File.Size,
			SizeLabel: FormatFileSize(st.File.Size),
			MimeType:  st.File.MimeType,
			PageCount: st.File.PageCount,
		}
	}
	if st.Status == models.StatusSuccess && st.Result != nil {
		p := NewPreview(*st.Result)
		v.Preview = &p
		v.ProcessTimeLabel = FormatSeconds(st.ProcessTime)
		v.DownloadName = downloadName
	}
	return v
}

// NewPreview keeps the first PreviewRows rows; the rest are only counted.
func NewPreview(r models.TabularResult) Preview {
	headers := r.Headers
	if headers == nil {
		headers = []string{}
	}
	rows := r.Rows
	if len(rows) > PreviewRows {
		rows = rows[:PreviewRows]
	}
	if rows == nil {
		rows = [][]string{}
	}

	p := Preview{
		Headers:       headers,
		Rows:          rows,
		TotalRows:     len(r.Rows),
		RemainingRows: max(0, len(r.Rows)-PreviewRows),
	}
	if len(r.Headers) == 0 && len(r.Rows) == 0 {
		p.Empty = true
		p.Message = EmptyMessage
	}
	return p
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count in base 1024 with at most two
// decimals and no trailing zeros: 0 Bytes, 1.5 KB, 20 MB.
func FormatFileSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	v, i := float64(n), 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + " " + sizeUnits[i]
}

// FormatSeconds renders a duration in seconds with two decimals.
func FormatSeconds(s float64) string {
	return fmt.Sprintf("%.2fs", s)
}
