package models

import (
	"time"
)

// Status is the processing state of a conversion session.
type Status string

const (
	StatusIdle       Status = "IDLE"
	StatusProcessing Status = "PROCESSING"
	StatusSuccess    Status = "SUCCESS"
	StatusError      Status = "ERROR"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FileMetadata describes one selected PDF. Content is base64 without a data-URL prefix.
type FileMetadata struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mime_type"`
	PageCount int    `json:"page_count,omitempty"`
	Content   string `json:"-"`
}

// TabularResult is the tokenized model output. Rows are ragged: a row's cell
// count is never reconciled against the header count.
type TabularResult struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	RawText string     `json:"raw_text"`
}

// SessionState is a point-in-time copy of a conversion session.
type SessionState struct {
	ID          string         `json:"id"`
	Owner       string         `json:"-"`
	Status      Status         `json:"status"`
	Result      *TabularResult `json:"result,omitempty"`
	File        *FileMetadata  `json:"file,omitempty"`
	Error       string         `json:"error,omitempty"`
	ErrorSource string         `json:"error_source,omitempty"`
	ProcessTime float64        `json:"process_time"` // seconds spent in the remote call
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Conversion is one finished run, kept as history.
type Conversion struct {
	ID           string    `db:"id" json:"id"`
	SessionID    string    `db:"session_id" json:"session_id"`
	UserID       string    `db:"user_id" json:"user_id,omitempty"`
	FileName     string    `db:"file_name" json:"file_name"`
	FileSize     int64     `db:"file_size" json:"file_size"`
	PageCount    int       `db:"page_count" json:"page_count"`
	Status       Status    `db:"status" json:"status"` // SUCCESS | ERROR
	RowCount     int       `db:"row_count" json:"row_count"`
	ProcessTime  float64   `db:"process_time" json:"process_time"`
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
	ErrorSource  string    `db:"error_source" json:"error_source,omitempty"`
	PDFURL       string    `db:"pdf_url" json:"pdf_url,omitempty"`
	CSVURL       string    `db:"csv_url" json:"csv_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
