package conversion_engine

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/markdave123-py/pdfcsv/internal/models"
)

// Session is the state machine behind one conversion screen.
//
//	IDLE -> PROCESSING -> SUCCESS | ERROR
//	SUCCESS | ERROR -> PROCESSING   (new file)
//	SUCCESS | ERROR | IDLE -> IDLE  (reset)
//
// Fields change only through the transition methods below.
type Session struct {
	mu sync.Mutex

	id    string
	owner string

	status      models.Status
	result      *models.TabularResult
	file        *models.FileMetadata
	errMsg      string
	errSource   Step
	processTime float64
	updatedAt   time.Time
}

func NewSession(id, owner string) *Session {
	return &Session{id: id, owner: owner, status: models.StatusIdle, updatedAt: time.Now()}
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Owner() string { return s.owner }

// State returns a copy of the current state.
func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.SessionState{
		ID:          s.id,
		Owner:       s.owner,
		Status:      s.status,
		Result:      s.result,
		File:        s.file,
		Error:       s.errMsg,
		ErrorSource: string(s.errSource),
		ProcessTime: s.processTime,
		UpdatedAt:   s.updatedAt,
	}
}

// Reset returns the session to IDLE and clears everything it holds.
// It is refused while a conversion is running.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == models.StatusProcessing {
		return ErrBusy
	}
	s.clear()
	s.status = models.StatusIdle
	return nil
}

// begin enters PROCESSING from any resting state.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == models.StatusProcessing {
		return ErrBusy
	}
	s.clear()
	s.status = models.StatusProcessing
	return nil
}

// loaded records the file metadata once the read step is done.
func (s *Session) loaded(meta *models.FileMetadata) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.StatusProcessing {
		return false
	}
	s.file = meta
	s.updatedAt = time.Now()
	return true
}

func (s *Session) succeed(result models.TabularResult, elapsed float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.StatusProcessing {
		return false
	}
	if elapsed < 0 {
		elapsed = 0
	}
	s.status = models.StatusSuccess
	s.result = &result
	s.processTime = elapsed
	s.updatedAt = time.Now()
	return true
}

func (s *Session) fail(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.StatusProcessing {
		return false
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if strings.TrimSpace(msg) == "" {
		msg = GenericErrorMessage
	}

	var se *StepError
	if errors.As(err, &se) {
		s.errSource = se.Step
	}
	s.status = models.StatusError
	s.errMsg = msg
	s.updatedAt = time.Now()
	return true
}

// clear drops result, metadata, error and timing. Caller holds mu.
func (s *Session) clear() {
	s.result = nil
	s.file = nil
	s.errMsg = ""
	s.errSource = ""
	s.processTime = 0
	s.updatedAt = time.Now()
}
