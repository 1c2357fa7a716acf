package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the lifecycle state of a consultation session.
type SessionState string

const (
	SessionActive SessionState = "active"
	SessionEnded  SessionState = "ended"
)

// MessageRole identifies who produced a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// MessageKind tags what kind of exchange a message belongs to.
type MessageKind string

const (
	KindText           MessageKind = "text"
	KindFileAnalysis   MessageKind = "file_analysis"
	KindSymptomCheck   MessageKind = "symptom_check"
	KindEmergencyAlert MessageKind = "emergency_alert"
)

// ReportStatus tracks processing of an uploaded report.
type ReportStatus string

const (
	ReportPending    ReportStatus = "pending"
	ReportProcessing ReportStatus = "processing"
	ReportCompleted  ReportStatus = "completed"
	ReportFailed     ReportStatus = "failed"
)

// Message is one turn in a consultation. Immutable once appended;
// ordering is append order.
type Message struct {
	Role      MessageRole `json:"role"`
	Kind      MessageKind `json:"kind"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// UploadedReport is a file attached to exactly one session.
type UploadedReport struct {
	ID            uuid.UUID    `json:"id"`
	Filename      string       `json:"filename"`
	StoredPath    string       `json:"-"`
	Size          int64        `json:"size"`
	MimeType      string       `json:"mime_type"`
	ExtractedText string       `json:"-"`
	Status        ReportStatus `json:"status"`
	UploadedAt    time.Time    `json:"uploaded_at"`
}

// ChatSession is one consultation thread owned by a single caller.
type ChatSession struct {
	ID           uuid.UUID        `json:"id"`
	OwnerID      string           `json:"owner_id"`
	Title        string           `json:"title"`
	State        SessionState     `json:"state"`
	Messages     []Message        `json:"messages"`
	Reports      []UploadedReport `json:"reports"`
	CreatedAt    time.Time        `json:"created_at"`
	LastActivity time.Time        `json:"last_activity"`
}

// Active reports whether the session still accepts mutations.
func (s *ChatSession) Active() bool {
	return s.State == SessionActive
}

// Touch refreshes the last-activity timestamp.
func (s *ChatSession) Touch(now time.Time) {
	s.LastActivity = now
}
