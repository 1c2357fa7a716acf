// Package consultation owns the AI-consultation session lifecycle and
// orchestrates triage, retrieval, generation and report analysis.
package consultation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/backend/internal/domain"
	"github.com/carelink/backend/internal/extraction"
	"github.com/carelink/backend/internal/knowledge"
	"github.com/carelink/backend/internal/llm"
	"github.com/carelink/backend/internal/store"
	"github.com/carelink/backend/internal/triage"
)

const greeting = "Hello! I'm your health assistant. You can describe your symptoms, ask health " +
	"questions, or upload a medical report (PDF, Word, text, or a photo) and I'll help you " +
	"understand it. How can I help today?"

const emergencyNotice = "Your message mentions symptoms that can indicate a medical emergency. " +
	"Please call your local emergency number or go to the nearest emergency department now. " +
	"Do not wait for an online response. If someone is with you, ask them to help you get care " +
	"immediately."

const urgentNotice = "These symptoms should be assessed by a doctor promptly, ideally today. " +
	"If they worsen suddenly, treat it as an emergency."

const systemPrompt = "You are a careful, empathetic medical information assistant. Give clear, " +
	"conservative guidance grounded in the provided context. Recommend professional care when " +
	"appropriate and never diagnose or prescribe. Keep answers concise and practical."

// historyWindow bounds how many recent messages feed the model prompt.
const historyWindow = 10

// Config holds consultation-level tunables.
type Config struct {
	UploadDir      string
	MaxUploadBytes int64
	RetrievalLimit int
}

// Service orchestrates consultations.
type Service struct {
	store     store.Store
	extractor *extraction.Service
	corpus    *knowledge.Store
	reports   *knowledge.DynamicIndex
	gateway   *llm.Gateway
	cfg       Config
	logger    *slog.Logger

	now func() time.Time
}

// NewService wires the consultation orchestrator.
func NewService(
	st store.Store,
	extractor *extraction.Service,
	corpus *knowledge.Store,
	reports *knowledge.DynamicIndex,
	gateway *llm.Gateway,
	cfg Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:     st,
		extractor: extractor,
		corpus:    corpus,
		reports:   reports,
		gateway:   gateway,
		cfg:       cfg,
		logger:    logger.With("component", "consultation"),
		now:       time.Now,
	}
}

// StartResult is the outcome of starting a session.
type StartResult struct {
	SessionID string `json:"session_id"`
	Greeting  string `json:"greeting_text"`
}

// Start creates an active session seeded with the assistant greeting.
func (s *Service) Start(ctx context.Context, ownerID string) (*StartResult, error) {
	now := s.now()
	session := &domain.ChatSession{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Title:   "Consultation " + now.Format("Jan 2 15:04"),
		State:   domain.SessionActive,
		Messages: []domain.Message{{
			Role:      domain.RoleAssistant,
			Kind:      domain.KindText,
			Content:   greeting,
			Timestamp: now,
		}},
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("session started", "session", session.ID, "owner", ownerID)
	return &StartResult{SessionID: session.ID.String(), Greeting: greeting}, nil
}

// SendResult is the outcome of handling one user message.
type SendResult struct {
	ResponseText string             `json:"response_text"`
	Kind         domain.MessageKind `json:"message_kind"`
	IsEmergency  bool               `json:"is_emergency"`
	ContextFound bool               `json:"context_found"`
}

// SendMessage runs the message pipeline: triage first (never gated on
// the network), then retrieval, then generation with fallback. The
// response always ends with the medical disclaimer, exactly once.
func (s *Service) SendMessage(ctx context.Context, sessionID, ownerID, text string) (*SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("message text is required")
	}

	session, err := s.store.GetSession(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, domain.ErrSessionEnded
	}

	severity := triage.Classify(text)
	retrieved := s.retrieve(ctx, sessionID, text)

	var response string
	kind := domain.KindText
	switch severity {
	case triage.Emergency:
		// Deterministic fast path: emergency guidance never waits on the
		// external model.
		kind = domain.KindEmergencyAlert
		response = emergencyNotice

	case triage.Urgent:
		kind = domain.KindSymptomCheck
		response = urgentNotice + "\n\n" + s.generate(ctx, session, text, retrieved)

	default:
		response = s.generate(ctx, session, text, retrieved)
	}

	response = llm.EnsureDisclaimer(response)

	// The kind tag describes the assistant's handling of the turn; the
	// user's own words are always plain text.
	now := s.now()
	session.Messages = append(session.Messages,
		domain.Message{Role: domain.RoleUser, Kind: domain.KindText, Content: text, Timestamp: now},
		domain.Message{Role: domain.RoleAssistant, Kind: kind, Content: response, Timestamp: now},
	)
	session.Touch(now)
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	return &SendResult{
		ResponseText: response,
		Kind:         kind,
		IsEmergency:  severity == triage.Emergency,
		ContextFound: len(retrieved) > 0,
	}, nil
}

// generate asks the gateway for a response and converts any failure
// signal into the deterministic fallback.
func (s *Service) generate(ctx context.Context, session *domain.ChatSession, text string, retrieved []knowledge.Result) string {
	if !s.gateway.Available() {
		return llm.Fallback(text, retrieved)
	}

	prompt := buildPrompt(session, text, retrieved)
	response, err := s.gateway.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		s.logger.Info("model unavailable, using fallback response",
			"session", session.ID, "error", err)
		return llm.Fallback(text, retrieved)
	}
	return response
}

// retrieve merges session report context with the static corpus,
// keeping the overall limit and descending similarity order.
func (s *Service) retrieve(ctx context.Context, sessionID, text string) []knowledge.Result {
	limit := s.cfg.RetrievalLimit

	var merged []knowledge.Result
	if fromReports, err := s.reports.Query(ctx, sessionID, text, limit); err == nil {
		merged = append(merged, fromReports...)
	} else {
		s.logger.Warn("report retrieval failed", "error", err)
	}
	if fromCorpus, err := s.corpus.Query(ctx, text, limit); err == nil {
		merged = append(merged, fromCorpus...)
	} else {
		s.logger.Warn("corpus retrieval failed", "error", err)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// buildPrompt assembles retrieved context and the recent conversation
// window around the new user message.
func buildPrompt(session *domain.ChatSession, text string, retrieved []knowledge.Result) string {
	var b strings.Builder

	if len(retrieved) > 0 {
		b.WriteString("Relevant context:\n")
		for _, r := range retrieved {
			fmt.Fprintf(&b, "- %s: %s\n", r.Topic, r.Content)
		}
		b.WriteString("\n")
	}

	messages := session.Messages
	if len(messages) > historyWindow {
		messages = messages[len(messages)-historyWindow:]
	}
	if len(messages) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, m := range messages {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User message: %s", text)
	return b.String()
}

// UploadResult is the outcome of processing an uploaded report.
type UploadResult struct {
	ReportID            string `json:"report_id"`
	AnalysisText        string `json:"analysis_text"`
	ExtractedTextLength int    `json:"extracted_text_length"`
}

// UploadReport validates, stores and extracts an uploaded file, attaches
// it to the session and indexes genuine text for retrieval. Validation
// failures reject the upload before any state is created.
func (s *Service) UploadReport(ctx context.Context, sessionID, ownerID, filename, mimeType string, size int64, file io.Reader) (*UploadResult, error) {
	session, err := s.store.GetSession(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, domain.ErrSessionEnded
	}

	if err := extraction.ValidateUpload(filename, mimeType, size, s.cfg.MaxUploadBytes); err != nil {
		return nil, err
	}

	reportID := uuid.New()
	storedPath, err := s.saveUpload(reportID, filename, file)
	if err != nil {
		return nil, err
	}

	// The report is attached in pending state and advanced through
	// processing before extraction runs, so concurrent history reads see
	// the real lifecycle instead of only the final status.
	session.Reports = append(session.Reports, domain.UploadedReport{
		ID:         reportID,
		Filename:   filename,
		StoredPath: storedPath,
		Size:       size,
		MimeType:   mimeType,
		Status:     domain.ReportPending,
		UploadedAt: s.now(),
	})
	idx := len(session.Reports) - 1
	if err := s.store.UpdateSession(ctx, session); err != nil {
		_ = os.Remove(storedPath)
		return nil, fmt.Errorf("update session: %w", err)
	}

	session.Reports[idx].Status = domain.ReportProcessing
	if err := s.store.UpdateSession(ctx, session); err != nil {
		_ = os.Remove(storedPath)
		return nil, fmt.Errorf("update session: %w", err)
	}

	result, err := s.extractor.Extract(ctx, storedPath, filename, mimeType)
	if err != nil {
		// Hard I/O failure: record the failed report, clean up, surface.
		session.Reports[idx].Status = domain.ReportFailed
		session.Touch(s.now())
		_ = s.store.UpdateSession(ctx, session)
		_ = os.Remove(storedPath)
		return nil, err
	}

	session.Reports[idx].ExtractedText = result.Text
	session.Reports[idx].Status = domain.ReportCompleted
	if result.Placeholder {
		session.Reports[idx].Status = domain.ReportFailed
	}

	analysis := s.analyzeReport(filename, result)

	now := s.now()
	session.Messages = append(session.Messages, domain.Message{
		Role:      domain.RoleAssistant,
		Kind:      domain.KindFileAnalysis,
		Content:   analysis,
		Timestamp: now,
	})
	session.Touch(now)
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	// Placeholder text explains a failed extraction; indexing it would
	// poison retrieval.
	if !result.Placeholder {
		if err := s.reports.Add(ctx, sessionID, reportID.String(), filename, result.Text); err != nil {
			s.logger.Warn("report indexing failed", "report", reportID, "error", err)
		}
	}

	s.logger.Info("report processed",
		"session", sessionID, "report", reportID,
		"method", result.Method, "chars", len(result.Text))

	return &UploadResult{
		ReportID:            reportID.String(),
		AnalysisText:        analysis,
		ExtractedTextLength: len(result.Text),
	}, nil
}

// saveUpload writes the blob under the upload directory, removing any
// partial file on error.
func (s *Service) saveUpload(reportID uuid.UUID, filename string, file io.Reader) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.cfg.UploadDir, reportID.String()+"-"+filepath.Base(filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, io.LimitReader(file, s.cfg.MaxUploadBytes+1)); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close upload: %w", err)
	}
	return path, nil
}

// analyzeReport builds the assistant's file-analysis message: extraction
// outcome, any recognizable lab values, and an invitation to ask.
func (s *Service) analyzeReport(filename string, result *extraction.Result) string {
	if result.Placeholder {
		return result.Text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I've read %s (%d pages, %d characters of text).", filename, result.Pages, len(result.Text))

	if labs := extraction.ScanLabValues(result.Text); len(labs) > 0 {
		b.WriteString("\n\nValues I recognized:")
		for _, lab := range labs {
			b.WriteString("\n- " + lab)
		}
	}

	b.WriteString("\n\nAsk me anything about this report and I'll explain it in plain language.")
	return b.String()
}

// History returns the full session including messages and reports.
// Valid in either state.
func (s *Service) History(ctx context.Context, sessionID, ownerID string) (*domain.ChatSession, error) {
	return s.store.GetSession(ctx, sessionID, ownerID)
}

// List returns the caller's sessions, most recently active first.
func (s *Service) List(ctx context.Context, ownerID string) ([]*domain.ChatSession, error) {
	return s.store.ListSessions(ctx, ownerID)
}

// End moves an active session to ended. Irreversible through this API;
// history remains readable.
func (s *Service) End(ctx context.Context, sessionID, ownerID string) error {
	session, err := s.store.GetSession(ctx, sessionID, ownerID)
	if err != nil {
		return err
	}
	if !session.Active() {
		return domain.ErrSessionEnded
	}

	session.State = domain.SessionEnded
	session.Touch(s.now())
	return s.store.UpdateSession(ctx, session)
}

// Delete permanently removes a session, its stored uploads and its
// retrieval entries. Valid in either state.
func (s *Service) Delete(ctx context.Context, sessionID, ownerID string) error {
	session, err := s.store.GetSession(ctx, sessionID, ownerID)
	if err != nil {
		return err
	}

	for _, report := range session.Reports {
		if report.StoredPath != "" {
			_ = os.Remove(report.StoredPath)
		}
	}
	s.reports.Drop(sessionID)
	return s.store.DeleteSession(ctx, sessionID, ownerID)
}
