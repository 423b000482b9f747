package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poliq-ai/poliq/internal/domain"
	"github.com/poliq-ai/poliq/internal/telemetry"
)

// Retriever defines the retrieval engine interface
type Retriever interface {
	Retrieve(ctx context.Context, question, corpusHint string, kPerCorpus int) ([]domain.RetrievedRecord, error)
}

// ChatModel defines the interface for answer synthesis
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// SessionRepository defines the session persistence interface
type SessionRepository interface {
	Get(sessionID string) (*domain.Session, error)
	AppendMessage(sessionID, role, content string) error
	SetCorpusHint(sessionID, hint string) error
}

// CorpusCatalog exposes the scoped corpus names known to the registry.
type CorpusCatalog interface {
	ScopedNames() []string
}

// AskInput represents one question against the policy corpora.
type AskInput struct {
	Question      string
	Corpus        string
	SessionID     string
	TopKPerCorpus int
}

// AnswerService runs the full question path: resolve the corpus hint,
// retrieve policy context, synthesize a structured answer, and record
// the turn in the session.
type AnswerService struct {
	retriever Retriever
	chat      ChatModel
	sessions  SessionRepository
	catalog   CorpusCatalog
}

// NewAnswerService creates a new AnswerService instance
func NewAnswerService(retriever Retriever, chat ChatModel, sessions SessionRepository, catalog CorpusCatalog) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		chat:      chat,
		sessions:  sessions,
		catalog:   catalog,
	}
}

// Ask answers a question against the policy corpora.
func (s *AnswerService) Ask(ctx context.Context, input AskInput) (*domain.Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnswerService.Ask", telemetry.SpanAttributes{
		Corpus:    input.Corpus,
		SessionID: input.SessionID,
		Operation: "ask",
	})
	defer span.End()

	if strings.TrimSpace(input.Question) == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if input.SessionID == "" {
		return nil, domain.ErrMissingSessionID
	}
	if input.TopKPerCorpus < 0 {
		return nil, domain.ErrInvalidTopK
	}

	sess, err := s.sessions.Get(input.SessionID)
	if err != nil {
		return nil, err
	}

	hint := s.resolveHint(input, sess)
	if hint != "" {
		if err := s.sessions.SetCorpusHint(input.SessionID, hint); err != nil {
			return nil, err
		}
	}

	records, err := s.retriever.Retrieve(ctx, input.Question, hint, input.TopKPerCorpus)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	prompt, err := buildPrompt(input.Question, hint, records, sess.History)
	if err != nil {
		return nil, err
	}

	raw, err := s.chat.Complete(ctx, prompt)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("answer synthesis failed: %w", err)
	}
	answer := parseModelAnswer(raw)

	// Record the turn. The assistant side stores only the summary to
	// keep the history handed back to the model compact.
	if err := s.sessions.AppendMessage(input.SessionID, domain.MessageRoleUser, input.Question); err != nil {
		return nil, err
	}
	if answer.Summary != "" {
		if err := s.sessions.AppendMessage(input.SessionID, domain.MessageRoleAssistant, answer.Summary); err != nil {
			return nil, err
		}
	}

	return &answer, nil
}

// resolveHint applies the routing cascade: explicit request field, then
// the session's sticky hint, then a substring scan of the question
// against the known scoped corpus names.
func (s *AnswerService) resolveHint(input AskInput, sess *domain.Session) string {
	if input.Corpus != "" {
		return input.Corpus
	}
	if sess.CorpusHint != "" {
		return sess.CorpusHint
	}

	lower := strings.ToLower(input.Question)
	for _, name := range s.catalog.ScopedNames() {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}

const systemInstructions = `You are an assistant that answers user questions strictly based on
given policy documents and general domain knowledge.

You MUST always respond as a JSON object with keys:
  "summary": string            (policy-based answer)
  "steps": string              (policy-based step-wise process)
  "sources": array of objects
      Each object: { "corpus": string, "document_name": string, "snippet": string }
  "cost_saving_tips": string   (general/online info allowed)

Rules:
- "summary" and "steps" MUST use ONLY the provided policy_context text.
  Do NOT invent new rules or numbers.
- If the context is incomplete or does not specify something, clearly say that.
- For "steps", if the policy describes a process, give clear numbered steps
  based ONLY on the document content. If it does not, say that and only
  explain what it does say.
- "sources" must reflect which corpus and which document were used, with
  short snippets that keep the same meaning as the original policy text.
- "cost_saving_tips" may use general knowledge, but MUST clearly say that
  this section is not directly from the policy documents.
- VERY IMPORTANT: Output MUST be a single JSON object only.
  Do NOT write any text before or after the JSON.
  Do NOT wrap the JSON in any formatting.`

// promptPayload is the request data bundled into the prompt.
type promptPayload struct {
	Question       string              `json:"question"`
	CorpusContext  string              `json:"corpus_context"`
	PolicyContext  string              `json:"policy_context"`
	StructuredHint []domain.SourceItem `json:"structured_sources_hint"`
	ChatHistory    string              `json:"chat_history"`
}

func buildPrompt(question, hint string, records []domain.RetrievedRecord, history []domain.Message) (string, error) {
	payload := promptPayload{
		Question:       question,
		CorpusContext:  hint,
		PolicyContext:  BuildContextBlock(records),
		StructuredHint: ProjectSources(records),
		ChatHistory:    historyToText(history),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode prompt payload: %w", err)
	}

	return systemInstructions +
		"\n\nHere is the data for this request as a JSON object:\n" +
		string(data) +
		"\n\nNow produce the answer as a JSON object with the required keys.", nil
}
