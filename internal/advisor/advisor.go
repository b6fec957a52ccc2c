package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/petrotools/deckqc/internal/deck"
	"github.com/petrotools/deckqc/internal/knowledge"
)

// planSystemPrompt frames the model as a deck reviewer and pins the
// output shape so the response parses into plan lines.
const planSystemPrompt = `You are a reservoir simulation engineer reviewing an input deck.
Given a list of QC issues, respond with a numbered remediation plan, one action per line.
Keep each action under 120 characters. Do not add commentary before or after the list.`

// askSystemPrompt frames free-form questions about deck QC.
const askSystemPrompt = `You are a reservoir simulation engineer.
Answer questions about simulation input decks concisely, citing the provided context when relevant.`

// ErrNoLLM is returned by Ask when no LLM client is configured.
var ErrNoLLM = errors.New("advisor: no llm client configured")

// Retriever recalls knowledge documents relevant to a query.
// *knowledge.Store satisfies this.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]knowledge.Document, error)
}

// Advisor produces remediation plans and answers deck questions.
// With no LLM client it degrades to the deterministic heuristic planner.
type Advisor struct {
	client    LLMClient
	retriever Retriever
	logger    *slog.Logger
}

// AdvisorOption configures an Advisor.
type AdvisorOption func(*Advisor)

// WithLLMClient enables LLM-backed planning and questions.
func WithLLMClient(client LLMClient) AdvisorOption {
	return func(a *Advisor) {
		a.client = client
	}
}

// WithRetriever enables knowledge grounding for questions.
func WithRetriever(retriever Retriever) AdvisorOption {
	return func(a *Advisor) {
		a.retriever = retriever
	}
}

// WithAdvisorLogger sets a custom logger.
func WithAdvisorLogger(logger *slog.Logger) AdvisorOption {
	return func(a *Advisor) {
		a.logger = logger
	}
}

// New creates an Advisor.
func New(opts ...AdvisorOption) *Advisor {
	a := &Advisor{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Plan returns an ordered remediation plan and a source label
// ("heuristic" or "llm"). When an LLM client is configured the heuristic
// plan is offered to the model for refinement; any LLM failure falls
// back to the heuristic so Plan never errors on degraded connectivity.
func (a *Advisor) Plan(ctx context.Context, issues []string, sections *deck.Sections) ([]string, string, error) {
	heuristic := BuildPlan(issues, sections)

	if a.client == nil || len(issues) == 0 {
		return heuristic, "heuristic", nil
	}

	var sb strings.Builder
	sb.WriteString("QC issues:\n")
	for i, issue := range issues {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, issue)
	}
	sb.WriteString("\nDraft plan:\n")
	for i, action := range heuristic {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, action)
	}
	sb.WriteString("\nRefine the draft plan for this deck.")

	resp, err := a.client.Complete(ctx, Prompt{
		System: planSystemPrompt,
		User:   sb.String(),
	})
	if err != nil {
		a.logger.Warn("llm plan failed, using heuristic", "error", err)
		return heuristic, "heuristic", nil
	}

	plan := parsePlanLines(resp)
	if len(plan) == 0 {
		return heuristic, "heuristic", nil
	}
	return plan, "llm", nil
}

// Ask answers a free-form question, grounding the prompt with recalled
// knowledge documents when a retriever is configured.
func (a *Advisor) Ask(ctx context.Context, question string) (string, error) {
	if a.client == nil {
		return "", ErrNoLLM
	}

	contextText := ""
	if a.retriever != nil {
		docs, err := a.retriever.Search(ctx, question, 3)
		if err != nil {
			a.logger.Warn("knowledge retrieval failed", "error", err)
		}
		var sb strings.Builder
		for _, doc := range docs {
			fmt.Fprintf(&sb, "[%s]\n%s\n\n", doc.Name, doc.Content)
		}
		contextText = sb.String()
	}

	user := fmt.Sprintf("Context:\n%s\nQuestion:\n%s", contextText, question)

	return a.client.Complete(ctx, Prompt{
		System: askSystemPrompt,
		User:   user,
	})
}

// parsePlanLines extracts plan actions from an LLM response.
// Accepts numbered ("1. x"), dashed ("- x"), or bare lines.
func parsePlanLines(resp string) []string {
	var plan []string
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "-")
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)

		// Strip a leading "N." or "N)" marker
		if i := strings.IndexAny(line, ".)"); i > 0 && i <= 3 {
			if _, ok := atoiPrefix(line[:i]); ok {
				line = strings.TrimSpace(line[i+1:])
			}
		}

		if line != "" {
			plan = append(plan, line)
		}
	}
	return plan
}

// atoiPrefix reports whether s is a small positive integer.
func atoiPrefix(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if s == "" {
		return 0, false
	}
	return n, true
}
