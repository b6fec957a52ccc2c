package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/petrotools/deckqc/internal/deck"
	"github.com/petrotools/deckqc/internal/knowledge"
)

// stubRetriever returns fixed documents.
type stubRetriever struct {
	docs []knowledge.Document
	err  error

	lastQuery string
}

// Search implements Retriever.
func (s *stubRetriever) Search(_ context.Context, query string, _ int) ([]knowledge.Document, error) {
	s.lastQuery = query
	return s.docs, s.err
}

// TestAdvisorPlanHeuristic tests planning without an LLM.
func TestAdvisorPlanHeuristic(t *testing.T) {
	t.Parallel()

	a := New()

	plan, source, err := a.Plan(context.Background(), []string{"Missing END keyword."}, deck.NewSections())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != "heuristic" {
		t.Errorf("got source %q", source)
	}
	if len(plan) == 0 {
		t.Error("expected a plan")
	}
}

// TestAdvisorPlanLLM tests LLM-refined planning.
func TestAdvisorPlanLLM(t *testing.T) {
	t.Parallel()

	t.Run("uses the LLM response when it parses", func(t *testing.T) {
		t.Parallel()

		mock := &MockClient{
			Response: "1. Append END keyword after the SCHEDULE section.\n2. Re-run the QC check.",
		}
		a := New(WithLLMClient(mock))

		plan, source, err := a.Plan(context.Background(), []string{"Missing END keyword."}, deck.NewSections())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if source != "llm" {
			t.Errorf("got source %q", source)
		}
		if len(plan) != 2 {
			t.Fatalf("expected 2 actions, got %v", plan)
		}
		if plan[0] != "Append END keyword after the SCHEDULE section." {
			t.Errorf("got %q", plan[0])
		}

		// The draft heuristic plan is offered for refinement
		if len(mock.Prompts) != 1 || !strings.Contains(mock.Prompts[0].User, "Draft plan:") {
			t.Error("expected prompt to carry the draft plan")
		}
	})

	t.Run("falls back to heuristic on LLM failure", func(t *testing.T) {
		t.Parallel()

		mock := &MockClient{Err: errors.New("rate limited")}
		a := New(WithLLMClient(mock))

		plan, source, err := a.Plan(context.Background(), []string{"Missing END keyword."}, deck.NewSections())
		if err != nil {
			t.Fatalf("fallback should not error: %v", err)
		}
		if source != "heuristic" {
			t.Errorf("got source %q", source)
		}
		if len(plan) == 0 {
			t.Error("expected heuristic plan")
		}
	})

	t.Run("clean deck skips the LLM", func(t *testing.T) {
		t.Parallel()

		mock := &MockClient{Response: "should not be used"}
		a := New(WithLLMClient(mock))

		plan, source, err := a.Plan(context.Background(), nil, deck.NewSections())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if source != "heuristic" {
			t.Errorf("got source %q", source)
		}
		if len(plan) != 1 || plan[0] != PlanReady {
			t.Errorf("got %v", plan)
		}
		if len(mock.Prompts) != 0 {
			t.Error("expected no LLM calls for a clean deck")
		}
	})
}

// TestAdvisorAsk tests question answering with knowledge grounding.
func TestAdvisorAsk(t *testing.T) {
	t.Parallel()

	t.Run("grounds the prompt with retrieved documents", func(t *testing.T) {
		t.Parallel()

		retriever := &stubRetriever{
			docs: []knowledge.Document{
				{Name: "pvt-guide", Content: "PVTO covers live oil."},
			},
		}
		mock := &MockClient{Response: "PVTO tables describe live oil properties."}

		a := New(WithLLMClient(mock), WithRetriever(retriever))

		answer, err := a.Ask(context.Background(), "What does PVTO cover?")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if answer == "" {
			t.Error("expected an answer")
		}
		if retriever.lastQuery != "What does PVTO cover?" {
			t.Errorf("retriever got query %q", retriever.lastQuery)
		}

		prompt := mock.Prompts[0].User
		if !strings.Contains(prompt, "Context:") || !strings.Contains(prompt, "PVTO covers live oil.") {
			t.Errorf("expected grounded prompt, got:\n%s", prompt)
		}
		if !strings.Contains(prompt, "Question:\nWhat does PVTO cover?") {
			t.Errorf("expected question in prompt, got:\n%s", prompt)
		}
	})

	t.Run("retrieval failure still asks the question", func(t *testing.T) {
		t.Parallel()

		retriever := &stubRetriever{err: errors.New("db locked")}
		mock := &MockClient{Response: "answer"}

		a := New(WithLLMClient(mock), WithRetriever(retriever))

		answer, err := a.Ask(context.Background(), "question")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if answer != "answer" {
			t.Errorf("got %q", answer)
		}
	})

	t.Run("errors without an LLM client", func(t *testing.T) {
		t.Parallel()

		a := New()

		if _, err := a.Ask(context.Background(), "question"); !errors.Is(err, ErrNoLLM) {
			t.Errorf("expected ErrNoLLM, got %v", err)
		}
	})
}

// TestParsePlanLines tests response parsing shapes.
func TestParsePlanLines(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		resp string
		want []string
	}{
		{
			name: "numbered list",
			resp: "1. First action\n2. Second action",
			want: []string{"First action", "Second action"},
		},
		{
			name: "dashed list",
			resp: "- First action\n- Second action",
			want: []string{"First action", "Second action"},
		},
		{
			name: "bare lines with blanks",
			resp: "First action\n\nSecond action\n",
			want: []string{"First action", "Second action"},
		},
		{
			name: "empty response",
			resp: "   \n\n",
			want: nil,
		},
		{
			name: "version-like text is not a list marker",
			resp: "Run v2.1 of the checker",
			want: []string{"Run v2.1 of the checker"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := parsePlanLines(tc.resp)

			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i, line := range tc.want {
				if got[i] != line {
					t.Errorf("line %d: got %q, expected %q", i, got[i], line)
				}
			}
		})
	}
}
