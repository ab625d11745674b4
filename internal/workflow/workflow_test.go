package workflow

import (
	"strings"
	"testing"

	"github.com/automate-gpt/go-workflow-backend/internal/domain"
)

func TestRegistryIDsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for _, tpl := range Templates() {
		if _, dup := seen[tpl.ID]; dup {
			t.Fatalf("duplicate template id %q", tpl.ID)
		}
		seen[tpl.ID] = struct{}{}
	}
}

func TestRegistryOrderAndDefault(t *testing.T) {
	ts := Templates()
	if len(ts) != 5 {
		t.Fatalf("expected 5 templates, got %d", len(ts))
	}
	if ts[0].ID != "summarizer" {
		t.Fatalf("first template = %q, want summarizer", ts[0].ID)
	}
	if Default().Title != "PDF/Text Summarizer" {
		t.Fatalf("default title = %q", Default().Title)
	}
}

func TestRegistryPatternsContainExactlyOneMarker(t *testing.T) {
	for _, tpl := range Templates() {
		if n := strings.Count(tpl.PromptPattern, domain.InputMarker); n != 1 {
			t.Errorf("template %q has %d markers, want 1", tpl.ID, n)
		}
	}
}

func TestGetKnownAndUnknown(t *testing.T) {
	got, err := Get("email_writer")
	if err != nil {
		t.Fatalf("Get(email_writer): %v", err)
	}
	if got.Title != "Email Generator" {
		t.Fatalf("title = %q", got.Title)
	}

	if _, err := Get("nope"); err != ErrTemplateNotFound {
		t.Fatalf("Get(nope) err = %v, want ErrTemplateNotFound", err)
	}
}

// Every template, any non-empty input: the compiled prompt contains the
// input verbatim and no marker token survives.
func TestCompileSubstitutesVerbatim(t *testing.T) {
	inputs := []string{
		"The quick brown fox...",
		"line one\nline two",
		`quotes "and" {braces} survive`,
		"☃ unicode ☃",
	}
	for _, tpl := range Templates() {
		for _, in := range inputs {
			got := Compile(tpl, in)
			if !strings.Contains(got, in) {
				t.Errorf("template %q: compiled prompt missing input %q", tpl.ID, in)
			}
			if strings.Contains(got, domain.InputMarker) {
				t.Errorf("template %q: marker survived compilation", tpl.ID)
			}
		}
	}
}

// Compile keeps producing a syntactically valid prompt for empty input;
// rejecting empty input is the orchestrator's job.
func TestCompileEmptyInputStillValid(t *testing.T) {
	tpl, _ := Get("summarizer")
	got := Compile(tpl, "")
	if strings.Contains(got, domain.InputMarker) {
		t.Fatalf("marker survived: %q", got)
	}
	if !strings.HasPrefix(got, "Summarize the following text") {
		t.Fatalf("pattern body lost: %q", got)
	}
}
