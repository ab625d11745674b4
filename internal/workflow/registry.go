// Package workflow holds the static workflow template registry and the
// prompt compiler. The registry is the single source of truth for which
// workflows exist; clients render their selection UI from Templates() and
// the pipeline resolves the chosen ID through Get().
package workflow

import (
	"errors"

	"github.com/automate-gpt/go-workflow-backend/internal/domain"
)

// ErrTemplateNotFound is returned by Get when the requested workflow ID is
// not in the registry. Since clients only ever offer IDs obtained from
// Templates(), hitting this error indicates a programming mistake rather
// than a user-recoverable condition.
var ErrTemplateNotFound = errors.New("workflow template not found")

// templates is the registry, in display order. The first entry is the
// default selection. IDs are unique by construction; TestRegistryIDsUnique
// guards against regressions.
var templates = []domain.WorkflowTemplate{
	{
		ID:            "summarizer",
		Title:         "PDF/Text Summarizer",
		Description:   "Upload or paste text to get a concise summary with key points",
		Placeholder:   "Paste your text here or upload a file...",
		PromptPattern: "Summarize the following text in 3-5 key points, making it concise and easy to understand:\n\n{input}",
	},
	{
		ID:            "email_writer",
		Title:         "Email Generator",
		Description:   "Turn bullet points into professional, well-structured emails",
		Placeholder:   "Enter bullet points for your email...",
		PromptPattern: "Write a professional email based on these points:\n{input}\n\nMake it polite, concise, and well-structured with proper greeting and closing.",
	},
	{
		ID:            "idea_expander",
		Title:         "Idea Expander",
		Description:   "Transform one-line ideas into detailed, actionable paragraphs",
		Placeholder:   "Enter your idea...",
		PromptPattern: "Expand this idea into a detailed paragraph with actionable insights and practical steps:\n{input}",
	},
	{
		ID:            "task_creator",
		Title:         "Task List Creator",
		Description:   "Convert goals into specific, actionable task lists",
		Placeholder:   "Enter your goal...",
		PromptPattern: "Create a numbered task list to achieve this goal:\n{input}\n\nMake tasks specific, actionable, and ordered by priority.",
	},
	{
		ID:            "custom_prompt",
		Title:         "Custom Prompt",
		Description:   "Use any custom prompt for flexible AI assistance",
		Placeholder:   "Enter your custom prompt...",
		PromptPattern: "{input}",
	},
}

// Templates returns the registry in stable display order. The returned
// slice is a copy; callers may not mutate registry entries.
func Templates() []domain.WorkflowTemplate {
	out := make([]domain.WorkflowTemplate, len(templates))
	copy(out, templates)
	return out
}

// Default returns the registry's default selection (its first entry).
func Default() domain.WorkflowTemplate {
	return templates[0]
}

// Get looks up a template by ID. It returns ErrTemplateNotFound when the
// ID is unknown.
func Get(id string) (domain.WorkflowTemplate, error) {
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.WorkflowTemplate{}, ErrTemplateNotFound
}
