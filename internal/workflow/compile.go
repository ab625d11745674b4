package workflow

import (
	"strings"

	"github.com/automate-gpt/go-workflow-backend/internal/domain"
)

// Compile substitutes rawInput into the template's prompt pattern at the
// single {input} marker and returns the final prompt string.
//
// The substitution is verbatim: no escaping and no truncation. Length
// limits are a provider or storage concern, and empty-input rejection is
// enforced at the orchestration entry point, not here. Compile is a pure
// function with no observable side effects.
func Compile(tpl domain.WorkflowTemplate, rawInput string) string {
	return strings.Replace(tpl.PromptPattern, domain.InputMarker, rawInput, 1)
}
