// Deterministic local text synthesizer.
//
// The offline provider produces shaped, plausible output without any
// network round trip. It is used as the terminal fallback so that the
// pipeline still completes when no hosted service is reachable or
// configured. It inspects the compiled prompt for workflow cues (summary,
// email, idea, task) and renders a matching skeleton around keywords
// pulled from the input. It never fails.
package provider

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/automate-gpt/go-workflow-backend/internal/domain"
)

const localName = "local"

// Local is the offline Provider. The zero value is usable.
type Local struct{}

// NewLocal returns the deterministic offline provider.
func NewLocal() *Local { return &Local{} }

// Name implements Provider.
func (p *Local) Name() string { return localName }

// Generate implements Provider. It always succeeds; the token count is
// estimated from the output length.
func (p *Local) Generate(_ context.Context, prompt string, _ int) (*domain.GenerationOutcome, error) {
	lower := strings.ToLower(prompt)

	var content string
	switch {
	case strings.Contains(lower, "summarize") || strings.Contains(lower, "summary"):
		content = synthSummary(prompt)
	case strings.Contains(lower, "email") || strings.Contains(lower, "write"):
		content = synthEmail(prompt)
	case strings.Contains(lower, "expand") || strings.Contains(lower, "idea"):
		content = synthIdeaExpansion(prompt)
	case strings.Contains(lower, "task") || strings.Contains(lower, "goal") || strings.Contains(lower, "plan"):
		content = synthTaskList(prompt)
	default:
		content = synthGeneric(prompt)
	}

	return &domain.GenerationOutcome{
		Content:    content,
		TokenCount: EstimateTokens(content),
	}, nil
}

// --- Shaped renderings per workflow cue ---

func synthSummary(prompt string) string {
	body := stripInstruction(prompt, summaryInstrRE)
	return fmt.Sprintf(`# Document Summary

## Key Points:
- **Main Topic**: %s
- **Important Details**: %s

## Executive Summary:
This document outlines important information regarding %s. Key stakeholders should review the recommendations and consider the proposed timeline for optimal results.

## Action Items:
- Review and validate the proposed approach
- Identify required resources and budget allocation
- Schedule follow-up with key stakeholders`,
		mainTopic(body), firstSentences(body, 2), mainTopic(body))
}

func synthEmail(prompt string) string {
	points := bulletLines(prompt)
	var b strings.Builder
	for i, pt := range points {
		fmt.Fprintf(&b, "%d. %s\n", i+1, pt)
	}
	return fmt.Sprintf(`Subject: Follow-up on Our Recent Discussion

Dear [Recipient Name],

I hope this email finds you well. I am writing to follow up on our recent discussion and provide you with the requested information.

%s
Please let me know if you need any additional information or if you would like to schedule a meeting to discuss this further.

Best regards,
[Your Name]`, b.String())
}

func synthIdeaExpansion(prompt string) string {
	idea := firstClause(stripInstruction(prompt, ideaInstrRE), "Innovation and Development Initiative")
	return fmt.Sprintf(`# Expanded Concept: %s

## Overview:
This concept focuses on %s. The initiative aims to create value through strategic implementation, addressing existing challenges while leveraging current opportunities.

## Implementation Strategy:
1. **Research & Planning** - feasibility study and resource assessment
2. **Development** - prototype creation and iterative improvement
3. **Launch** - deployment, promotion, and performance monitoring

## Next Steps:
1. Conduct detailed feasibility analysis
2. Develop a comprehensive plan
3. Assemble the team and assign roles`,
		titleCase(idea), strings.ToLower(idea))
}

func synthTaskList(prompt string) string {
	goal := firstClause(stripInstruction(prompt, taskInstrRE), "Achievement of Strategic Objectives")
	return fmt.Sprintf(`# Action Plan: %s

## Immediate Tasks:
1. **Define Objectives** - outline specific, measurable goals
2. **Resource Assessment** - identify required tools, budget, and people
3. **Timeline Creation** - establish realistic deadlines and milestones

## Short-term Tasks:
4. **Research Phase** - gather relevant information and best practices
5. **Strategy Development** - create a detailed implementation plan

## Long-term Tasks:
6. **Implementation** - execute the main components of the plan
7. **Monitoring & Adjustment** - track progress and adapt as needed`,
		titleCase(goal))
}

func synthGeneric(prompt string) string {
	return fmt.Sprintf(`# Analysis & Response

## Understanding Your Request:
Based on your input, the key components and requirements have been analyzed to provide a structured response.

## Key Insights:
- **Primary Focus**: %s
- **Context**: %s

## Recommendations:
1. Define clear objectives and success criteria
2. Develop sustainable processes with continuous improvement
3. Keep stakeholders aligned through regular communication`,
		mainTopic(prompt), contextNote(prompt))
}

// --- Keyword and shape helpers ---

var (
	summaryInstrRE = regexp.MustCompile(`(?i)summarize the following text[^:]*:|summarize this|please summarize`)
	ideaInstrRE    = regexp.MustCompile(`(?i)expand this idea[^:]*:|expand on|please expand`)
	taskInstrRE    = regexp.MustCompile(`(?i)create a numbered task list[^:]*:|create a task list|make tasks|generate tasks`)

	localWordRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

	localStop = map[string]struct{}{
		"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
		"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "this": {}, "that": {},
		"make": {}, "making": {}, "text": {}, "following": {}, "easy": {}, "understand": {},
	}
)

var titleCaser = cases.Title(language.English)

// titleCase renders s in English title casing.
func titleCase(s string) string { return titleCaser.String(strings.ToLower(s)) }

// stripInstruction removes the workflow's own instruction phrasing so the
// synthesizer works against the user's content, not the template text.
func stripInstruction(prompt string, re *regexp.Regexp) string {
	return strings.TrimSpace(re.ReplaceAllString(prompt, ""))
}

// mainTopic picks up to three significant words (len > 4, non-stopword).
func mainTopic(content string) string {
	var picked []string
	for _, w := range localWordRE.FindAllString(strings.ToLower(content), -1) {
		if len(w) <= 4 {
			continue
		}
		if _, stop := localStop[w]; stop {
			continue
		}
		picked = append(picked, w)
		if len(picked) == 3 {
			break
		}
	}
	if len(picked) == 0 {
		return "General discussion"
	}
	return strings.Join(picked, ", ")
}

// firstSentences returns the first n sentences longer than 20 bytes.
func firstSentences(content string, n int) string {
	var out []string
	for _, s := range regexp.MustCompile(`[.!?]+`).Split(content, -1) {
		s = strings.TrimSpace(s)
		if len(s) > 20 {
			out = append(out, s)
		}
		if len(out) == n {
			break
		}
	}
	if len(out) == 0 {
		return "Key operational details and requirements"
	}
	return strings.Join(out, ". ")
}

// firstClause returns the text before the first period, or def when blank.
func firstClause(s, def string) string {
	s = strings.TrimSpace(strings.SplitN(s, ".", 2)[0])
	if s == "" {
		return def
	}
	return s
}

// bulletLines splits the prompt into non-empty lines, stripping leading
// bullet glyphs. A single-line prompt yields stock follow-up points.
func bulletLines(prompt string) []string {
	var out []string
	for _, ln := range strings.Split(prompt, "\n") {
		ln = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(ln), "•-* "))
		if ln != "" {
			out = append(out, ln)
		}
	}
	if len(out) <= 1 {
		return []string{
			"Follow up on our previous discussion",
			"Provide requested information",
			"Schedule next meeting",
		}
	}
	return out
}

// contextNote sizes the request by prompt length.
func contextNote(prompt string) string {
	switch {
	case len(prompt) < 50:
		return "Brief inquiry requiring a concise explanation"
	case len(prompt) < 200:
		return "Moderate complexity request with specific requirements"
	default:
		return "Comprehensive request requiring detailed analysis"
	}
}
