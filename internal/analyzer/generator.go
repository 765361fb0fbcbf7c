package analyzer

import (
	"context"
	"fmt"
	"log"
)

// QuestionCount is the fixed size of every generated question set.
const QuestionCount = 5

// maxPromptTextLength caps how much page text is embedded in the prompt.
// Truncation is silent: the analysis still succeeds on the visible prefix.
const maxPromptTextLength = 8000

// Gateway is the slice of the LLM client the generator needs. A fake
// implementation drops in for tests.
type Gateway interface {
	ChatJSON(ctx context.Context, systemPrompt, userPrompt string) (map[string]interface{}, error)
}

// generation outcomes, tagged so logs and tests can tell an unreachable
// provider apart from a wrong-shaped reply
type generationOutcome int

const (
	outcomeOK generationOutcome = iota
	outcomeUnavailable
	outcomeLLMError
	outcomeBadShape
)

const questionSystemPrompt = `You are a visitor of a website. Here is the text of the site: %s

Reply in JSON format with a list of 5 questions that came up after visiting the site.

Response format:
{
    "questions": [
        "Question 1",
        "Question 2",
        "Question 3",
        "Question 4",
        "Question 5"
    ]
}`

const questionUserPrompt = "Analyze the site text and formulate 5 questions a user might have after studying it."

// Generator produces the five-question set for a page. It never fails
// outward: every internal problem resolves to the fixed fallback set.
type Generator struct {
	gateway Gateway
}

// NewGenerator builds a generator. A nil gateway means the LLM client could
// not be constructed at startup; generation then goes straight to fallback.
func NewGenerator(gateway Gateway) *Generator {
	return &Generator{gateway: gateway}
}

// Generate returns exactly QuestionCount questions for the given page text.
func (g *Generator) Generate(ctx context.Context, text string) []string {
	questions, outcome := g.generate(ctx, text)
	switch outcome {
	case outcomeOK:
		log.Printf("[Generator] Questions generated successfully")
	case outcomeUnavailable:
		log.Printf("[Generator] LLM unavailable, using fallback questions")
	case outcomeLLMError:
		log.Printf("[Generator] LLM call failed, using fallback questions")
	case outcomeBadShape:
		log.Printf("[Generator] LLM returned malformed question set, using fallback questions")
	}
	return questions
}

func (g *Generator) generate(ctx context.Context, text string) ([]string, generationOutcome) {
	if g.gateway == nil {
		return FallbackQuestions(), outcomeUnavailable
	}

	if len(text) > maxPromptTextLength {
		text = text[:maxPromptTextLength] + "..."
	}
	systemPrompt := fmt.Sprintf(questionSystemPrompt, text)

	response, err := g.gateway.ChatJSON(ctx, systemPrompt, questionUserPrompt)
	if err != nil {
		return FallbackQuestions(), outcomeLLMError
	}

	questions, err := validateQuestions(response)
	if err != nil {
		log.Printf("[Generator] WARNING: %v", err)
		return FallbackQuestions(), outcomeBadShape
	}
	return questions, outcomeOK
}

// validateQuestions checks the structured reply for the expected
// {"questions": [>=5 strings]} shape and returns the first five.
func validateQuestions(response map[string]interface{}) ([]string, error) {
	raw, ok := response["questions"]
	if !ok {
		return nil, fmt.Errorf("response has no questions key")
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("questions is not a list")
	}
	if len(list) < QuestionCount {
		return nil, fmt.Errorf("expected at least %d questions, got %d", QuestionCount, len(list))
	}

	questions := make([]string, 0, QuestionCount)
	for _, item := range list[:QuestionCount] {
		q, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("question %d is not a string", len(questions)+1)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// FallbackQuestions returns the fixed question set used whenever LLM-based
// generation cannot be trusted. Order is part of the contract.
func FallbackQuestions() []string {
	return []string{
		"What is the main purpose of this site?",
		"What services or products are offered?",
		"How can the company be contacted?",
		"What payment methods are available?",
		"Are there discounts or special offers?",
	}
}
