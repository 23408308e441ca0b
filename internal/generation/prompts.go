package generation

import (
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/mexffff/PromptUzman/internal/prompt"
)

const analysisTemplate = `Analyze this prompt idea. Provide a clarity score (0-100), a category, and 3 specific suggestions to make it better.

CRITICAL INSTRUCTION: The suggestions MUST be in Turkish and strictly follow this specific format:
"Daha iyi bir [field_name] için şunu deneyin: [suggestion]"

Example Output Format:
"Daha iyi bir bağlam için şunu deneyin: Hedef kitlenin kim olduğunu belirtin."
"Daha iyi bir ton için şunu deneyin: Profesyonel mi samimi mi olacağını ekleyin."

Idea: %s`

const researchTemplate = `Research this topic to find expert terminology, industry standards, and key performance indicators (KPIs). Summary in Turkish. Topic: %s`

// GenerateInstruction is the system instruction for writing a super prompt.
const GenerateInstruction = `You are an elite AI Prompt Engineer using the CO-STAR framework.
Transform the user's idea into a high-performance prompt for large language models.

FRAMEWORK (CO-STAR):
C (Context): Set a detailed expert persona and background. Use the provided Research Context.
O (Objective): Define the precise goal.
S (Style): Define the writing style (e.g., Professional, Persuasive, Technical).
T (Tone): Define the emotional tone.
A (Audience): Define the target audience.
R (Response): Specify the output format (Markdown, Code, Table, etc.).

RULES:
1. Identify missing details in the user's idea and create placeholder variables like [TARGET_AUDIENCE] or [SPECIFIC_METRIC].
2. Use industry-specific terminology found in the research.
3. The output MUST be in TURKISH (unless the idea is clearly in another language).
4. Provide ONLY the prompt inside a code block for easy copying.`

const generateTemplate = "User Idea: %s\n\nResearch Context: %s"

const refineInstructionTemplate = `You are a master Prompt Engineer. The user is NOT satisfied with the previous prompt generated for their idea.

YOUR TASK:
Generate a completely NEW version of the prompt using a DIFFERENT thinking framework and priority set.

REFINEMENT STRATEGY: %s

Available frameworks to switch to:
- TAG (Task, Action, Goal) -> Best for directness.
- GRADE (Goal, Request, Action, Detail, Examples) -> Best for complexity.
- APE (Action, Purpose, Expectation) -> Best for simplicity.

RULES:
1. Do NOT just edit the old prompt. Rewrite it from scratch.
2. Change the structure, the persona, and the focus based on the Refinement Strategy.
3. Output MUST be in TURKISH.
4. Provide ONLY the new prompt text.`

const refineTemplate = "Original Idea: %s\n\nPrevious Prompt:\n%s\n\nRefinement Instruction: %s"

// ChatInstruction is the system instruction of the assistant chat.
const ChatInstruction = "Sen uzman bir Prompt Mühendisisin. Kullanıcının fikirlerini netleştirmesine, eksikleri bulmasına ve daha iyi promptlar yazmasına yardım et. Kısa ve öz cevaplar ver."

// citationInstruction is appended to the system instruction of web-search
// requests so citations come back as Markdown links.
const citationInstruction = "Cite every web source you used as a Markdown link in the form [title](url)."

// Fallback values substituted when a call fails.
const (
	FallbackCategory   = "Genel"
	FallbackSuggestion = "Analiz servisi şu an yanıt vermiyor."
	GenerateFailed     = "Üzgünüz, bir hata oluştu."
	GenerateEmpty      = "Prompt oluşturulamadı."
	RefineFailed       = "Geliştirme sırasında hata oluştu."
	RefineEmpty        = "Prompt geliştirilemedi."
	ChatFailed         = "Hata oluştu."
)

// FallbackAnalysis is the analysis reported when the analysis call fails.
func FallbackAnalysis() prompt.Analysis {
	return prompt.Analysis{
		Score:       0,
		Category:    FallbackCategory,
		Suggestions: []string{FallbackSuggestion},
	}
}

func analysisPrompt(idea string) string {
	return fmt.Sprintf(analysisTemplate, idea)
}

func researchPrompt(idea string) string {
	return fmt.Sprintf(researchTemplate, idea)
}

func generatePrompt(idea, research string) string {
	return fmt.Sprintf(generateTemplate, idea, research)
}

func refineInstruction(r prompt.Refinement) string {
	return fmt.Sprintf(refineInstructionTemplate, r.Directive())
}

func refinePrompt(idea, previous string, r prompt.Refinement) string {
	return fmt.Sprintf(refineTemplate, idea, previous, r.Directive())
}

// analysisSchema is built per request; the definition is mutated when marshaled.
func analysisSchema() *Schema {
	return &Schema{
		Name: "idea_analysis",
		Definition: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"score":    {Type: jsonschema.Integer, Description: "Clarity score from 0 to 100"},
				"category": {Type: jsonschema.String, Description: "Topic category of the idea"},
				"suggestions": {
					Type:        jsonschema.Array,
					Description: "Exactly three improvement suggestions in Turkish",
					Items:       &jsonschema.Definition{Type: jsonschema.String},
				},
			},
			Required:             []string{"score", "category", "suggestions"},
			AdditionalProperties: false,
		},
	}
}
