// Package prompt holds the prompt templates sent to the LLM providers.
// The wording encodes the linguistic framing of the experiments
// (Equivalence Constraint Theory, Matrix Language Frame model) and is kept
// stable so that generated datasets remain comparable across runs.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Mask is the placeholder token inserted at every switch point.
const Mask = "#######"

// MaskFields parameterizes the switch-point identification prompts
type MaskFields struct {
	Text           string
	TargetLanguage string
}

// FillFields parameterizes the single-language fill prompts
type FillFields struct {
	PlaceholderText string
	TargetText      string
	TargetLanguage  string
}

// MultiFillFields parameterizes the multi-language fill prompt
type MultiFillFields struct {
	PlaceholderText string
	ParallelSection string
}

const nounMaskPrompt = `
You are an expert linguist and code‑switching analyst. Based on the Equivalence Constraint Theory and the Matrix Language Frame model, identify nouns in the input English sentence that would serve as appropriate code‑switching points.

– Input variable: text (a single English sentence)
– Task: Find every noun (as a free content morpheme) that can be switched under the theories above.
– Transformation: Replace each identified noun in the sentence with "#######".
– Output: Return only the transformed sentence with nouns replaced by "#######".
- The substituted words blend seamlessly into the text, following natural bilingual speech patterns.
- Adjust the target language words as needed (e.g., inflection, gender, number) so that the text remains syntactically correct.
- Ensure that nouns in common expressions are not code-switched.
- Don't return any summary or introduction, just the processed text

[English text]
{{.Text}}
`

const reverseMaskPrompt = `
You are an expert linguist and code‑switching analyst. Based on the Equivalence Constraint Theory and the Matrix Language Frame model, identify nouns in the input {{.TargetLanguage}} sentence that would serve as appropriate code‑switching points.

– Input variable: text (a single {{.TargetLanguage}} sentence)
– Task: Find every noun (as a free content morpheme) that can be switched under the theories above.
– Transformation: Replace each identified noun in the sentence with "#######".
– Output: Return only the transformed sentence with nouns replaced by "#######".
- The substituted words blend seamlessly into the text, following natural bilingual speech patterns.
- Adjust the English words as needed so that the text remains syntactically correct when inserted later.
- Ensure that nouns in common expressions are not code-switched.
- Don't return any summary or introduction, just the processed text

[{{.TargetLanguage}} text]
{{.Text}}
`

const extremeMaskPrompt = `
You are an expert linguist and code-switching analyst. Based on the Equivalence Constraint Theory, identify nouns in the input English sentence that would serve as appropriate code-switching points.

– Input variable: text (a single English sentence)
– Task: Find every noun (as a free content morpheme) that can be switched under the theories above.
– Transformation: Replace each identified noun in the sentence with "#######".
– Output: Return only the transformed sentence with nouns replaced by "#######".
- Do not include any summary or extra commentary.

[English text]
{{.Text}}
`

const fillPrompt = `
You will be given a pair of parallel texts in English and {{.TargetLanguage}}.

Your goal is to produce a code-switched version of the English text by replacing each of the hashtag-sequences (#######) in the English text with their {{.TargetLanguage}} counterparts from the {{.TargetLanguage}} text, ensuring that:
- The substituted words blend seamlessly into the text, following natural bilingual speech patterns.
- The text should be grounded with the principles of the Equivalence Constraint Theory and the Matrix Language Frame model.
- Adjust the target language words as needed (e.g., inflection, gender, number) so that the text remains syntactically correct.
- The original meaning and flow of the text are maintained.
- All the hashtag-sequences (#######) have to be replaced with text from the {{.TargetLanguage}} text.
- Use only the words from the {{.TargetLanguage}} text.
- Return only the code-switched text, without any additions or explanations.

[English text with placeholders]
{{.PlaceholderText}}

[{{.TargetLanguage}} text]
{{.TargetText}}

[Code-switched English and {{.TargetLanguage}}]
`

const randomFillPrompt = `
You will be given an English sentence with placeholders (#######) and its parallel sentence in {{.TargetLanguage}}.
Replace each placeholder with the corresponding segment from the {{.TargetLanguage}} text, ensuring:
- The inserted text matches the target-language phrasing (inflections, gender, number).
- The final sentence reads naturally as mixed English and {{.TargetLanguage}}.
- Preserve the original sentence order.
Return only the filled sentence, no extra comments.

[English with placeholders]
{{.PlaceholderText}}

[{{.TargetLanguage}} parallel text]
{{.TargetText}}

[Mixed code-switched result]
`

const reverseFillPrompt = `
You will be given parallel texts in {{.TargetLanguage}} and English.

Your goal is to produce a reverse code-switched version of the {{.TargetLanguage}} text by replacing each of the hashtag-sequences (#######) in the {{.TargetLanguage}} placeholder text with their English counterparts from the English text, ensuring that:
- The substituted English words fit naturally into the {{.TargetLanguage}} sentence structure.
- The text should be grounded with the principles of the Equivalence Constraint Theory and the Matrix Language Frame model.
- Inflect English words if needed to maintain grammatical correctness.
- The original meaning and flow of the {{.TargetLanguage}} text are preserved.
- All the hashtag-sequences (#######) have to be replaced with text from the English text.
- Use only the words from the English text.
- Return only the final mixed sentence, without any additions or explanations.

[{{.TargetLanguage}} text with placeholders]
{{.PlaceholderText}}

[English text]
{{.TargetText}}

[Reverse code-switched {{.TargetLanguage}} and English]
`

const multiFillPrompt = `
You are a code-switching specialist. Given an English sentence with placeholder markers (#######) and parallel sentences in multiple target languages, produce a single mixed-language code-switched English sentence by replacing each placeholder with the appropriate word or phrase from one of the target-language sentences.

Guidelines:
- Replace each ####### with text from exactly one of the provided target-language sentences.
- The text should be grounded with the principles of the Equivalence Constraint Theory and the Matrix Language Frame model.
- Distribute replacements as evenly as possible across the set of languages; do not use any language more often than the others.
- Maintain the original meaning and grammatical flow.
- Use the exact form (including inflections) from the parallel text.
- Return only the final code-switched sentence without any additional commentary.

[English text with placeholders]
{{.PlaceholderText}}

{{.ParallelSection}}

[Mixed-language code-switched sentence]
`

var (
	nounMaskTmpl    = template.Must(template.New("nounMask").Parse(nounMaskPrompt))
	reverseMaskTmpl = template.Must(template.New("reverseMask").Parse(reverseMaskPrompt))
	extremeMaskTmpl = template.Must(template.New("extremeMask").Parse(extremeMaskPrompt))
	fillTmpl        = template.Must(template.New("fill").Parse(fillPrompt))
	randomFillTmpl  = template.Must(template.New("randomFill").Parse(randomFillPrompt))
	reverseFillTmpl = template.Must(template.New("reverseFill").Parse(reverseFillPrompt))
	multiFillTmpl   = template.Must(template.New("multiFill").Parse(multiFillPrompt))
)

func render(tmpl *template.Template, data interface{}) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}

// NounMask renders the switch-point identification prompt for an English
// sentence
func NounMask(text string) (string, error) {
	return render(nounMaskTmpl, MaskFields{Text: text})
}

// ReverseMask renders the switch-point identification prompt for a
// target-language sentence (English as the embedded language)
func ReverseMask(text, targetLanguage string) (string, error) {
	return render(reverseMaskTmpl, MaskFields{Text: text, TargetLanguage: targetLanguage})
}

// ExtremeMask renders the Equivalence-Constraint-only identification prompt
// used by multi-language runs
func ExtremeMask(text string) (string, error) {
	return render(extremeMaskTmpl, MaskFields{Text: text})
}

// Fill renders the single-language placeholder replacement prompt
func Fill(placeholderText, targetText, targetLanguage string) (string, error) {
	return render(fillTmpl, FillFields{
		PlaceholderText: placeholderText,
		TargetText:      targetText,
		TargetLanguage:  targetLanguage,
	})
}

// RandomFill renders the fill prompt used after random word masking
func RandomFill(placeholderText, targetText, targetLanguage string) (string, error) {
	return render(randomFillTmpl, FillFields{
		PlaceholderText: placeholderText,
		TargetText:      targetText,
		TargetLanguage:  targetLanguage,
	})
}

// ReverseFill renders the prompt that inserts English words into a masked
// target-language sentence
func ReverseFill(placeholderText, englishText, targetLanguage string) (string, error) {
	return render(reverseFillTmpl, FillFields{
		PlaceholderText: placeholderText,
		TargetText:      englishText,
		TargetLanguage:  targetLanguage,
	})
}

// MultiFill renders the multi-language fill prompt. targetTexts and
// languages must be the same length.
func MultiFill(placeholderText string, targetTexts, languages []string) (string, error) {
	if len(targetTexts) != len(languages) {
		return "", fmt.Errorf("got %d parallel texts for %d languages", len(targetTexts), len(languages))
	}
	sections := make([]string, len(languages))
	for i, lang := range languages {
		sections[i] = fmt.Sprintf("[%s text]\n%s", lang, targetTexts[i])
	}
	return render(multiFillTmpl, MultiFillFields{
		PlaceholderText: placeholderText,
		ParallelSection: strings.Join(sections, "\n"),
	})
}

// CountMasks returns how many placeholder tokens appear in text
func CountMasks(text string) int {
	return strings.Count(text, Mask)
}
