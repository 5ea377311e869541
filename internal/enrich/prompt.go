package enrich

import "fmt"

// promptTemplate is the fixed evaluation instruction block. The
// response format it dictates is what ParseResponse understands.
const promptTemplate = `You are a recruiting analyst. Given this JSON applicant profile, do four things:

1. Provide a concise 75-word summary of the candidate.
2. Rate overall candidate quality from 1-10 (higher is better).
3. List any data gaps or inconsistencies you notice.
4. Suggest up to three follow-up questions to clarify gaps.

Applicant Profile:
` + "```json\n%s\n```" + `

Return your response in exactly this format:

Summary: <text>
Score: <integer>
Issues: <comma-separated list or 'None'>
Follow-Ups:
- <question 1>
- <question 2>
- <question 3>

If there are fewer than three follow-up questions, that's fine. Just list what's relevant.
`

// BuildPrompt renders the evaluation prompt for one compressed
// applicant document.
func BuildPrompt(compressedJSON string) string {
	return fmt.Sprintf(promptTemplate, compressedJSON)
}
