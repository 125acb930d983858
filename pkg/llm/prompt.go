package llm

import "strings"

const systemInstruction = `You are an SQL expert. Convert the user's request into one valid SQL query.
Use only SELECT, never modify data.
Return ONLY the SQL query, without explanations or extra comments.`

// BuildPrompt joins the fixed instruction, the optional schema description
// and the question.
func BuildPrompt(question, schemaDescription string) string {
	var sb strings.Builder
	sb.WriteString(systemInstruction)

	if schemaDescription = strings.TrimSpace(schemaDescription); schemaDescription != "" {
		sb.WriteString("\n\nDatabase schema (table: column (type)):\n")
		sb.WriteString(schemaDescription)
	}

	sb.WriteString("\n\nUser request: ")
	sb.WriteString(strings.TrimSpace(question))
	return sb.String()
}
