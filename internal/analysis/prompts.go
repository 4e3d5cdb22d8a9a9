package analysis

import (
	"fmt"

	"osapio-backend/internal/extract"
	"osapio-backend/internal/llm"
)

// MaxPromptContent caps the document text sent to the model, in runes.
const MaxPromptContent = 50000

const documentPrompt = `You are an expert SAP consultant analyzing a document.
Provide a comprehensive analysis including:
1. Document type and content overview
2. Key information extracted
3. SAP-related processes or modules involved
4. Recommendations and next steps
5. Potential integration opportunities

Focus on SAP-relevant insights and actionable recommendations.`

const idocPrompt = `You are an expert SAP consultant analyzing an IDOC (Intermediate Document).
Provide a detailed analysis including:
1. Document type and purpose
2. Key data fields and their meanings
3. Business process context
4. Potential issues or recommendations
5. Integration points and dependencies

Make your response clear and actionable for SAP professionals.`

const tabularPrompt = `You are an expert SAP integration consultant analyzing tabular data exported from or destined for an SAP system.
You receive a structural summary: column names, row counts, sample rows and per-column statistics.
Provide an analysis including:
1. What business object or process the data most likely represents
2. Key columns and how they map to SAP fields or segments
3. Data quality issues (missing values, mixed types, suspicious formats)
4. Recommendations for mapping, cleansing or loading the data
5. Integration points and dependencies

Be concise and actionable for SAP professionals.`

func systemPrompt(k Kind) string {
	switch k {
	case KindIDoc:
		return idocPrompt
	case KindSpreadsheet, KindDelimited:
		return tabularPrompt
	default:
		return documentPrompt
	}
}

func label(k Kind) string {
	switch k {
	case KindIDoc:
		return "SAP IDOC"
	case KindSpreadsheet:
		return "spreadsheet"
	case KindDelimited:
		return "CSV file"
	default:
		return "document"
	}
}

// BuildMessages renders the system and user messages for one upload.
func BuildMessages(k Kind, filename, content string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt(k)},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Please analyze this %s (%s):\n\n%s", label(k), filename, extract.Truncate(content, MaxPromptContent))},
	}
}

func placeholder(filename string, size int64) string {
	return fmt.Sprintf("Analysis placeholder for %s (%d bytes). AI summaries are disabled because no completion API key is configured.", filename, size)
}

func parseFailure(k Kind, filename string, err error) string {
	return fmt.Sprintf("Unable to parse %s file %s: %v", k, filename, err)
}
