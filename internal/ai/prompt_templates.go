package ai

import (
	"fmt"
)

// PromptTemplates contains the prompt templates sent to the model
var PromptTemplates = struct {
	Summary string
}{
	Summary: `Please summarize the following news article in clear and concise language, using the same language the article is written in, within 3-4 sentences. The summary should capture the main points of the article.

Article:

%s`,
}

// BuildSummaryPrompt interpolates the cleaned article body into the summary template.
func BuildSummaryPrompt(articleText string) string {
	return fmt.Sprintf(PromptTemplates.Summary, articleText)
}
