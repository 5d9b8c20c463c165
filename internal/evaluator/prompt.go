package evaluator

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the evaluation instructions for one snippet. The
// snippet text and its character count are embedded verbatim, and the model
// is told to answer with only the JSON evaluation object.
func BuildPrompt(text string, characterCount int) string {
	var b strings.Builder

	b.WriteString("Objective:\n")
	b.WriteString("Evaluate the quality of a given text snippet based on four distinct criteria ")
	b.WriteString("(Depth, Expertise, Conciseness, and Logic). The final score is a weighted value ")
	b.WriteString("derived from the average quality score multiplied by the snippet's character count.\n\n")

	b.WriteString("Input Data:\n")
	fmt.Fprintf(&b, "- The text snippet to evaluate is: %s\n", text)
	fmt.Fprintf(&b, "- Its character count is: %d\n\n", characterCount)

	b.WriteString("Evaluation Criteria (score range: 0.0 to 1.0, where 1.0 is highest quality):\n")
	b.WriteString("1. Learning Depth: how detailed, profound, and non-superficial is the information?\n")
	b.WriteString("2. Expertise Level: is the content relevant and useful for a professional engineer, reflecting specialized knowledge?\n")
	b.WriteString("3. Conciseness: is the content efficient and free from unnecessary verbosity or repetition?\n")
	b.WriteString("4. Clarity & Logic: is the text logically structured, easy to read, and coherent?\n\n")

	b.WriteString("Required Output Format:\n")
	b.WriteString("The output MUST be a complete JSON object, strictly following the schema below. ")
	b.WriteString("Fill in each score, compute average_quality_score as the mean of the four scores and ")
	b.WriteString("final_weighted_score as average_quality_score multiplied by the character count, and ")
	b.WriteString("provide a justification for each score (max 100 chars each).\n\n")

	fmt.Fprintf(&b, `{
  "snippet_index": %q,
  "character_count": %d,
  "scores": {
    "learning_depth": 0.0,
    "expertise_level": 0.0,
    "conciseness": 0.0,
    "clarity_logic": 0.0
  },
  "final_results": {
    "average_quality_score": 0.0,
    "final_weighted_score": 0.0
  },
  "justification": {
    "learning_depth": "",
    "expertise_level": "",
    "conciseness": "",
    "clarity_logic": ""
  }
}`, text, characterCount)

	b.WriteString("\n\nEvaluate the provided snippet using the criteria above and output the complete ")
	b.WriteString("JSON object ONLY. Do not add any extra text, comments, or explanations outside of ")
	b.WriteString("the JSON structure.\n")

	return b.String()
}
