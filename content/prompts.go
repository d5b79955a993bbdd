package content

import (
	"fmt"
	"strings"

	"skillsprint/core"
)

const lessonSystemPrompt = "You are an expert educational content creator. " +
	"Generate comprehensive, engaging learning content in Markdown format. " +
	"Always include practical examples, clear explanations, and actionable insights."

const quizSystemPrompt = "You are an expert quiz creator. " +
	"Generate educational quiz questions in valid JSON format. " +
	"Each question should test understanding and practical application of concepts."

var typeInstructions = map[core.TaskType]string{
	core.TaskVideo: `Create content as if it's a video lesson transcript. Include:
- Clear introduction explaining what will be covered
- Step-by-step explanations with visual descriptions
- Practical examples and demonstrations
- Key takeaways and next steps
- Use conversational tone as if speaking to the learner`,

	core.TaskArticle: `Create a comprehensive article with:
- Engaging introduction that hooks the reader
- Well-structured sections with clear headings
- In-depth explanations with examples
- Practical applications and use cases
- Code examples where relevant
- Summary and actionable next steps`,

	core.TaskExercise: `Create a hands-on exercise with:
- Clear learning objectives
- Step-by-step instructions
- Practical tasks to complete
- Expected outcomes and solutions
- Tips for troubleshooting
- Extension challenges for further practice`,
}

func lessonPrompt(topic string, typ core.TaskType, skill string, level core.Level) string {
	return fmt.Sprintf(`Create %s-level learning content about %q in the context of %s.

Content Type: %s
%s

Requirements:
- Target audience: %s learners in %s
- Length: Comprehensive but focused (800-1200 words)
- Format: Markdown with proper headings, code blocks, and formatting
- Include practical examples relevant to %s
- Make it engaging and actionable
- Use clear, concise language appropriate for %s level

Topic: %s

Generate the content now:`,
		strings.ToLower(string(level)), topic, skill,
		typ, typeInstructions[typ],
		level, skill, skill, level, topic)
}

func quizPrompt(topic, skill string, level core.Level) string {
	return fmt.Sprintf(`Create a quiz about %q for %s-level learners in %s.

Generate exactly 5 multiple-choice questions in this exact JSON format:
[
  {
    "id": "1",
    "question": "Question text here?",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correct": 0,
    "explanation": "Detailed explanation of why this answer is correct and why others are wrong."
  }
]

Requirements:
- Each question should test understanding of %s concepts
- Questions should be appropriate for %s level in %s
- Include a mix of conceptual and practical questions
- Options should be plausible but only one clearly correct
- Explanations should be educational and help learning
- Use proper JSON formatting with no extra text

Topic focus: %s
Skill context: %s
Level: %s

Generate the JSON array now:`,
		topic, strings.ToLower(string(level)), skill,
		topic, level, skill,
		topic, skill, level)
}
