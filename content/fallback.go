package content

import (
	"fmt"

	"skillsprint/core"
)

// FallbackLesson returns deterministic Markdown lesson material used when
// generation is unavailable.
func FallbackLesson(topic string, typ core.TaskType, skill string) string {
	return fmt.Sprintf(`# %s: %s

## Overview
This lesson covers %s as it relates to %s.

## Key Learning Objectives
- Understand the fundamental concepts of %s
- Learn practical applications in %s
- Develop hands-on experience
- Apply best practices and techniques

## Core Concepts

### Understanding %s
%s is an important concept in %s that helps you build better solutions and improve your skills.

**Fundamental Principles:**
- Core concept understanding
- Practical application methods
- Best practices and standards
- Common use cases and scenarios

### Practical Applications
Here are some ways you can apply %s in real-world %s projects:

1. **Basic Implementation**
   - Start with simple examples
   - Build understanding gradually
   - Practice with guided exercises

2. **Advanced Techniques**
   - Explore complex scenarios
   - Optimize for performance
   - Handle edge cases effectively

3. **Best Practices**
   - Follow industry standards
   - Write maintainable code
   - Document your work properly

## Key Takeaways
- %s is essential for %s development
- Practice regularly to build proficiency
- Apply concepts to real projects

## Next Steps
1. Practice the concepts learned
2. Explore related topics
3. Apply knowledge to personal projects
4. Seek additional resources for deeper learning`,
		typ, topic,
		topic, skill,
		topic, skill,
		topic, topic, skill,
		topic, skill,
		topic, skill)
}

// FallbackQuestions returns the three built-in questions used when quiz
// generation is unavailable.
func FallbackQuestions(topic, skill string) []core.Question {
	return []core.Question{
		{
			ID:     "1",
			Prompt: fmt.Sprintf("What is a key concept in %s?", topic),
			Options: []string{
				"Understanding the fundamentals",
				"Ignoring best practices",
				"Skipping documentation",
				"Avoiding practice",
			},
			Correct:     0,
			Explanation: fmt.Sprintf("Understanding the fundamentals is crucial for mastering %s in %s.", topic, skill),
		},
		{
			ID:     "2",
			Prompt: fmt.Sprintf("How should you approach learning %s?", topic),
			Options: []string{
				"Rush through without understanding",
				"Study theory and practice regularly",
				"Memorize without application",
				"Skip difficult concepts",
			},
			Correct:     1,
			Explanation: fmt.Sprintf("Combining theoretical study with regular practice is the most effective way to learn %s.", topic),
		},
		{
			ID:     "3",
			Prompt: fmt.Sprintf("What is important when applying %s in %s?", topic, skill),
			Options: []string{
				"Following established best practices",
				"Working without planning",
				"Ignoring error handling",
				"Avoiding code reviews",
			},
			Correct:     0,
			Explanation: fmt.Sprintf("Following established best practices ensures effective and maintainable application of %s in %s.", topic, skill),
		},
	}
}

// padQuestion fills the question list up to the minimum when the model
// returned too few valid entries.
func padQuestion(n int) core.Question {
	return core.Question{
		ID:     fmt.Sprintf("%d", n),
		Prompt: "What is an important concept to remember?",
		Options: []string{
			"Understanding the basics",
			"Ignoring best practices",
			"Skipping practice",
			"Avoiding documentation",
		},
		Correct:     0,
		Explanation: "Understanding the basics is fundamental to mastering any topic.",
	}
}
