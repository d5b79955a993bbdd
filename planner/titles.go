package planner

import "skillsprint/core"

// titlePools holds the static per-(skill, type) title pools. Skills without
// an entry get a synthesized title instead.
var titlePools = map[string]map[core.TaskType][]string{
	"Python": {
		core.TaskVideo: {
			"Python List Comprehensions Deep Dive",
			"Object-Oriented Programming in Python",
			"Python Decorators Explained",
			"Async Programming with Python",
			"Python Data Structures Mastery",
		},
		core.TaskArticle: {
			"Python Best Practices Guide",
			"Memory Management in Python",
			"Python Performance Optimization",
			"Error Handling Strategies",
			"Python Testing Fundamentals",
		},
		core.TaskExercise: {
			"Build a Python Calculator",
			"Create a File Organizer Script",
			"Implement a Simple Web Scraper",
			"Design a Data Processing Pipeline",
			"Build a REST API with Flask",
		},
		core.TaskQuiz: {
			"Python Syntax and Semantics Quiz",
			"Python Libraries Knowledge Test",
			"Object-Oriented Concepts Quiz",
			"Python Error Handling Quiz",
			"Advanced Python Features Test",
		},
	},
	"JavaScript": {
		core.TaskVideo: {
			"Modern JavaScript ES6+ Features",
			"Asynchronous JavaScript Mastery",
			"JavaScript Closures and Scope",
			"DOM Manipulation Techniques",
			"JavaScript Design Patterns",
		},
		core.TaskArticle: {
			"JavaScript Performance Best Practices",
			"Understanding the Event Loop",
			"JavaScript Security Fundamentals",
			"Modern JavaScript Frameworks Overview",
			"JavaScript Testing Strategies",
		},
		core.TaskExercise: {
			"Build a Todo App with Vanilla JS",
			"Create an Interactive Dashboard",
			"Implement a Simple Game",
			"Build a Weather App",
			"Create a Form Validation System",
		},
		core.TaskQuiz: {
			"JavaScript Fundamentals Quiz",
			"Async JavaScript Knowledge Test",
			"DOM Manipulation Quiz",
			"JavaScript ES6+ Features Quiz",
			"JavaScript Debugging Quiz",
		},
	},
	"Data Analysis": {
		core.TaskVideo: {
			"Data Visualization Best Practices",
			"Statistical Analysis Fundamentals",
			"Data Cleaning Techniques",
			"Exploratory Data Analysis",
			"Advanced Analytics Methods",
		},
		core.TaskArticle: {
			"Choosing the Right Chart Type",
			"Data Quality Assessment",
			"Statistical Significance Explained",
			"Data Storytelling Techniques",
			"Analytics Tools Comparison",
		},
		core.TaskExercise: {
			"Analyze Sales Data Trends",
			"Create Interactive Dashboards",
			"Perform Customer Segmentation",
			"Build Predictive Models",
			"Design A/B Test Analysis",
		},
		core.TaskQuiz: {
			"Statistics Fundamentals Quiz",
			"Data Visualization Quiz",
			"Analytics Tools Knowledge Test",
			"Data Interpretation Quiz",
			"Research Methods Quiz",
		},
	},
	"Leadership": {
		core.TaskVideo: {
			"Effective Communication Strategies",
			"Team Building and Motivation",
			"Conflict Resolution Techniques",
			"Strategic Decision Making",
			"Leading Through Change",
		},
		core.TaskArticle: {
			"Leadership Styles and When to Use Them",
			"Building High-Performance Teams",
			"Emotional Intelligence in Leadership",
			"Delegation and Empowerment",
			"Leadership in Remote Teams",
		},
		core.TaskExercise: {
			"Practice Active Listening",
			"Conduct a Team Meeting",
			"Resolve a Workplace Conflict",
			"Create a Team Development Plan",
			"Lead a Change Initiative",
		},
		core.TaskQuiz: {
			"Leadership Principles Quiz",
			"Communication Skills Assessment",
			"Team Management Quiz",
			"Conflict Resolution Quiz",
			"Strategic Thinking Test",
		},
	},
}

// AvailableSkills is the suggested skill catalog shown at onboarding. Free
// text is still accepted; unlisted skills just use synthesized titles.
var AvailableSkills = []string{
	"Python", "JavaScript", "Data Analysis", "Machine Learning",
	"Leadership", "Project Management", "Digital Marketing", "UX Design",
	"React", "Node.js", "SQL", "AWS", "Docker", "Kubernetes",
	"Public Speaking", "Communication", "Strategy", "Finance",
	"Product Management", "DevOps", "Cybersecurity", "Blockchain",
}
