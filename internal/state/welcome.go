package state

import "strings"

// ExampleQuestions are suggested in the welcome message.
var ExampleQuestions = []string{
	"Show me the distribution of nodes",
	"What are the most connected entities?",
	"Create a network visualization",
	"Analyze the relationship patterns",
}

// WelcomeMessage is the first bot message after a successful upload.
func WelcomeMessage(filename string) string {
	var b strings.Builder
	b.WriteString("Great! I've successfully loaded your database: ")
	b.WriteString(filename)
	b.WriteString("\n\nI can now help you explore your data. Here are some things you can ask me:\n\n")
	for _, q := range ExampleQuestions {
		b.WriteString("• \"" + q + "\"\n")
	}
	b.WriteString("\nWhat would you like to explore first?")
	return b.String()
}
