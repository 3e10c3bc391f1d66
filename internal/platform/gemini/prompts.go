package gemini

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/snapsolve/snapsolve/internal/domain"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// quizPromptData represents the data passed to the quiz prompt template
type quizPromptData struct {
	Subject string
	Count   int
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", name, err)
	}
	return buf.String(), nil
}

func quizPrompt(subject string, count int) (string, error) {
	return render("quiz.tmpl", quizPromptData{Subject: subject, Count: count})
}

func solvePrompt() (string, error) {
	return render("solve.tmpl", nil)
}

func similarPrompt(base domain.Solution) (string, error) {
	return render("similar.tmpl", base)
}
