package election

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testLettersYAML = `templates:
  - name: invitation
    subject: Your election code
    body: |-
      Dear {{.FullName}},

      Your election code is {{.ElectionCode}}.
  - name: reminder
    subject: Please vote
    body: "{{.FirstName}}{{if .LastName}} {{.LastName}}{{end}}, the election closes soon."
`

func writeLetters(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "letters.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write letters file: %v", err)
	}
	return path
}

func TestLoadLetterTemplates(t *testing.T) {
	templates, err := LoadLetterTemplates(writeLetters(t, testLettersYAML))
	if err != nil {
		t.Fatalf("LoadLetterTemplates() error = %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("templates = %d, want 2", len(templates))
	}
	if templates["invitation"].Subject != "Your election code" {
		t.Fatalf("invitation subject = %q", templates["invitation"].Subject)
	}
}

func TestLoadLetterTemplatesRejectsUnnamed(t *testing.T) {
	path := writeLetters(t, "templates:\n  - subject: Oops\n    body: no name\n")
	if _, err := LoadLetterTemplates(path); err == nil {
		t.Fatal("templates without names should be rejected")
	}
}

func TestRenderLetter(t *testing.T) {
	templates, err := LoadLetterTemplates(writeLetters(t, testLettersYAML))
	if err != nil {
		t.Fatalf("LoadLetterTemplates() error = %v", err)
	}

	voter := Voter{FirstName: "Jane", LastName: "Doe", ElectionCode: "Ab3dEf7hIj"}
	body, err := RenderLetter(templates["invitation"], voter)
	if err != nil {
		t.Fatalf("RenderLetter() error = %v", err)
	}
	if !strings.Contains(body, "Dear Jane Doe,") {
		t.Fatalf("body missing salutation: %q", body)
	}
	if !strings.Contains(body, "Ab3dEf7hIj") {
		t.Fatalf("body missing election code: %q", body)
	}

	// Single-name voter exercises the conditional last-name block.
	body, err = RenderLetter(templates["reminder"], Voter{FirstName: "Cher"})
	if err != nil {
		t.Fatalf("RenderLetter() error = %v", err)
	}
	if body != "Cher, the election closes soon." {
		t.Fatalf("body = %q", body)
	}
}

func TestRenderLetterBadTemplate(t *testing.T) {
	_, err := RenderLetter(LetterTemplate{Name: "broken", Body: "{{.FullName"}, Voter{})
	if err == nil {
		t.Fatal("unparsable template should fail")
	}
}
