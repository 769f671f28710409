package election

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// LetterTemplate is one letter definition from the templates file. The body
// is a text/template with access to FullName, FirstName, LastName, and
// ElectionCode; an `{{if .LastName}}` block renders only for voters with a
// last name on record.
type LetterTemplate struct {
	Name    string `yaml:"name"`
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

type letterFile struct {
	Templates []LetterTemplate `yaml:"templates"`
}

// LoadLetterTemplates reads the YAML templates file, keyed by template name.
func LoadLetterTemplates(path string) (map[string]LetterTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read letter templates: %w", err)
	}

	var file letterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse letter templates: %w", err)
	}

	out := make(map[string]LetterTemplate, len(file.Templates))
	for _, t := range file.Templates {
		if t.Name == "" {
			return nil, fmt.Errorf("letter template without a name")
		}
		out[t.Name] = t
	}
	return out, nil
}

// RenderLetter substitutes a voter's fields into the template body. Pure:
// letters never touch voting state.
func RenderLetter(t LetterTemplate, v Voter) (string, error) {
	tmpl, err := template.New(t.Name).Parse(t.Body)
	if err != nil {
		return "", fmt.Errorf("parse letter %q: %w", t.Name, err)
	}

	data := struct {
		FullName     string
		FirstName    string
		LastName     string
		ElectionCode string
	}{
		FullName:     v.FullName(),
		FirstName:    v.FirstName,
		LastName:     v.LastName,
		ElectionCode: v.ElectionCode,
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render letter %q: %w", t.Name, err)
	}
	return sb.String(), nil
}
