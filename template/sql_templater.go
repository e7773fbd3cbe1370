package template

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/jackc/pgx/v5"
)

// Funcs are available to every SQL template:
//
//	ident   quotes a Postgres identifier
//	literal quotes a string literal
//	lower   lower-cases a string
var Funcs = template.FuncMap{
	"ident":   func(name string) string { return pgx.Identifier{name}.Sanitize() },
	"literal": QuoteLiteral,
	"lower":   strings.ToLower,
}

// ExecuteSqlTemplate renders the template file at path in fsys with params.
func ExecuteSqlTemplate(fsys fs.FS, path string, params any) (string, error) {
	content, err := ReadSqlTemplate(fsys, path)
	if err != nil {
		return "", err
	}
	return Render(path, content, params)
}

// Render parses text as a SQL template and executes it with params.
// Missing keys are errors.
func Render(name, text string, params any) (string, error) {
	tmpl, err := template.New(name).Funcs(Funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

// ReadSqlTemplate reads a SQL template file and returns its contents as a string
func ReadSqlTemplate(fsys fs.FS, path string) (string, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}
	return string(content), nil
}

// QuoteLiteral returns s as a single-quoted SQL string literal.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
