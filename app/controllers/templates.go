package controllers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"
)

// Templates maps a page name to its parsed template set. Every set has a
// "layout" entry point.
type Templates map[string]*template.Template

var pages = map[string][]string{
	"list":    {"layout.html", "pagination.html", "post/list.html"},
	"detail":  {"layout.html", "post/detail.html", "post/comment_form.html"},
	"share":   {"layout.html", "post/share.html"},
	"comment": {"layout.html", "post/comment.html", "post/comment_form.html"},
}

// LoadTemplates parses every page from fsys.
func LoadTemplates(fsys fs.FS) (Templates, error) {
	templates := make(Templates, len(pages))
	for name, files := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		templates[name] = t
	}
	return templates, nil
}

// Render executes page into a buffer and writes it out only on success.
func (t Templates) Render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := t[page]
	if !ok {
		return fmt.Errorf("unknown template %q", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"date":          formatDate,
	"linebreaks":    linebreaks,
	"truncatewords": truncateWords,
	"inc":           func(i int) int { return i + 1 },
}

func formatDate(t time.Time) string {
	return t.UTC().Format("Jan. 2, 2006, 15:04")
}

// truncateWords keeps the first n words of s and marks the cut with an
// ellipsis.
func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " …"
}

// linebreaks turns blank-line separated text into paragraphs and single
// newlines into <br>. The text is escaped first.
func linebreaks(s string) template.HTML {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\r\n", "\n")
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, para := range strings.Split(s, "\n\n") {
		lines := strings.Split(strings.TrimSpace(para), "\n")
		for i, line := range lines {
			lines[i] = template.HTMLEscapeString(line)
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>\n")
	}
	return template.HTML(b.String())
}
