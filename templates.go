package main

import (
	"embed"
	"html/template"
	"net/http"
	"time"
)

//go:embed templates/*
var templateFS embed.FS

var tmpl *template.Template

func initTemplates() {
	funcMap := template.FuncMap{
		// raw renders stored rich-text content; it is author-provided HTML.
		"raw": func(s string) template.HTML { return template.HTML(s) },
		// css passes theme values into style blocks; quoted font stacks
		// would otherwise be rejected by the sanitizer.
		"css": func(s string) template.CSS { return template.CSS(s) },
		"fmtDate": func(t time.Time) string {
			return t.Format("02/01/2006 15:04")
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
	tmpl = template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))
}

func renderTemplate(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		logger.Error("render template", "template", name, "err", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
