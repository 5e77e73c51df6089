package ui

import (
	"html/template"
	"net/http"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// pageData is the common payload for the screen templates.
type pageData struct {
	Title    string
	Active   string
	Filename string
}

func (a *App) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	state := a.currentSession(w, r)
	a.renderTemplate(w, "history.html", pageData{
		Title:    "Historical Effect Analysis",
		Active:   "history",
		Filename: state.Filename,
	})
}

func (a *App) handleSimulationPage(w http.ResponseWriter, r *http.Request) {
	state := a.currentSession(w, r)
	a.renderTemplate(w, "simulation.html", pageData{
		Title:    "Future Spend Simulation",
		Active:   "simulation",
		Filename: state.Filename,
	})
}

func (a *App) handleOptimizationPage(w http.ResponseWriter, r *http.Request) {
	state := a.currentSession(w, r)
	a.renderTemplate(w, "optimization.html", pageData{
		Title:    "Optimal Allocation",
		Active:   "optimization",
		Filename: state.Filename,
	})
}

// helpPageData adds the rendered markdown body.
type helpPageData struct {
	pageData
	Body template.HTML
}

func (a *App) handleHelpPage(w http.ResponseWriter, r *http.Request) {
	a.currentSession(w, r)

	source, err := embeddedFiles.ReadFile("templates/help.md")
	if err != nil {
		a.logger.Error("[UI] help source missing: %v", err)
		http.Error(w, "help unavailable", http.StatusInternalServerError)
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	body := markdown.ToHTML(source, p, renderer)

	a.renderTemplate(w, "help.html", helpPageData{
		pageData: pageData{Title: "Data Requirements", Active: "help"},
		Body:     template.HTML(body),
	})
}
