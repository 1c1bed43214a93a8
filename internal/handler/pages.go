// Package handler contains the HTTP handlers of the gitstats server.
//
// Handlers parse the request, call a service and write the response. They
// hold no business logic: which numbers a user sees, and when GitHub is
// asked for them, is decided in internal/service.
package handler

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/sakif/gitstats/internal/auth"
	"github.com/sakif/gitstats/internal/model"
)

// UserLookup loads the logged-in user for a page. *service.AuthService
// implements it.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Pages renders the HTML pages.
//
// TEMPLATE SETS:
// Every page is parsed together with base.html into its own set. base.html
// calls {{template "content" .}} and each page defines "content"; parsing
// them into one set would make the last definition win for every page.
type Pages struct {
	sets   map[string]*template.Template
	logger *slog.Logger
}

// pageNames are the page templates under the template directory, besides
// base.html.
var pageNames = []string{"index", "stats", "error"}

// NewPages parses every page template under templateDir.
func NewPages(templateDir string, logger *slog.Logger) (*Pages, error) {
	funcs := template.FuncMap{
		"score": func(f float64) string { return fmt.Sprintf("%.2f", f) },
	}

	sets := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, name+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s template: %w", name, err)
		}
		sets[name] = tmpl
	}
	return &Pages{sets: sets, logger: logger}, nil
}

// PageData is what every page template receives.
type PageData struct {
	Title string
	// User is nil for anonymous visitors.
	User *model.User
	// SignedIn is set by pages that know about a session without loading
	// the user.
	SignedIn bool
	Stats    *model.StatsView
	// Error is set on the error page.
	Error string
}

// render executes the named page into a buffer first, so a template error
// still produces a clean 500 instead of half a page.
func (p *Pages) render(w http.ResponseWriter, status int, name string, data PageData) {
	tmpl, ok := p.sets[name]
	if !ok {
		p.logger.Error("unknown page template", slog.String("template", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		p.logger.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError shows err on the error page with the status statusFor picks.
func (p *Pages) renderError(w http.ResponseWriter, err error) {
	status, _, message := statusFor(err)
	p.render(w, status, "error", PageData{Title: http.StatusText(status), Error: message})
}

// IndexHandler serves the landing page: a login link for anonymous
// visitors, the GitHub profile for logged-in users.
type IndexHandler struct {
	pages  *Pages
	users  UserLookup
	logger *slog.Logger
}

// NewIndexHandler creates an IndexHandler. users may be nil when GitHub
// login is not configured; every visitor is then anonymous.
func NewIndexHandler(pages *Pages, users UserLookup, logger *slog.Logger) *IndexHandler {
	return &IndexHandler{pages: pages, users: users, logger: logger}
}

// HandleIndex serves GET /.
func (h *IndexHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data := PageData{Title: "gitstats"}

	if userID, ok := auth.UserIDFromContext(r.Context()); ok && h.users != nil {
		user, err := h.users.GetUserByID(r.Context(), userID)
		if err != nil {
			// A stale cookie for a deleted user: show the page as anonymous.
			h.logger.Info("index: session user not loaded",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
		} else {
			data.User = user
		}
	}

	h.pages.render(w, http.StatusOK, "index", data)
}
