// Package server provides the local review UI: browse generation runs, read
// the developed pieces and platform posts, and manage the idea queue.
package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/contentforge/internal/database"
	"github.com/TobiSchelling/contentforge/internal/models"
	"github.com/TobiSchelling/contentforge/internal/sanitize"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for reviewing generated content.
type Server struct {
	db     *database.DB
	pages  map[string]*template.Template
	router chi.Router
}

// New creates a new Server.
func New(db *database.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"join":     strings.Join,
	}

	// Parse base template first, then clone it per page so each page gets
	// its own {{define "content"}} and {{define "title"}}.
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	pageNames := []string{"index.html", "generation.html", "ideas.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, pages: pages}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	staticSub, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	r.Get("/", s.handleIndex)
	r.Get("/generation/{id}", s.handleGeneration)
	r.Post("/generation/{id}/status", s.handleSetStatus)
	r.Get("/ideas", s.handleIdeas)
	r.Post("/ideas/add", s.handleAddIdea)
	r.Post("/ideas/{id}/delete", s.handleDeleteIdea)

	s.router = r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	gens, err := s.db.ListGenerations(50)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Generations": gens,
	})
}

func (s *Server) handleGeneration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	gen, err := s.db.GetGeneration(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	// Group posts under the piece they were optimized from.
	postsByContent := make(map[string][]models.PlatformPost)
	for _, post := range gen.PlatformPosts {
		postsByContent[post.ContentID] = append(postsByContent[post.ContentID], post)
	}

	s.render(w, "generation.html", map[string]any{
		"Generation":     gen,
		"PostsByContent": postsByContent,
	})
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var status models.ContentStatus
	switch r.FormValue("status") {
	case "approved":
		status = models.StatusApproved
	case "published":
		status = models.StatusPublished
	case "draft":
		status = models.StatusDraft
	default:
		http.Redirect(w, r, "/generation/"+id, http.StatusFound)
		return
	}

	if err := s.db.SetGenerationStatus(id, status); err != nil {
		log.Printf("setting status for %s: %v", id, err)
	}
	http.Redirect(w, r, "/generation/"+id, http.StatusFound)
}

func (s *Server) handleIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := s.db.ListIdeas(r.URL.Query().Get("all") == "1")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	settings, _ := s.db.GetSettings()
	var categories []string
	if settings != nil {
		categories = settings.IdeaCategories
	}

	s.render(w, "ideas.html", map[string]any{
		"Ideas":      ideas,
		"Categories": categories,
	})
}

func (s *Server) handleAddIdea(w http.ResponseWriter, r *http.Request) {
	text, err := sanitize.UserInput(r.FormValue("text"), "idea")
	if err != nil || text == "" {
		log.Printf("rejected idea submission: %v", err)
		http.Redirect(w, r, "/ideas", http.StatusFound)
		return
	}

	category := strings.TrimSpace(r.FormValue("category"))
	if category == "" {
		category = "General"
	}

	idea := models.NewIdea(text, category, "web")
	if err := s.db.InsertIdea(idea); err != nil {
		log.Printf("storing idea: %v", err)
	}
	http.Redirect(w, r, "/ideas", http.StatusFound)
}

func (s *Server) handleDeleteIdea(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteIdea(chi.URLParam(r, "id")); err != nil {
		log.Printf("deleting idea: %v", err)
	}
	http.Redirect(w, r, "/ideas", http.StatusFound)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port, bound to localhost.
func Serve(db *database.DB, port int) error {
	srv, err := New(db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
