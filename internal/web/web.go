// Package web serves the server-rendered SplitFlow pages. Every button is a
// form post that mutates the visitor's session and redirects back to "/".
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/mmynk/splitflow/internal/auth"
	"github.com/mmynk/splitflow/internal/dashboard"
	"github.com/mmynk/splitflow/internal/models"
	"github.com/mmynk/splitflow/internal/session"
	"github.com/mmynk/splitflow/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// CookieName is the cookie carrying the signed session token.
const CookieName = "splitflow_session"

// Server renders pages for sessions held by a session.Manager.
type Server struct {
	sessions   *session.Manager
	jwtManager *auth.JWTManager
	dashboards *dashboard.Builder
	pages      map[models.View]*template.Template

	// SecureCookie marks the session cookie Secure (HTTPS only).
	SecureCookie bool
}

// New parses the embedded templates and returns a Server.
func New(sessions *session.Manager, jwtManager *auth.JWTManager, dashboards *dashboard.Builder) (*Server, error) {
	pages := make(map[models.View]*template.Template)
	for _, v := range []models.View{models.ViewLanding, models.ViewCreateSplit, models.ViewDashboard} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+string(v)+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", v, err)
		}
		pages[v] = t
	}
	return &Server{
		sessions:   sessions,
		jwtManager: jwtManager,
		dashboards: dashboards,
		pages:      pages,
	}, nil
}

var funcs = template.FuncMap{
	"pct": func(f float64) string {
		return strconv.FormatFloat(f, 'f', -1, 64)
	},
	"short": dashboard.TruncateAddress,
}

// Router returns the page routes.
func (s *Server) Router() *httprouter.Router {
	r := httprouter.New()

	r.GET("/", s.index)
	r.POST("/wallet/connect", s.connectWallet)
	r.POST("/splits/new", s.openCreateSplit)
	r.POST("/splits/back", s.closeCreateSplit)
	r.POST("/form", s.submitForm)
	r.POST("/dashboard/select/:id", s.selectSplit)
	r.POST("/dashboard/tab/:tab", s.selectTab)

	// GET /splits/:id/qr.png -> PNG QR code of the split's contract address
	r.GET("/splits/:id/qr.png", s.splitQR)

	return r
}

// session loads the visitor's session from the cookie, starting a new one
// (and setting the cookie) when the cookie is missing, invalid or expired.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*models.Session, error) {
	if c, err := r.Cookie(CookieName); err == nil {
		claims, err := s.jwtManager.Validate(c.Value)
		if err == nil {
			sess, err := s.sessions.Get(r.Context(), claims.SessionID)
			if err == nil {
				return sess, nil
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
		}
	}

	sess, err := s.sessions.Start(r.Context())
	if err != nil {
		return nil, err
	}
	token, err := s.jwtManager.Generate(sess.ID)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.jwtManager.TokenDuration().Seconds()),
		HttpOnly: true,
		Secure:   s.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

func (s *Server) index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, err := s.session(w, r)
	if err != nil {
		sendError(w, "load session", err)
		return
	}

	data, err := s.pageData(sess)
	if err != nil {
		sendError(w, "build page", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.pages[data.View].ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("Failed to render page", "view", data.View, "error", err)
	}
}

// mutate runs fn against the visitor's session and redirects to "/".
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, where string, fn func(sessionID string) error) {
	sess, err := s.session(w, r)
	if err != nil {
		sendError(w, "load session", err)
		return
	}
	if err := fn(sess.ID); err != nil {
		switch {
		case errors.Is(err, session.ErrSplitNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, session.ErrUnknownTab):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, session.ErrWalletNotConnected), errors.Is(err, session.ErrFormClosed):
			// Stale page; show the current view instead.
			slog.Debug("Ignoring action", "action", where, "session_id", sess.ID, "error", err)
			http.Redirect(w, r, "/", http.StatusSeeOther)
		default:
			sendError(w, where, err)
		}
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) connectWallet(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.mutate(w, r, "connect wallet", func(id string) error {
		_, err := s.sessions.ConnectWallet(r.Context(), id)
		return err
	})
}

func (s *Server) openCreateSplit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.mutate(w, r, "open create split", func(id string) error {
		_, err := s.sessions.OpenCreateSplit(r.Context(), id)
		return err
	})
}

func (s *Server) closeCreateSplit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.mutate(w, r, "close create split", func(id string) error {
		_, err := s.sessions.CloseCreateSplit(r.Context(), id)
		return err
	})
}

func (s *Server) selectSplit(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	s.mutate(w, r, "select split", func(id string) error {
		_, err := s.sessions.SelectSplit(r.Context(), id, p.ByName("id"))
		return err
	})
}

func (s *Server) selectTab(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	s.mutate(w, r, "select tab", func(id string) error {
		_, err := s.sessions.SelectTab(r.Context(), id, models.DashboardTab(p.ByName("tab")))
		return err
	})
}

func (s *Server) splitQR(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id := p.ByName("id")
	if id == "" {
		http.Error(w, "missing split ID", http.StatusBadRequest)
		return
	}
	sess, err := s.session(w, r)
	if err != nil {
		sendError(w, "load session", err)
		return
	}

	var address string
	for _, split := range sess.Splits {
		if split.ID == id {
			address = split.ContractAddress
			break
		}
	}
	if address == "" {
		http.Error(w, "no such split", http.StatusNotFound)
		return
	}

	png, err := GenerateQRCodePNG(address, 256)
	if err != nil {
		sendError(w, "generate QR code", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	// The address of a split never changes.
	w.Header().Set("Cache-Control", "max-age=900, immutable")
	w.Write(png)
}

func sendError(w http.ResponseWriter, where string, err error) {
	slog.Error("Request failed", "where", where, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
