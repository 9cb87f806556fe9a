package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ZaguanLabs/glosslive"
	"github.com/ZaguanLabs/glosslive/history"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the translation HTTP API",
		Long: `Run the HTTP API used by the live caption front end.

POST /api/translate takes {text, autoDetect, apiKey, from, to} and answers
{source, translated, from, to, detectedLang}. Session history is exposed
under /api/history and /api/sessions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			return serve(cmd.Context(), a, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: LISTEN_ADDR or :PORT)")
	return cmd
}

func serve(ctx context.Context, a *app, addr string) error {
	s := newServer(a, addr)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infow("server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return a.store.Stop(shutdownCtx)
}

type server struct {
	app    *app
	addr   string
	logger *zap.SugaredLogger
}

func newServer(a *app, addr string) *server {
	return &server{app: a, addr: addr, logger: a.logger.Named("http")}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/network-info", s.handleNetworkInfo)
	mux.HandleFunc("POST /api/translate", s.handleTranslate)

	mux.HandleFunc("GET /api/history", s.handleSearch)
	mux.HandleFunc("GET /api/history/export", s.handleExport)
	mux.HandleFunc("POST /api/history/{sid}/{id}/star", s.handleToggleStar)
	mux.HandleFunc("DELETE /api/history/{sid}/{id}", s.handleDeleteItem)

	mux.HandleFunc("GET /api/sessions", s.handleSessions)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("POST /api/sessions/save", s.handleSaveSession)
	mux.HandleFunc("POST /api/sessions/{id}/load", s.handleLoadSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	return s.withRequestID(s.withLogging(mux))
}

type requestIDKey struct{}

// withRequestID tags every request with an X-Request-ID, reusing the caller's.
func (s *server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Infow("request",
			"request_id", requestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		glosslive.VersionInfo
	}{"ok", glosslive.BuildVersion()})
}

func (s *server) handleNetworkInfo(w http.ResponseWriter, r *http.Request) {
	port := s.addr
	if i := strings.LastIndex(port, ":"); i >= 0 {
		port = port[i+1:]
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"port":        port,
		"environment": s.app.cfg.Environment,
	})
}

// translateRequest is the body of POST /api/translate.
type translateRequest struct {
	Text       string `json:"text"`
	AutoDetect bool   `json:"autoDetect"`
	APIKey     string `json:"apiKey"`
	From       string `json:"from"`
	To         string `json:"to"`
	Record     bool   `json:"record"`
}

type translateResponse struct {
	Source        string        `json:"source"`
	Translated    string        `json:"translated"`
	From          string        `json:"from"`
	To            string        `json:"to"`
	DetectedLang  string        `json:"detectedLang"`
	GlossaryTerms int           `json:"glossaryTerms"`
	Item          *history.Item `json:"item,omitempty"`
}

func (s *server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var body translateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &glosslive.ValidationError{Field: "body", Message: "request body must be JSON"})
		return
	}

	result, err := s.app.translator.Translate(r.Context(), glosslive.Request{
		Text:       body.Text,
		APIKey:     s.app.apiKey(body.APIKey),
		AutoDetect: body.AutoDetect,
		From:       glosslive.Language(body.From),
		To:         glosslive.Language(body.To),
	})
	if err != nil {
		s.logger.Warnw("translate failed",
			"request_id", requestID(r.Context()),
			"category", glosslive.Category(err),
			"error", err)
		writeError(w, err)
		return
	}

	resp := translateResponse{
		Source:        result.Source,
		Translated:    result.Translated,
		From:          string(result.DetectedSourceLang),
		To:            string(result.TargetLang),
		DetectedLang:  glosslive.LowerCode(result.DetectedSourceLang),
		GlossaryTerms: len(result.Replacements),
	}

	if body.Record {
		item, err := s.app.store.Append(r.Context(), result.Source, result.Translated, resp.DetectedLang)
		if err != nil {
			writeServerError(w, s.logger, err)
			return
		}
		resp.Item = &item
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	matches := s.app.store.Search(r.URL.Query().Get("q"))
	if matches == nil {
		matches = []history.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": matches})
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	session, ok := s.app.store.Current()
	if id := r.URL.Query().Get("session"); id != "" {
		sid, err := strconv.Atoi(id)
		if err != nil {
			writeError(w, &glosslive.ValidationError{Field: "session", Message: "session must be a number"})
			return
		}
		session, err = s.app.store.Session(sid)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		ok = true
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no active session"})
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := history.WriteHTML(w, session, time.Local); err != nil {
			s.logger.Warnw("html export failed", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename*=UTF-8''`+url.PathEscape(history.ExportFileName(time.Now())))
	if err := history.WriteText(w, session.Items, time.Local); err != nil {
		s.logger.Warnw("text export failed", "error", err)
	}
}

func (s *server) handleToggleStar(w http.ResponseWriter, r *http.Request) {
	sid, id, ok := itemPath(w, r)
	if !ok {
		return
	}
	item, err := s.app.store.ToggleStar(r.Context(), id, sid)
	if err != nil {
		writeStoreError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	sid, id, ok := itemPath(w, r)
	if !ok {
		return
	}
	if err := s.app.store.DeleteItem(r.Context(), id, sid); err != nil {
		writeStoreError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionsResponse struct {
	Current  *history.Session  `json:"current"`
	Sessions []history.Session `json:"sessions"`
}

func (s *server) handleSessions(w http.ResponseWriter, r *http.Request) {
	resp := sessionsResponse{Sessions: s.app.store.Sessions()}
	if current, ok := s.app.store.Current(); ok {
		resp.Current = &current
	}
	if resp.Sessions == nil {
		resp.Sessions = []history.Session{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Language string `json:"language"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, &glosslive.ValidationError{Field: "body", Message: "request body must be JSON"})
			return
		}
	}
	if body.Language == "" {
		body.Language = s.app.cfg.ListenLanguage
	}

	session, err := s.app.store.CreateSession(r.Context(), strings.ToLower(body.Language))
	if err != nil {
		writeServerError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	if err := s.app.store.Save(r.Context()); err != nil {
		writeServerError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLoadSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	session, err := s.app.store.LoadSession(r.Context(), id)
	if err != nil {
		writeStoreError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := s.app.store.DeleteSession(r.Context(), id); err != nil {
		writeStoreError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func itemPath(w http.ResponseWriter, r *http.Request) (sid, id int, ok bool) {
	if sid, ok = pathInt(w, r, "sid"); !ok {
		return 0, 0, false
	}
	if id, ok = pathInt(w, r, "id"); !ok {
		return 0, 0, false
	}
	return sid, id, true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil || n < 0 {
		writeError(w, &glosslive.ValidationError{Field: name, Message: name + " must be a non-negative number"})
		return 0, false
	}
	return n, true
}
