package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/xilidan/s2t-translator/clients"
	"github.com/xilidan/s2t-translator/pkg/json"
	"github.com/xilidan/s2t-translator/pkg/jwt"
	"github.com/xilidan/s2t-translator/pkg/logger"
	"github.com/xilidan/s2t-translator/services/translation/consts"
	"github.com/xilidan/s2t-translator/services/translation/entity"
	"github.com/xilidan/s2t-translator/services/translation/usecase"
)

// multipart parts above this size spill to temp files
const maxMemory = 32 << 20

type Options struct {
	// JWTSecret enables bearer authentication on translation routes when set.
	JWTSecret      string
	MaxUploadBytes int64
	Log            *slog.Logger
}

type Server struct {
	usecase usecase.Usecase
	opts    Options
}

func New(usecase usecase.Usecase, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = consts.MaxAudioSize
	}
	if opts.Log == nil {
		opts.Log = logger.Default()
	}
	return &Server{
		usecase: usecase,
		opts:    opts,
	}
}

type translateRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id,omitempty"`
	Source  string `json:"source,omitempty"`
	Target  string `json:"target,omitempty"`
}

func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(s.withLogger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(apiRouter chi.Router) {
		apiRouter.Get("/health", s.HealthHandler)
		apiRouter.Get("/languages", s.LanguagesHandler)

		apiRouter.Group(func(authRouter chi.Router) {
			if s.opts.JWTSecret != "" {
				authRouter.Use(s.authenticate)
			}
			authRouter.Post("/translate", s.TranslateHandler)
			authRouter.Route("/translations", func(runRouter chi.Router) {
				runRouter.Post("/", s.CreateTranslationHandler)
				runRouter.Get("/", s.ListTranslationsHandler)
				runRouter.Get("/{id}", s.GetTranslationHandler)
			})
		})
	})

	return router
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	json.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) LanguagesHandler(w http.ResponseWriter, r *http.Request) {
	languages, err := s.usecase.Languages(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, map[string]any{"languages": languages})
}

// CreateTranslationHandler runs the pipeline on the multipart "audio" file.
func (s *Server) CreateTranslationHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			json.WriteError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("audio exceeds %d bytes", tooLarge.Limit))
			return
		}
		json.WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		json.WriteError(w, http.StatusBadRequest, fmt.Errorf("missing audio file: %w", err))
		return
	}
	defer file.Close()

	contentType := strings.TrimSpace(r.FormValue("content_type"))
	if contentType == "" {
		if ct := header.Header.Get("Content-Type"); strings.HasPrefix(ct, "audio/") {
			contentType = ct
		}
	}

	run, err := s.usecase.RunAudio(r.Context(), entity.Audio{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        file,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusCreated, run)
}

func (s *Server) GetTranslationHandler(w http.ResponseWriter, r *http.Request) {
	run, err := s.usecase.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, run)
}

func (s *Server) ListTranslationsHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := s.usecase.ListRuns(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, map[string]any{"translations": runs})
}

// TranslateHandler translates text directly, skipping transcription.
func (s *Server) TranslateHandler(w http.ResponseWriter, r *http.Request) {
	req := &translateRequest{}
	if err := json.ParseJSON(r, req); err != nil {
		json.WriteError(w, http.StatusBadRequest, err)
		return
	}

	var (
		translation *entity.Translation
		err         error
	)
	switch {
	case req.ModelID != "":
		var model entity.ModelID
		model, err = entity.ParseModelID(req.ModelID)
		if err == nil {
			translation, err = s.usecase.TranslateModel(r.Context(), req.Text, model)
		}
	case req.Source != "" && req.Target != "":
		translation, err = s.usecase.Translate(r.Context(), req.Text, req.Source, req.Target)
	default:
		json.WriteError(w, http.StatusBadRequest, errors.New("model_id or source and target are required"))
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, translation)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := jwt.ParseTokenFromHeader(r)
		if err != nil {
			json.WriteError(w, http.StatusUnauthorized, errors.New("access denied"))
			return
		}
		subject, err := jwt.Validate(token, s.opts.JWTSecret)
		if err != nil {
			json.WriteError(w, http.StatusUnauthorized, errors.New("access denied"))
			return
		}

		log := logger.FromContext(r.Context()).With(slog.String("subject", subject))
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), log)))
	})
}

func (s *Server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := s.opts.Log.With(slog.String("request_id", middleware.GetReqID(r.Context())))
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), log)))
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorErr(r.Context(), "request failed", err, slog.String("path", r.URL.Path))
	}
	json.WriteError(w, status, err)
}

func statusOf(err error) int {
	var apiErr *clients.APIError
	switch {
	case errors.Is(err, entity.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidModelID):
		return http.StatusBadRequest
	case errors.As(err, &apiErr), errors.Is(err, entity.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
