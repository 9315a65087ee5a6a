package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"toolbox/internal/api"
	"toolbox/internal/config"
	"toolbox/internal/conversion"
	"toolbox/internal/format"
	"toolbox/internal/logging"
	"toolbox/internal/services"
	"toolbox/internal/textutil"
)

const (
	targetField         = "target_format"
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
	maxFieldBytes       = 256
)

type apiServer struct {
	bind      string
	token     string
	maxUpload int64
	logger    *slog.Logger
	daemon    *Daemon
	convert   *api.ConvertService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:      bind,
		token:     cfg.Paths.APIToken,
		maxUpload: cfg.MaxUploadBytes(),
		logger:    logger,
		daemon:    d,
		convert:   d.convert,
	}
	return srv, nil
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", authMiddleware(s.token, s.handleStatus))
	mux.HandleFunc("/api/convert", authMiddleware(s.token, s.handleConvert))
	mux.HandleFunc("/api/conversions", authMiddleware(s.token, s.handleConversions))
	return mux
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	server := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.server = server

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		s.server = nil
	}
	s.listener = nil
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleConversions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(value, maxHistoryLimit)
	}
	items, err := s.convert.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ConversionListResponse{Items: items})
}

// handleConvert serves POST /api/convert. The body is multipart/form-data
// with one or more "files" parts and a "target_format" value, which may
// instead be given in the query string. The target is validated before any
// file is read only when it arrives in the query string or as a form field
// ahead of the file parts; a field sent after the files is checked once they
// have been buffered. Success returns the artifact as an attachment, failure
// a JSON error body.
func (s *apiServer) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	requestID := uuid.NewString()
	ctx := services.WithRequestID(r.Context(), requestID)
	w.Header().Set("X-Request-ID", requestID)
	logger := logging.WithContext(ctx, s.log())

	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}
	target, files, err := s.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d MB limit", tooLarge.Limit>>20))
			return
		}
		s.writeError(w, services.HTTPStatus(err), err.Error())
		return
	}

	artifact, err := s.convert.Convert(ctx, files, target)
	if err != nil {
		status := services.HTTPStatus(err)
		message := err.Error()
		if status >= http.StatusInternalServerError {
			logging.WarnWithContext(logger, "conversion request failed", "conversion_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the daemon log for the failing file and tool"),
				logging.String(logging.FieldImpact, "no output returned for the batch"),
			)
			message = "conversion failed (request " + requestID + ")"
		}
		s.writeError(w, status, message)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		logger.Debug("artifact write interrupted", logging.Error(err))
	}
}

// readUpload streams the multipart body. A target given in the query string
// is checked before the body is touched; a target field is checked as soon as
// it arrives, and reading stops there when it is invalid. File parts that
// precede the field are already in memory by then.
func (s *apiServer) readUpload(r *http.Request) (string, []conversion.UploadedFile, error) {
	target := strings.TrimSpace(r.URL.Query().Get(targetField))
	if target != "" {
		if _, err := format.ParseTarget(target); err != nil {
			return target, nil, nil
		}
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return "", nil, services.Wrap(services.ErrValidation, "api", "read upload", "expected multipart/form-data body", err)
	}

	var files []conversion.UploadedFile
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, wrapUploadError(err)
		}

		if part.FileName() != "" {
			data, err := io.ReadAll(part)
			_ = part.Close()
			if err != nil {
				return "", nil, wrapUploadError(err)
			}
			files = append(files, conversion.UploadedFile{
				Name: textutil.UploadName(part.FileName()),
				Data: data,
			})
			continue
		}

		if part.FormName() == targetField {
			value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			_ = part.Close()
			if err != nil {
				return "", nil, wrapUploadError(err)
			}
			target = strings.TrimSpace(string(value))
			if _, err := format.ParseTarget(target); err != nil {
				return target, nil, nil
			}
			continue
		}
		_ = part.Close()
	}
	return target, files, nil
}

func wrapUploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return services.Wrap(services.ErrValidation, "api", "read upload", "malformed multipart body", err)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
