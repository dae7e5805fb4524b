package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/example/followback/internal/diff"
	"github.com/example/followback/internal/logging"
	"github.com/example/followback/internal/storage"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

const (
	FollowersField = "followers_file"
	FollowingField = "following_file"

	DefaultMaxUploadBytes int64 = 32 << 20
	multipartMemory       int64 = 8 << 20
)

type Handler struct {
	store    storage.UploadStore
	maxBytes int64
	logger   *slog.Logger
}

type Option func(*Handler)

func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

func NewHandler(store storage.UploadStore, opts ...Option) *Handler {
	h := &Handler{store: store, maxBytes: DefaultMaxUploadBytes}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = logging.OrDefault(h.logger)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)))
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(fmt.Sprintf("invalid multipart form: %v", err)))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	followersFile, err := formFile(r, FollowersField)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}
	defer followersFile.Close()
	followingFile, err := formFile(r, FollowingField)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}
	defer followingFile.Close()

	key := h.store.NewKey()
	out := h.process(r.Context(), key, followersFile, followingFile)
	writeJSON(w, out.Status(), out.Body())

	attrs := []any{"key", string(key), "status", out.Status()}
	switch out.Kind {
	case diff.KindOK:
		h.logger.Info("upload processed", append(attrs, "not_following_back", out.Result.Len())...)
	case diff.KindClientError:
		h.logger.Info("upload rejected", append(attrs, "error", out.Err)...)
	default:
		h.logger.Error("upload failed", append(attrs, "error", out.Err)...)
	}
}

// process persists both payloads before any parsing, reads them back, and
// computes the outcome. A panic anywhere in here becomes an internal error.
func (h *Handler) process(ctx context.Context, key storage.Key, followers, following io.Reader) (out diff.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = diff.Classify(panicError(rec))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard(func() error { return h.store.Save(gctx, key, storage.RoleFollowers, followers) }))
	g.Go(guard(func() error { return h.store.Save(gctx, key, storage.RoleFollowing, following) }))
	if err := g.Wait(); err != nil {
		return diff.Classify(err)
	}

	var followersData, followingData []byte
	g, gctx = errgroup.WithContext(ctx)
	g.Go(guard(func() error {
		var err error
		followersData, err = h.store.Load(gctx, key, storage.RoleFollowers)
		return err
	}))
	g.Go(guard(func() error {
		var err error
		followingData, err = h.store.Load(gctx, key, storage.RoleFollowing)
		return err
	}))
	if err := g.Wait(); err != nil {
		return diff.Classify(err)
	}

	return diff.Run(followersData, followingData)
}

// guard turns a panic in an errgroup goroutine into its error result.
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = panicError(rec)
			}
		}()
		return fn()
	}
}

func panicError(rec any) error {
	return goerr.New("panic while processing upload", goerr.V("panic", fmt.Sprint(rec)))
}

func formFile(r *http.Request, field string) (multipart.File, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing form file %q", field)
	}
	return f, nil
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		payload, _ = json.Marshal(errorBody(err.Error()))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
