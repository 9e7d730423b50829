// Package httpapi serves a read-mostly JSON view of the policy registry and
// the persisted settings, plus Prometheus metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/devpolicy/internal/policy"
	"github.com/roach88/devpolicy/internal/resolver"
	"github.com/roach88/devpolicy/internal/settings"
	"github.com/roach88/devpolicy/internal/store"
)

// State is the registry view the API reads. *policy.Registry implements it.
type State interface {
	Snapshot() policy.Snapshot
	IsPrivilegedAppUID(uid int) bool
	IsPrivilegedAppID(appID int) bool
	IsAudioEnhancementUID(uid int) bool
}

// SettingsStore is the settings persistence the API reads and writes.
// *store.Store implements it.
type SettingsStore interface {
	ListSettings(ctx context.Context) ([]store.Setting, error)
	SetSetting(ctx context.Context, key settings.Key, value bool, source string) (int64, error)
}

// EventSink accepts package-resolution events. *resolver.Resolver
// implements it.
type EventSink interface {
	Enqueue(ev resolver.Event) bool
}

// Handler serves the /v1 endpoints.
type Handler struct {
	state    State
	settings SettingsStore
	events   EventSink
	metrics  http.Handler
	logger   *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithEvents mounts POST /v1/events, feeding sink.
func WithEvents(sink EventSink) Option {
	return func(h *Handler) { h.events = sink }
}

// New creates a Handler. metrics may be nil, in which case /metrics is not
// mounted.
func New(state State, settings SettingsStore, metrics http.Handler, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		state:    state,
		settings: settings,
		metrics:  metrics,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Use(chimw.Recoverer)
	r.Get("/v1/state", h.handleState)
	r.Get("/v1/uids/{uid}", h.handleUID)
	r.Get("/v1/settings", h.handleListSettings)
	r.Put("/v1/settings/{key}", h.handleSetSetting)
	if h.events != nil {
		r.Post("/v1/events", h.handleEvent)
	}
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}
}

// Router returns a chi router with every route registered.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Snapshot())
}

// UIDResponse describes one uid against the current bindings. Privileged
// is an exact uid match; PrivilegedApp matches the app ID in any user.
type UIDResponse struct {
	UID              int  `json:"uid"`
	AppID            int  `json:"app_id"`
	UserID           int  `json:"user_id"`
	Privileged       bool `json:"privileged"`
	PrivilegedApp    bool `json:"privileged_app"`
	AudioEnhancement bool `json:"audio_enhancement"`
}

func (h *Handler) handleUID(w http.ResponseWriter, r *http.Request) {
	uid, err := strconv.Atoi(chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "uid must be an integer")
		return
	}

	writeJSON(w, http.StatusOK, UIDResponse{
		UID:              uid,
		AppID:            policy.AppID(uid),
		UserID:           policy.UserID(uid),
		Privileged:       h.state.IsPrivilegedAppUID(uid),
		PrivilegedApp:    h.state.IsPrivilegedAppID(policy.AppID(uid)),
		AudioEnhancement: h.state.IsAudioEnhancementUID(uid),
	})
}

func (h *Handler) handleListSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stored, err := h.settings.ListSettings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	if stored == nil {
		stored = []store.Setting{}
	}
	writeJSON(w, http.StatusOK, stored)
}

type setSettingRequest struct {
	Value *bool `json:"value"`
}

func (h *Handler) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, ok := settings.ParseKey(chi.URLParam(r, "key"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "unknown setting")
		return
	}

	var req setSettingRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, "bad_request", `body must be {"value": true|false}`)
		return
	}

	seq, err := h.settings.SetSetting(ctx, key, *req.Value, store.SourceHTTP)
	if errors.Is(err, store.ErrUnknownSetting) {
		writeError(w, http.StatusNotFound, "not_found", "unknown setting")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "set setting failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	h.logger.InfoContext(ctx, "setting updated", "key", key, "value", *req.Value, "seq", seq)
	writeJSON(w, http.StatusOK, store.Setting{Key: key, Value: *req.Value, Seq: seq})
}

type eventRequest struct {
	Kind    resolver.Kind `json:"kind"`
	Package string        `json:"package"`
	UID     *int          `json:"uid"`
}

// handleEvent queues one event. Validation happens in the resolver loop, so
// only the shape of the body is checked here.
func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req eventRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil || req.Kind == "" {
		writeError(w, http.StatusBadRequest, "bad_request", `body must be {"kind": ..., "package": ..., "uid": ...}`)
		return
	}

	ev := resolver.Event{Kind: req.Kind, Package: req.Package}
	switch {
	case req.UID != nil:
		ev.UID = *req.UID
	case req.Kind == resolver.KindPackageAdded, req.Kind == resolver.KindPackageUpdated:
		writeError(w, http.StatusBadRequest, "bad_request", "uid is required for "+string(req.Kind))
		return
	}

	if !h.events.Enqueue(ev) {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "resolver is stopped")
		return
	}

	h.logger.DebugContext(ctx, "event queued", "kind", ev.Kind, "package", ev.Package)
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": code, "error_description": desc}. Empty
// descriptions are omitted.
func writeError(w http.ResponseWriter, status int, code, desc string) {
	body := map[string]string{"error": code}
	if desc != "" {
		body["error_description"] = desc
	}
	writeJSON(w, status, body)
}
