package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/prefs/internal/prefs"
)

const maxRequestBodySize = 1 << 20 // 1MB

// PrefStore is the store surface the API needs. Implemented by
// prefs.Locked, which makes it safe for concurrent handlers.
type PrefStore interface {
	SaveTyped(key string, v prefs.Value) error
	Get(key string) (prefs.Value, error)
	Has(key string) (bool, error)
	Delete(key string) error
	ListKeys() ([]string, error)
	RegisterDefault(key string, v prefs.Value) error
	Default(key string) (string, bool, error)
	ResetOne(key string) (bool, error)
	ResetAll() (int, error)
	Export() ([]prefs.Record, error)
	Import(records []prefs.Record) error
	Subscribe(fn prefs.Listener) string
	Unsubscribe(id string) bool
}

type Deps struct {
	Store PrefStore
	Token string
}

// NewHandler returns the HTTP API. Everything except /health requires the
// bearer token.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Get("/prefs", handleListPrefs(deps))
		r.Get("/prefs/{key}", handleGetPref(deps))
		r.Put("/prefs/{key}", handlePutPref(deps))
		r.Delete("/prefs/{key}", handleDeletePref(deps))
		r.Put("/prefs/{key}/default", handlePutDefault(deps))
		r.Post("/prefs/{key}/reset", handleResetPref(deps))
		r.Post("/reset", handleResetAll(deps))
		r.Get("/export", handleExport(deps))
		r.Post("/import", handleImport(deps))
		r.Get("/events", handleEvents(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleListPrefs(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := deps.Store.ListKeys()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list keys: %v", err)
			return
		}
		if keys == nil {
			keys = []string{}
		}
		writeJSON(w, keys)
	}
}

func handleGetPref(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		ok, err := deps.Store.Has(key)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read %q: %v", key, err)
			return
		}
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "pref %q not found", key)
			return
		}

		rec, err := loadRecord(deps.Store, key)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read %q: %v", key, err)
			return
		}
		writeJSON(w, rec)
	}
}

func handlePutPref(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		v, ok := decodeValue(w, r)
		if !ok {
			return
		}
		if err := deps.Store.SaveTyped(key, v); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, prefs.Record{Key: key, Value: v})
	}
}

func handleDeletePref(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if err := deps.Store.Delete(key); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}

func handlePutDefault(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		v, ok := decodeValue(w, r)
		if !ok {
			return
		}
		if err := deps.Store.RegisterDefault(key, v); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "registered", "default": v.String()})
	}
}

func handleResetPref(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		ok, err := deps.Store.ResetOne(key)
		if err != nil {
			storeError(w, err)
			return
		}
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no default registered for %q", key)
			return
		}
		rec, err := loadRecord(deps.Store, key)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read %q: %v", key, err)
			return
		}
		writeJSON(w, rec)
	}
}

func handleResetAll(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := deps.Store.ResetAll()
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, map[string]int{"reset": n})
	}
}

func handleExport(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := deps.Store.Export()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to export: %v", err)
			return
		}
		if r.URL.Query().Get("format") == "yaml" {
			data, err := prefs.MarshalRecordsYAML(records)
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to export: %v", err)
				return
			}
			w.Header().Set("Content-Type", "application/yaml")
			w.Write(data)
			return
		}
		writeJSON(w, records)
	}
}

func handleImport(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var records []prefs.Record
		var err error
		if isYAML(r.Header.Get("Content-Type")) {
			var data []byte
			if data, err = io.ReadAll(r.Body); err == nil {
				records, err = prefs.UnmarshalRecordsYAML(data)
			}
		} else {
			err = json.NewDecoder(r.Body).Decode(&records)
		}
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if err := deps.Store.Import(records); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, map[string]int{"imported": len(records)})
	}
}

func isYAML(contentType string) bool {
	mt, _, _ := mime.ParseMediaType(contentType)
	return mt == "application/yaml" || mt == "application/x-yaml" || mt == "text/yaml"
}

// loadRecord reads the value and default of key.
func loadRecord(s PrefStore, key string) (prefs.Record, error) {
	v, err := s.Get(key)
	if err != nil {
		return prefs.Record{}, err
	}
	rec := prefs.Record{Key: key, Value: v}
	def, ok, err := s.Default(key)
	if err != nil {
		return prefs.Record{}, err
	}
	if ok {
		rec.Default = &def
	}
	return rec, nil
}

// decodeValue reads a {"type","value"} body. It writes the error response
// itself and reports false on failure.
func decodeValue(w http.ResponseWriter, r *http.Request) (prefs.Value, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	var v prefs.Value
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return prefs.Value{}, false
	}
	return v, true
}

// storeError maps store errors to HTTP statuses.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, prefs.ErrInvalidKey), errors.Is(err, prefs.ErrInvalidValue):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	case errors.Is(err, prefs.ErrClosed):
		httpError(w, http.StatusServiceUnavailable, "api_error", "%v", err)
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
