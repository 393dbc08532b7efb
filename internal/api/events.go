package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kalambet/prefs/internal/prefs"
)

// eventBuffer bounds how many changes a slow /events client may lag behind
// before changes are dropped for it.
const eventBuffer = 64

// handleEvents streams change notifications as server-sent events until the
// client disconnects.
func handleEvents(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			httpError(w, http.StatusInternalServerError, "api_error", "streaming not supported")
			return
		}

		changes := make(chan prefs.Change, eventBuffer)
		id := deps.Store.Subscribe(func(c prefs.Change) {
			select {
			case changes <- c:
			default:
				slog.Warn("events: client too slow, dropping change", "key", c.Key)
			}
		})
		defer deps.Store.Unsubscribe(id)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		fmt.Fprintf(w, ": subscribed %s\n\n", id)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case c := <-changes:
				data, err := json.Marshal(c)
				if err != nil {
					slog.Warn("events: marshalling change", "key", c.Key, "error", err)
					continue
				}
				fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
				flusher.Flush()
			}
		}
	}
}
