package portalhttp

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/programme-lv/contest-portal/logger"
	"github.com/programme-lv/contest-portal/page"
)

const keepAliveInterval = 15 * time.Second

type streamUpdate struct {
	Generation uint64                      `json:"generation"`
	Fragments  map[string]renderedFragment `json:"fragments"`
}

// streamScreen pushes the fragments of every new snapshot of holder that
// changed since the previous message. The first message carries them all.
func streamScreen[S any](httpserver *HttpServer, w http.ResponseWriter, r *http.Request, holder *page.Holder[S], frags []fragment[S]) {
	log := logger.FromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates, unsubscribe := holder.Subscribe()
	defer unsubscribe()

	var writeMutex sync.Mutex
	safeWrite := func(data string) error {
		writeMutex.Lock()
		defer writeMutex.Unlock()
		if _, err := io.WriteString(w, data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	seen := make(map[string]string)
	var sent uint64
	push := func() error {
		screen, gen := holder.Latest()
		if gen == sent && sent != 0 {
			return nil
		}
		sent = gen
		all, err := renderFragments(httpserver.tmpl, frags, screen)
		if err != nil {
			return err
		}
		changed := changedFragments(all, seen)
		if len(changed) == 0 {
			return nil
		}
		marshalled, err := json.Marshal(streamUpdate{Generation: gen, Fragments: changed})
		if err != nil {
			return err
		}
		return safeWrite("data: " + string(marshalled) + "\n\n")
	}

	if err := push(); err != nil {
		log.Debug("stream write failed", "error", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-httpserver.baseCtx.Done():
			return
		case <-keepAliveTicker.C:
			if err := safeWrite(": keep-alive\n\n"); err != nil {
				return
			}
		case <-updates:
			if err := push(); err != nil {
				log.Debug("stream write failed", "error", err)
				return
			}
		}
	}
}
