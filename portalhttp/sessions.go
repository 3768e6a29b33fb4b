package portalhttp

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/programme-lv/contest-portal/contestapi"
	"golang.org/x/sync/singleflight"
)

const SessionTTL = 6 * time.Hour

type pageKind int

const (
	pageRegister pageKind = iota
	pageLogin
	pageAdmin
	pageContest
)

// livePage is a page controller with running background work.
type livePage interface {
	close()
}

// session is one browser: its backend client (and with it the backend's
// session cookie) and the page it currently shows.
type session struct {
	id     string
	client *contestapi.Client
	logger *slog.Logger

	mu          sync.Mutex
	admin       bool
	participant bool
	pages       map[pageKind]livePage
}

func (s *session) isAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin
}

func (s *session) isParticipant() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participant
}

func (s *session) setAdmin() {
	s.mu.Lock()
	s.admin = true
	s.mu.Unlock()
}

func (s *session) setParticipant() {
	s.mu.Lock()
	s.participant = true
	s.mu.Unlock()
}

// open makes the page of the given kind the only live page of the session,
// building it when missing. Pages of other kinds are closed.
func (s *session) open(kind pageKind, build func() livePage) (livePage, bool) {
	s.mu.Lock()
	var stale []livePage
	for k, p := range s.pages {
		if k != kind {
			stale = append(stale, p)
			delete(s.pages, k)
		}
	}
	p, ok := s.pages[kind]
	if !ok {
		p = build()
		s.pages[kind] = p
	}
	s.mu.Unlock()

	for _, old := range stale {
		old.close()
	}
	return p, !ok
}

// drop closes p if it is still the live page of its kind.
func (s *session) drop(kind pageKind, p livePage) {
	s.mu.Lock()
	cur, ok := s.pages[kind]
	if !ok || cur != p {
		s.mu.Unlock()
		return
	}
	delete(s.pages, kind)
	s.mu.Unlock()
	p.close()
}

// lookup returns the live page of the given kind without building one.
func (s *session) lookup(kind pageKind) (livePage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[kind]
	return p, ok
}

func (s *session) close() {
	s.mu.Lock()
	pages := s.pages
	s.pages = make(map[pageKind]livePage)
	s.mu.Unlock()
	for _, p := range pages {
		p.close()
	}
}

type sessionStore struct {
	cache *cache.Cache
	group singleflight.Group
	build func(id string) (*session, error)
}

func newSessionStore(ttl time.Duration, build func(id string) (*session, error)) *sessionStore {
	c := cache.New(ttl, 10*time.Minute)
	c.OnEvicted(func(_ string, v interface{}) {
		if s, ok := v.(*session); ok {
			go s.close()
		}
	})
	return &sessionStore{cache: c, build: build}
}

// get returns a live session and extends its expiry.
func (st *sessionStore) get(id string) (*session, bool) {
	v, ok := st.cache.Get(id)
	if !ok {
		return nil, false
	}
	s := v.(*session)
	st.cache.SetDefault(id, s)
	return s, true
}

// getOrCreate returns the session for id, building it at most once when
// several requests of the same browser arrive together.
func (st *sessionStore) getOrCreate(id string) (*session, error) {
	if s, ok := st.get(id); ok {
		return s, nil
	}
	v, err, _ := st.group.Do(id, func() (interface{}, error) {
		if s, ok := st.get(id); ok {
			return s, nil
		}
		s, err := st.build(id)
		if err != nil {
			return nil, err
		}
		// An expired entry the janitor has not reached yet is still held by
		// the cache; deleting it runs the eviction hook.
		st.cache.Delete(id)
		st.cache.SetDefault(id, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*session), nil
}

// remove drops the session; its pages are closed by the eviction hook.
func (st *sessionStore) remove(id string) {
	st.cache.Delete(id)
}

func (st *sessionStore) count() int {
	return st.cache.ItemCount()
}

// closeAll drops every session and waits for their pages to stop.
func (st *sessionStore) closeAll(ctx context.Context) {
	items := st.cache.Items()
	st.cache.Flush()

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for _, item := range items {
			s, ok := item.Object.(*session)
			if !ok {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.close()
			}()
		}
		wg.Wait()
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
