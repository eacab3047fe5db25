package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/licitaciones-portal/internal/listing"
)

const (
	CookieName = "licitaciones_session"
	issuer     = "licitaciones-portal"

	defaultMaxSessions = 10000
	sweepInterval      = time.Minute
)

var ErrInvalidToken = errors.New("invalid session token")

// Session is the per-browser state held server-side.
type Session struct {
	ID      string
	Listing *listing.Controller

	// Token is set when the cookie must be (re)written.
	Token     string
	ExpiresAt time.Time
}

type entry struct {
	listing   *listing.Controller
	expiresAt time.Time
}

// Store maps session ids carried in signed cookies to listing controllers.
// Expired entries are swept at most once a minute; when the store is full
// the least recently used session makes room for a new one.
type Store struct {
	secret      []byte
	ttl         time.Duration
	maxSessions int
	newListing  func() *listing.Controller
	now         func() time.Time

	mu        sync.Mutex
	sessions  map[string]*entry
	lastSweep time.Time
}

type Option func(*Store)

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

func NewStore(secret string, ttl time.Duration, newListing func() *listing.Controller, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	s := &Store{
		secret:      []byte(secret),
		ttl:         ttl,
		maxSessions: defaultMaxSessions,
		newListing:  newListing,
		now:         time.Now,
		sessions:    make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the session referenced by token, starting a new one when the
// token is missing, invalid, expired or unknown. The token is refreshed
// once less than half of the TTL remains.
func (s *Store) Get(token string) (*Session, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.evictLocked(now)
	}

	if id, exp, err := s.parse(token); err == nil {
		if e, ok := s.sessions[id]; ok && now.Before(e.expiresAt) {
			e.expiresAt = now.Add(s.ttl)
			sess := &Session{ID: id, Listing: e.listing, ExpiresAt: exp}
			if exp.Sub(now) < s.ttl/2 {
				if sess.Token, err = s.sign(id, e.expiresAt, now); err != nil {
					return nil, err
				}
				sess.ExpiresAt = e.expiresAt
			}
			return sess, nil
		}
	}

	id := uuid.NewString()
	expiresAt := now.Add(s.ttl)
	signed, err := s.sign(id, expiresAt, now)
	if err != nil {
		return nil, err
	}
	if len(s.sessions) >= s.maxSessions {
		s.evictLocked(now)
		s.evictOldestLocked()
	}
	s.sessions[id] = &entry{listing: s.newListing(), expiresAt: expiresAt}
	return &Session{ID: id, Listing: s.sessions[id].listing, Token: signed, ExpiresAt: expiresAt}, nil
}

// Ephemeral returns a session that is never stored, for clients such as
// crawlers that will not send the cookie back.
func (s *Store) Ephemeral() *Session {
	return &Session{ID: uuid.NewString(), Listing: s.newListing(), ExpiresAt: s.now().Add(s.ttl)}
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(s.now())
	return len(s.sessions)
}

func (s *Store) evictLocked(now time.Time) {
	s.lastSweep = now
	for id, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

// evictOldestLocked drops sessions idle the longest until there is room for
// one more. expiresAt slides on every access, so the earliest is the least
// recently used.
func (s *Store) evictOldestLocked() {
	for len(s.sessions) >= s.maxSessions {
		var oldest string
		var at time.Time
		for id, e := range s.sessions {
			if oldest == "" || e.expiresAt.Before(at) {
				oldest, at = id, e.expiresAt
			}
		}
		delete(s.sessions, oldest)
	}
}

func (s *Store) sign(id string, expiresAt, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        id,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *Store) parse(token string) (string, time.Time, error) {
	if token == "" {
		return "", time.Time{}, ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.ID == "" {
		return "", time.Time{}, ErrInvalidToken
	}
	return claims.ID, claims.ExpiresAt.Time, nil
}
