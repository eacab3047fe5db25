package session

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/licitaciones-portal/internal/listing"
)

func newTestStore(now *time.Time) *Store {
	s := NewStore("test-secret", time.Hour, func() *listing.Controller {
		return listing.NewController(nil, 10, zerolog.Nop())
	})
	s.now = func() time.Time { return *now }
	return s
}

func TestStore_ReusesSession(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestStore(&now)

	first, err := s.Get("")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first.Token == "" {
		t.Fatalf("new session must carry a token")
	}

	now = now.Add(10 * time.Minute)
	again, err := s.Get(first.Token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.ID != first.ID || again.Listing != first.Listing {
		t.Fatalf("session not reused")
	}
	if again.Token != "" {
		t.Fatalf("token refreshed too early")
	}
}

func TestStore_RefreshesTokenAfterHalfTTL(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestStore(&now)
	first, _ := s.Get("")

	now = now.Add(40 * time.Minute)
	again, err := s.Get(first.Token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.ID != first.ID || again.Token == "" {
		t.Fatalf("expected refreshed token for the same session")
	}
}

func TestStore_RejectsForeignAndExpiredTokens(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestStore(&now)
	first, _ := s.Get("")

	other := NewStore("another-secret", time.Hour, s.newListing)
	other.now = s.now
	foreign, _ := other.Get("")
	got, _ := s.Get(foreign.Token)
	if got.ID == foreign.ID {
		t.Fatalf("token signed with another secret was accepted")
	}

	now = now.Add(2 * time.Hour)
	expired, _ := s.Get(first.Token)
	if expired.ID == first.ID {
		t.Fatalf("expired session was reused")
	}
}

func TestStore_EvictsLazily(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestStore(&now)
	_, _ = s.Get("")
	_, _ = s.Get("")
	if s.Len() != 2 {
		t.Fatalf("Len=%d; want 2", s.Len())
	}
	now = now.Add(61 * time.Minute)
	if s.Len() != 0 {
		t.Fatalf("Len=%d; want 0 after ttl", s.Len())
	}
}

func TestStore_CapEvictsLeastRecentlyUsed(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestStore(&now)
	s.maxSessions = 2

	first, _ := s.Get("")
	now = now.Add(time.Minute)
	second, _ := s.Get("")
	now = now.Add(time.Minute)
	if again, _ := s.Get(first.Token); again.ID != first.ID {
		t.Fatalf("first session lost before the cap was reached")
	}

	now = now.Add(time.Minute)
	third, _ := s.Get("")
	if s.Len() != 2 {
		t.Fatalf("Len=%d; want 2", s.Len())
	}
	if got, _ := s.Get(second.Token); got.ID == second.ID {
		t.Fatalf("least recently used session survived the cap")
	}
	if got, _ := s.Get(third.Token); got.ID != third.ID {
		t.Fatalf("newest session was evicted")
	}
}

func TestStore_ExpiredEntryNotReusedBeforeSweep(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestStore(&now)
	s.ttl = 30 * time.Second
	first, _ := s.Get("")

	// Still inside the sweep interval, but past the session ttl.
	now = now.Add(45 * time.Second)
	e := s.sessions[first.ID]
	token, err := s.sign(first.ID, now.Add(time.Hour), now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if got, _ := s.Get(token); got.ID == first.ID || got.Listing == e.listing {
		t.Fatalf("expired entry was reused")
	}
}

func TestStore_EphemeralIsNotStored(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestStore(&now)
	sess := s.Ephemeral()
	if sess.Listing == nil || sess.Token != "" {
		t.Fatalf("ephemeral session=%+v", sess)
	}
	if s.Len() != 0 {
		t.Fatalf("Len=%d; want 0", s.Len())
	}
}
