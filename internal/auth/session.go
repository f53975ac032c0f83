package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"golang.org/x/crypto/bcrypt"
)

// Session is one authenticated researcher's login.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore keeps sessions in memory with a fixed TTL. Expired
// sessions are dropped lazily on lookup.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	clock    func() time.Time
}

// NewSessionStore creates a store; a nil clock means time.Now.
func NewSessionStore(ttl time.Duration, clock func() time.Time) *SessionStore {
	if clock == nil {
		clock = time.Now
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		clock:    clock,
	}
}

// Create opens a session for the email and returns it.
func (st *SessionStore) Create(email string) Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.clock()
	session := Session{
		Token:     uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(st.ttl),
	}
	st.sessions[session.Token] = session
	return session
}

// Get returns the live session for a token.
func (st *SessionStore) Get(token string) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[token]
	if !ok {
		return Session{}, false
	}
	if st.clock().After(session.ExpiresAt) {
		delete(st.sessions, token)
		return Session{}, false
	}
	return session, true
}

// Delete removes a session.
func (st *SessionStore) Delete(token string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, token)
}

// Len counts stored sessions, expired ones included.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
