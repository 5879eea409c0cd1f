package restapi

import (
	"net/http"

	"donation_portal/internal/app/service"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	keySessionID = "sid"
	keyChainID   = "sel_chain"
	keyToken     = "sel_token"
	keyAmount    = "sel_amount"
	keyRate      = "sel_rate"
)

// SessionManager wraps a cookie store and names the values the API keeps per browser.
type SessionManager struct {
	name  string
	store sessions.Store
}

// SessionOptions configures the session cookie.
type SessionOptions struct {
	CookieName string
	Secret     string
	MaxAge     int
	Secure     bool
}

func NewSessionManager(opts SessionOptions) *SessionManager {
	store := sessions.NewCookieStore([]byte(opts.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{name: opts.CookieName, store: store}
}

// Session is one request's view of the browser session.
type Session struct {
	raw *sessions.Session
}

// Get returns the request's session. A cookie that fails to decode starts a fresh session.
func (m *SessionManager) Get(r *http.Request) *Session {
	// the store returns a new session alongside a decode error
	s, _ := m.store.Get(r, m.name)
	return &Session{raw: s}
}

func (m *SessionManager) Save(r *http.Request, w http.ResponseWriter, s *Session) error {
	return m.store.Save(r, w, s.raw)
}

// ID returns the session id, assigning one on first use.
func (s *Session) ID() string {
	if id, ok := s.raw.Values[keySessionID].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	s.raw.Values[keySessionID] = id
	return id
}

// HasID reports whether an id was assigned earlier.
func (s *Session) HasID() bool {
	id, ok := s.raw.Values[keySessionID].(string)
	return ok && id != ""
}

// Selection returns the last quoted selection and its cached rate.
func (s *Session) Selection() (service.Selection, float64) {
	var sel service.Selection
	sel.ChainID, _ = s.raw.Values[keyChainID].(uint64)
	sel.TokenAddress, _ = s.raw.Values[keyToken].(string)
	sel.AmountHuman, _ = s.raw.Values[keyAmount].(string)
	rate, _ := s.raw.Values[keyRate].(float64)
	return sel, rate
}

func (s *Session) SetSelection(sel service.Selection, rate float64) {
	s.raw.Values[keyChainID] = sel.ChainID
	s.raw.Values[keyToken] = sel.TokenAddress
	s.raw.Values[keyAmount] = sel.AmountHuman
	s.raw.Values[keyRate] = rate
}

func (s *Session) ClearSelection() {
	for _, k := range []string{keyChainID, keyToken, keyAmount, keyRate} {
		delete(s.raw.Values, k)
	}
}
