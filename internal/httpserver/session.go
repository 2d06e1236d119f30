// internal/httpserver/session.go
//
// Session cookie handling.
// The browser client is stateless; a signed HS256 JWT in an HttpOnly
// cookie carries the session ID so each request can be re-associated with
// its in-memory game session. Signing exists so clients cannot forge or
// enumerate other sessions; this is not user authentication and carries
// no identity beyond the session ID.

package httpserver

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/wikiwander/go-server/internal/game"
)

const sessionTTL = 24 * time.Hour

// session returns the caller's game session, creating one (and setting
// the cookie) on first contact or when the token is invalid or the
// session has been evicted.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *game.Session {
	if id := sessionIDFromRequest(r); id != "" {
		if sess, err := s.store.Get(r.Context(), id); err == nil {
			return sess
		}
	}

	sess := s.newSession()
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Warn().Err(err).Str("sessionId", sess.ID).Msg("save session")
	}
	tok, exp, err := signSessionToken(sess.ID)
	if err != nil {
		log.Warn().Err(err).Msg("sign session token")
		return sess
	}
	setSessionCookie(w, tok, exp)
	return sess
}

// sessionIDFromRequest extracts and verifies the session ID from the
// Authorization header or session cookie. Empty on any failure.
func sessionIDFromRequest(r *http.Request) string {
	tok := bearerOrCookie(r)
	if tok == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return sessionSecret(), nil
	})
	if err != nil || !t.Valid {
		return ""
	}
	id, _ := claims["sid"].(string)
	return id
}

// signSessionToken creates an HS256 JWT carrying only the session ID.
func signSessionToken(id string) (string, time.Time, error) {
	exp := time.Now().Add(sessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": id,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	})
	ss, err := t.SignedString(sessionSecret())
	return ss, exp, err
}

// setSessionCookie writes the session token cookie with appropriate
// security attributes.
func setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := os.Getenv("NODE_ENV") == "production"
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a token from the Authorization header or the
// session cookie.
func bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); len(a) > 7 && strings.EqualFold(a[:7], "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName()); err == nil {
		return c.Value
	}
	return ""
}

func sessionSecret() []byte {
	return []byte(getEnv("SESSION_SECRET", "dev_secret_change_me"))
}

func cookieName() string {
	return getEnv("SESSION_COOKIE", "wikiwander_session")
}
