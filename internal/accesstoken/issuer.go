// Package accesstoken mints the signed, claims-bearing tokens the external
// conferencing provider verifies at the room door. The issuer never talks to
// the provider; it only shares the key pair.
package accesstoken

import (
	"crypto"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"webinar-platform/backend/internal/security"
	"webinar-platform/backend/internal/session/domain"
)

// ErrInvalidSigningKey is returned when the configured key cannot sign
// tokens. This is a fatal configuration error, not a per-request condition.
var ErrInvalidSigningKey = errors.New("invalid signing key")

// RoomClaims holds the JWT claims for a conference room token. The shape
// follows what the conferencing provider expects: a room, and a user context
// carrying identity and the moderator flag.
type RoomClaims struct {
	jwt.RegisteredClaims
	Room    string        `json:"room"`
	Context ClaimsContext `json:"context"`
}

// ClaimsContext nests the user block inside the token.
type ClaimsContext struct {
	User ClaimsUser `json:"user"`
}

// ClaimsUser identifies the joining user to the conferencing provider.
// Moderator is a string flag ("true"/"false") per the provider's convention.
type ClaimsUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Moderator string `json:"moderator"`
}

// Grant is the ephemeral result of issuing a token. It is returned to the
// caller and never persisted.
type Grant struct {
	UserID    string
	SessionID string
	Role      domain.Role
	RoomName  string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	StartTime time.Time
	EndTime   time.Time
}

// Issuer signs room tokens with the service's private key (RS256 or ES256).
type Issuer struct {
	privateKey crypto.Signer
	appID      string
	issuer     string
	audience   string
	nowF       func() time.Time
}

// NewIssuer returns an Issuer for the given key and conferencing identifiers.
// appID is the application id registered with the provider; it prefixes every
// room name.
func NewIssuer(privateKey crypto.Signer, appID, issuer, audience string) *Issuer {
	return &Issuer{
		privateKey: privateKey,
		appID:      appID,
		issuer:     issuer,
		audience:   audience,
		nowF:       func() time.Time { return time.Now().UTC() },
	}
}

// RoomName derives the logical room for a session. Deterministic, so every
// join for the same session addresses the same room.
func (i *Issuer) RoomName(sessionID string) string {
	return i.appID + "/" + sessionID
}

// ExpiryWindow computes when a grant issued at now should expire.
// A grant issued before or during the session lives until the scheduled end
// plus the buffer (covers overruns); a grant issued after the scheduled end
// only buys a short grace window from now.
func ExpiryWindow(now, startTime, endTime time.Time, buffer time.Duration) time.Time {
	if now.After(endTime) {
		return now.Add(buffer)
	}
	return endTime.Add(buffer)
}

// Issue mints a signed token admitting the user to the session's room under
// the given role. buffer is the grace window added to the expiry.
func (i *Issuer) Issue(session *domain.Session, userID, displayName string, role domain.Role, buffer time.Duration) (*Grant, error) {
	now := i.nowF()
	expiresAt := ExpiryWindow(now, session.StartTime, session.EndTime, buffer)
	roomName := i.RoomName(session.ID)

	moderator := "false"
	if role == domain.RoleModerator {
		moderator = "true"
	}
	claims := RoomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   i.appID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-10 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Room: roomName,
		Context: ClaimsContext{
			User: ClaimsUser{ID: userID, Name: displayName, Moderator: moderator},
		},
	}

	token, err := i.sign(claims)
	if err != nil {
		return nil, fmt.Errorf("sign room token: %w", err)
	}
	return &Grant{
		UserID:    userID,
		SessionID: session.ID,
		Role:      role,
		RoomName:  roomName,
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
	}, nil
}

func (i *Issuer) sign(claims jwt.Claims) (string, error) {
	if i.privateKey == nil {
		return "", ErrInvalidSigningKey
	}
	alg := security.KeyAlg(i.privateKey.Public())
	if alg == "" {
		return "", ErrInvalidSigningKey
	}
	t := jwt.NewWithClaims(jwt.GetSigningMethod(alg), claims)
	t.Header["kid"] = i.appID
	return t.SignedString(i.privateKey)
}
