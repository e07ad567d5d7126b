package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gmportal/internal/db"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of the persistent credential: enough identity to
// render the chrome without a database hit, though the middleware reloads
// the account anyway so privilege changes take effect immediately. The
// token id doubles as the key of the mirrored legacy session.
type Claims struct {
	jwt.RegisteredClaims
	AccountID  int64  `json:"aid"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	CampaignID int64  `json:"cid"`
}

func (s *Service) issueToken(acc *db.Account) (Credential, string, error) {
	now := time.Now()
	expires := now.Add(s.ttl)
	jti := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		AccountID:  acc.ID,
		Name:       acc.Name,
		Username:   acc.Username,
		CampaignID: acc.CampaignID,
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Credential{}, "", err
	}
	return Credential{Token: signed, ExpiresAt: expires}, jti, nil
}

// ParseToken validates a credential and returns its claims.
func (s *Service) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
