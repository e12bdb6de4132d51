package auth

import (
	"crypto/sha256"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/verdora/ordercore/internal/adapter/config"
	"github.com/verdora/ordercore/internal/core/domain"
	"github.com/verdora/ordercore/internal/core/port"
)

const tokenDuration = 24 * time.Hour

type PasetoToken struct {
	parser *paseto.Parser
	key    *paseto.V4SymmetricKey
}

// New derives the symmetric key from the configured secret so tokens issued
// by the identity collaborator stay valid across process restarts.
func New(cfg *config.Token) (port.TokenService, error) {
	material := sha256.Sum256([]byte(cfg.Secret))
	key, err := paseto.V4SymmetricKeyFromBytes(material[:])
	if err != nil {
		return nil, err
	}

	parser := paseto.NewParser()

	s := PasetoToken{
		parser: &parser,
		key:    &key,
	}

	return &s, nil
}

func (p *PasetoToken) CreateToken(payload *port.TokenPayload) (string, error) {
	token := paseto.NewToken()
	token.SetIssuedAt(time.Now())
	token.SetExpiration(time.Now().Add(tokenDuration))

	err := token.Set("payload", payload)
	if err != nil {
		return "", domain.ErrTokenCreation
	}

	return token.V4Encrypt(*p.key, nil), nil
}

func (p *PasetoToken) VerifyToken(token string) (*port.TokenPayload, error) {
	parsedToken, err := p.parser.ParseV4Local(*p.key, token, nil)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	payload := port.TokenPayload{}
	err = parsedToken.Get("payload", &payload)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return &payload, nil
}
