package port

const RoleAdmin = "admin"
const RoleUser = "user"

type TokenPayload struct {
	UserID uint64
	Role   string
}

//go:generate mockgen -source=auth.go -destination=mock/auth.go -package=mock
type TokenService interface {
	CreateToken(payload *TokenPayload) (string, error)
	VerifyToken(token string) (*TokenPayload, error)
}
