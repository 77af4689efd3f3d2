package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"library-circulation/internal/domain/user"
	"library-circulation/pkg/api"
)

type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	FullName        string
	Role            string
}

type LoginInput struct {
	Username string
	Password string
}

// Claims carried by a session token. Subject is the user_id and ID the
// token id used for revocation.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type SessionDTO = api.Session

type UserDTO = api.User

func toUserDTO(u *user.User) UserDTO {
	return UserDTO{UserID: u.UserID, Username: u.Username, FullName: u.FullName, Role: string(u.Role), Created: u.CreatedAt}
}
