package users

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPseudoTaken        = errors.New("pseudo already in use")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

// User is an account. Pseudo and email are both unique.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Pseudo       string             `bson:"pseudo" json:"pseudo"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}

// RegisterInput is the body of POST /api/register.
type RegisterInput struct {
	Pseudo   string `json:"pseudo"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the body of POST /api/login. Identifier is an email, or a
// pseudo when it holds no "@".
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}
