package domain

import (
	"time"

	"github.com/aussiebroadwan/lessondesk/pkg/session"
)

type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2 encoded
	Role         session.Role
	CreatedAt    time.Time
}
