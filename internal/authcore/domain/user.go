package domain

import "time"

type User struct {
	ID             string
	Username       string
	CredentialHash string // scrypt encoded, hex(key).hex(salt)
	Role           string
	SubRole        string // empty for roles without sub-roles
	Organization   string // employer or insurer org, empty for patients
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
