package models

import "time"

// роли пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет пользователя магазина
type User struct {
	ID        int64
	Username  string
	PassHash  []byte
	Email     string
	Role      string
	CreatedAt time.Time
}

// Identity - то, что хранится в сессии (или в JWT) после успешного входа
type Identity struct {
	ID       int64
	Username string
	Role     string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Identity возвращает данные пользователя для сессии
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}
