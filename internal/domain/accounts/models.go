package accounts

import "time"

type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	AvatarURL string    `json:"avatarURL,omitempty"`
	Role      string    `json:"role"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewEmployee struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type NewAccount struct {
	Name      string
	Email     string
	Phone     string
	Role      string
	CreatedBy string
}
