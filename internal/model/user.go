package model

import "time"

// User is the authenticated person a session belongs to
type User struct {
	ID          string    `json:"uid"`
	DisplayName string    `json:"displayName,omitempty"`
	Email       string    `json:"email,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// CachedProfile is the minimal profile kept in local state between sessions
type CachedProfile struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	FullName    string `json:"fullname,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}
