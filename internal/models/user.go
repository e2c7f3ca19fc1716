package models

import "time"

// User — риелтор (внутренний пользователь CRM).
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // не отдаём наружу
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Expires  time.Time `json:"expires"`
}

// ClientAccount — личный кабинет клиента.
type ClientAccount struct {
	ClientID           string     `json:"clientId"`
	Login              string     `json:"login"`
	PasswordHash       string     `json:"-"`
	IsActive           bool       `json:"isActive"`
	MustChangePassword bool       `json:"mustChangePassword"`
	ConsentGiven       bool       `json:"consentGiven"`
	ConsentAt          *time.Time `json:"consentAt,omitempty"`
	ConsentIP          *string    `json:"-"`
	ConsentUserAgent   *string    `json:"-"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type ClientLoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ClientAuthResponse struct {
	Token      string    `json:"token"`
	ClientName string    `json:"clientName"`
	Expires    time.Time `json:"expires"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required"`
}

type ConsentRequest struct {
	AcceptPersonalData    bool   `json:"acceptPersonalData"`
	AcceptDocumentStorage bool   `json:"acceptDocumentStorage"`
	IPAddress             string `json:"ipAddress"`
	UserAgent             string `json:"userAgent"`
}

type ActivateAccountRequest struct {
	TemporaryPassword string `json:"temporaryPassword" binding:"required"`
}
