package models

import "time"

type ClientSource string

const (
	SourceWebsite      ClientSource = "website"
	SourceTelegram     ClientSource = "telegram"
	SourcePhoneCall    ClientSource = "phone_call"
	SourceInstagramAds ClientSource = "instagram_ads"
)

func (s ClientSource) Valid() bool {
	switch s {
	case SourceWebsite, SourceTelegram, SourcePhoneCall, SourceInstagramAds:
		return true
	}
	return false
}

// Client represents a buyer, seller or tenant working with the realtor.
type Client struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name"`
	Phone                 string       `json:"phone"`
	Email                 *string      `json:"email,omitempty"`
	Source                ClientSource `json:"source"`
	Notes                 *string      `json:"notes,omitempty"`
	CreatedAt             time.Time    `json:"createdAt"`
	HasPersonalAccount    bool         `json:"hasPersonalAccount"`
	IsAccountActive       bool         `json:"isAccountActive"`
	ConsentToPersonalData bool         `json:"consentToPersonalData"`
}

type ClientRequest struct {
	Name   string       `json:"name" binding:"required"`
	Phone  string       `json:"phone" binding:"required"`
	Email  *string      `json:"email,omitempty"`
	Source ClientSource `json:"source"`
	Notes  *string      `json:"notes,omitempty"`
}
