package models

import "time"

const (
	UploadedByClient  = "client"
	UploadedByRealtor = "realtor"
)

// ClientDocument — файл в личном кабинете клиента.
type ClientDocument struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"clientId"`
	DealID     *string   `json:"dealId,omitempty"`
	FileName   string    `json:"fileName"`
	FileURL    string    `json:"fileUrl"`
	StorageKey string    `json:"-"`
	FileSize   int64     `json:"fileSize"`
	FileType   string    `json:"fileType"`
	Category   string    `json:"category"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}
