package entities

import "time"

// EntityImage is the metadata row for an uploaded image. FilePath is relative
// to the upload root.
type EntityImage struct {
	ID           int        `json:"id"`
	CampaignID   int        `json:"campaign_id"`
	EntityType   EntityType `json:"entity_type"`
	EntityID     int        `json:"entity_id"`
	FilePath     string     `json:"file_path"`
	OriginalName string     `json:"original_name"`
	MimeType     string     `json:"mime_type"`
	SizeBytes    int64      `json:"size_bytes"`
	UploadedBy   int        `json:"uploaded_by"`
	CreatedAt    time.Time  `json:"created_at"`
}
