package domain

import "time"

// User is an authenticated learner.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UploadedMaterial is a course document a user uploaded for scenario
// generation. Content holds the raw text or a base64 payload depending on
// the file type.
type UploadedMaterial struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId"`
	FileName   string         `json:"fileName"`
	FileType   string         `json:"fileType"`
	FileSize   int64          `json:"fileSize"`
	Content    string         `json:"content"`
	UploadedAt time.Time      `json:"uploadedAt"`
	Status     MaterialStatus `json:"status"`
}
