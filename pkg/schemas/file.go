package schemas

import "time"

type FileOut struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FolderID   *string   `json:"folderId,omitempty"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimeType"`
	Extension  string    `json:"extension,omitempty"`
	Category   string    `json:"category,omitempty"`
	UploadedBy int64     `json:"uploadedBy"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type FileListResponse struct {
	Files []FileOut `json:"files"`
}

type FileMove struct {
	FolderID *string `json:"folderId"`
}

// UploadOutcome reports one file of a multi-file upload. Files are accepted
// or rejected independently; a request can partially succeed.
type UploadOutcome struct {
	Name  string   `json:"name"`
	File  *FileOut `json:"file,omitempty"`
	Error string   `json:"error,omitempty"`
}

type UploadResponse struct {
	Results []UploadOutcome `json:"results"`
}

type Message struct {
	Message string `json:"message"`
}
