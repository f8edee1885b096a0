package schemas

import "time"

type FolderIn struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parentId"`
}

type FolderRename struct {
	Name string `json:"name" binding:"required"`
}

type FolderMove struct {
	ParentID *string `json:"parentId"`
}

type FolderOut struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	ParentID  *string   `json:"parentId,omitempty"`
	Depth     int       `json:"depth"`
	Category  string    `json:"category,omitempty"`
	CreatedBy int64     `json:"createdBy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type FolderListResponse struct {
	Folders []FolderOut `json:"folders"`
}

type BreadcrumbSegment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BreadcrumbOut struct {
	Path     string              `json:"path"`
	Segments []BreadcrumbSegment `json:"segments"`
}

type SubtreeResponse struct {
	Folders []FolderOut `json:"folders"`
}

type DeleteResult struct {
	Folders  int64    `json:"folders"`
	Files    int64    `json:"files"`
	Warnings []string `json:"warnings,omitempty"`
}
