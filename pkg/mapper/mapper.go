package mapper

import (
	"github.com/facilidrive/facilidrive/pkg/models"
	"github.com/facilidrive/facilidrive/pkg/schemas"
)

func ToFolderOut(folder *models.Folder) *schemas.FolderOut {
	out := &schemas.FolderOut{
		ID:        folder.ID,
		Name:      folder.Name,
		Path:      folder.Path,
		ParentID:  folder.ParentID,
		Depth:     folder.Depth,
		CreatedBy: folder.CreatedBy,
		UpdatedAt: folder.UpdatedAt,
	}
	if folder.Category != nil {
		out.Category = folder.Category.String()
	}
	return out
}

func ToFileOut(file *models.File) *schemas.FileOut {
	out := &schemas.FileOut{
		ID:         file.ID,
		Name:       file.OriginalName,
		FolderID:   file.FolderID,
		Size:       file.FileSize,
		MimeType:   file.MimeType,
		Extension:  file.FileExtension,
		UploadedBy: file.UploadedBy,
		UpdatedAt:  file.UpdatedAt,
	}
	if file.Category != nil {
		out.Category = file.Category.String()
	}
	return out
}
