package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResourceType string

const (
	ResourceTypeLink ResourceType = "link"
	ResourceTypeNote ResourceType = "note"
	ResourceTypeFile ResourceType = "file"
)

// ResourceContent is the kind-specific payload of a Resource.
// Exactly one of LinkContent, NoteContent or FileContent.
type ResourceContent interface {
	Type() ResourceType
	isResourceContent()
}

type LinkContent struct {
	URL string `json:"url"`
}

type NoteContent struct {
	Text string `json:"text"`
}

type FileContent struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mime_type"`
	Path     string `json:"-"`
}

func (LinkContent) Type() ResourceType { return ResourceTypeLink }
func (NoteContent) Type() ResourceType { return ResourceTypeNote }
func (FileContent) Type() ResourceType { return ResourceTypeFile }

func (LinkContent) isResourceContent() {}
func (NoteContent) isResourceContent() {}
func (FileContent) isResourceContent() {}

// Resource rows keep the columns of every variant; only the ones belonging
// to Type are populated. Use Content and SetContent rather than the columns.
type Resource struct {
	ID          uint64                      `gorm:"primarykey" json:"id"`
	UserID      uint64                      `gorm:"not null;index" json:"user_id"`
	GoalID      *uint64                     `gorm:"index" json:"goal_id"`
	Title       string                      `gorm:"type:varchar(200);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Category    string                      `gorm:"type:varchar(100);not null" json:"category"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Rating      int                         `gorm:"not null" json:"rating"`
	IsFavorite  bool                        `gorm:"not null" json:"is_favorite"`
	Type        ResourceType                `gorm:"type:varchar(20);not null" json:"type"`
	URL         string                      `gorm:"type:varchar(2048)" json:"-"`
	NoteText    string                      `gorm:"column:content;type:text" json:"-"`
	FileName    string                      `gorm:"type:varchar(255)" json:"-"`
	FileSize    int64                       `json:"-"`
	MIMEType    string                      `gorm:"type:varchar(100)" json:"-"`
	FilePath    string                      `gorm:"type:varchar(500)" json:"-"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	DeletedAt   gorm.DeletedAt              `gorm:"index" json:"-"`
}

// Content returns the variant stored in the row, or nil for an unknown type.
func (r *Resource) Content() ResourceContent {
	switch r.Type {
	case ResourceTypeLink:
		return LinkContent{URL: r.URL}
	case ResourceTypeNote:
		return NoteContent{Text: r.NoteText}
	case ResourceTypeFile:
		return FileContent{Name: r.FileName, Size: r.FileSize, MIMEType: r.MIMEType, Path: r.FilePath}
	}
	return nil
}

// SetContent replaces the variant and clears the columns of the others.
func (r *Resource) SetContent(content ResourceContent) {
	r.URL, r.NoteText = "", ""
	r.FileName, r.FileSize, r.MIMEType, r.FilePath = "", 0, "", ""

	switch c := content.(type) {
	case LinkContent:
		r.URL = c.URL
	case NoteContent:
		r.NoteText = c.Text
	case FileContent:
		r.FileName, r.FileSize, r.MIMEType, r.FilePath = c.Name, c.Size, c.MIMEType, c.Path
	}
	r.Type = content.Type()
}
