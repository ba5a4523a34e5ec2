package entity

import "time"

// Member roles within a project.
const (
	RoleMember = 0
	RoleOwner  = 1
)

// Project owns exactly one icon set document. The document is mirrored to a
// file snapshot keyed by Prefix and to the IconSetJSON column; the two must
// stay byte-identical.
type Project struct {
	ID          int64     `json:"id"`
	Prefix      string    `json:"prefix"`
	Name        string    `json:"name"`
	Desc        string    `json:"desc"`
	Logo        string    `json:"logo,omitempty"`
	Total       int       `json:"total"`
	IconSetJSON []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectSummary is the projection returned by project listings.
type ProjectSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
	Desc   string `json:"desc"`
	Total  int    `json:"total"`
}

// ProjectMember joins a user to a project with a role. The creator is always
// inserted with RoleOwner at project-creation time.
type ProjectMember struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	UserID    int64     `json:"user_id"`
	Role      int       `json:"role"`
	UserName  string    `json:"user_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
