package repository

import (
	"context"
	"errors"

	"github.com/iconforge/iconforge-backend/internal/domain/entity"
)

var ErrDuplicatePrefix = errors.New("prefix already exists")

// ProjectRepository defines database operations for projects, their icon set
// blobs, and membership rows.
type ProjectRepository interface {
	// Create inserts the project together with its membership rows in one
	// transaction: the owner with RoleOwner plus memberIDs with RoleMember.
	Create(ctx context.Context, p *entity.Project, ownerID int64, memberIDs []int64) error
	GetByID(ctx context.Context, id int64) (*entity.Project, error)
	GetByPrefix(ctx context.Context, prefix string) (*entity.Project, error)
	SummaryByPrefix(ctx context.Context, prefix string) (*entity.ProjectSummary, error)
	// UpdateIconSet replaces the icon set blob and total for the project.
	UpdateIconSet(ctx context.Context, id int64, blob []byte, total int) error
	UpdateLogo(ctx context.Context, id int64, logo string) error
	ListByUser(ctx context.Context, userID int64) ([]entity.ProjectSummary, error)
	All(ctx context.Context) ([]entity.Project, error)

	AddMember(ctx context.Context, projectID, userID int64, role int) error
	RemoveMember(ctx context.Context, projectID, userID int64) error
	ListMembers(ctx context.Context, projectID int64) ([]entity.ProjectMember, error)
	MemberInfo(ctx context.Context, projectID, userID int64) ([]entity.ProjectMember, error)
}
