package application

import (
	"context"
	"strings"

	"github.com/iconforge/iconforge-backend/internal/domain/entity"
	"github.com/iconforge/iconforge-backend/internal/domain/repository"
)

// In-memory repositories mirroring the postgres implementations closely
// enough to exercise the service pipelines.

type fakeUserRepo struct {
	users  map[int64]*entity.User
	nextID int64

	getErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, ex := range r.users {
		if ex.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) SearchByName(_ context.Context, keyword string, limit int) ([]entity.UserSummary, error) {
	out := make([]entity.UserSummary, 0)
	for _, u := range r.users {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(u.Name), strings.ToLower(keyword)) {
			out = append(out, entity.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	return out, nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

type fakeProjectRepo struct {
	projects map[int64]*entity.Project
	members  []entity.ProjectMember
	nextID   int64

	createErr error
	updateErr error
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[int64]*entity.Project{}}
}

func (r *fakeProjectRepo) Create(_ context.Context, p *entity.Project, ownerID int64, memberIDs []int64) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, ex := range r.projects {
		if ex.Prefix == p.Prefix {
			return repository.ErrDuplicatePrefix
		}
	}
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.projects[p.ID] = &cp
	r.members = append(r.members, entity.ProjectMember{ProjectID: p.ID, UserID: ownerID, Role: entity.RoleOwner})
	for _, uid := range memberIDs {
		if uid == ownerID {
			continue
		}
		r.members = append(r.members, entity.ProjectMember{ProjectID: p.ID, UserID: uid, Role: entity.RoleMember})
	}
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id int64) (*entity.Project, error) {
	if p, ok := r.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProjectRepo) GetByPrefix(_ context.Context, prefix string) (*entity.Project, error) {
	for _, p := range r.projects {
		if p.Prefix == prefix {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProjectRepo) SummaryByPrefix(ctx context.Context, prefix string) (*entity.ProjectSummary, error) {
	p, err := r.GetByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return &entity.ProjectSummary{ID: p.ID, Name: p.Name, Prefix: p.Prefix, Desc: p.Desc, Total: p.Total}, nil
}

func (r *fakeProjectRepo) UpdateIconSet(_ context.Context, id int64, blob []byte, total int) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	p, ok := r.projects[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IconSetJSON = append([]byte(nil), blob...)
	p.Total = total
	return nil
}

func (r *fakeProjectRepo) UpdateLogo(_ context.Context, id int64, logo string) error {
	p, ok := r.projects[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Logo = logo
	return nil
}

func (r *fakeProjectRepo) ListByUser(_ context.Context, userID int64) ([]entity.ProjectSummary, error) {
	seen := map[int64]bool{}
	out := make([]entity.ProjectSummary, 0)
	for _, m := range r.members {
		if m.UserID != userID || seen[m.ProjectID] {
			continue
		}
		seen[m.ProjectID] = true
		p := r.projects[m.ProjectID]
		out = append(out, entity.ProjectSummary{ID: p.ID, Name: p.Name, Prefix: p.Prefix, Desc: p.Desc, Total: p.Total})
	}
	return out, nil
}

func (r *fakeProjectRepo) All(_ context.Context) ([]entity.Project, error) {
	out := make([]entity.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProjectRepo) AddMember(_ context.Context, projectID, userID int64, role int) error {
	for _, m := range r.members {
		if m.ProjectID == projectID && m.UserID == userID {
			return nil
		}
	}
	r.members = append(r.members, entity.ProjectMember{ProjectID: projectID, UserID: userID, Role: role})
	return nil
}

func (r *fakeProjectRepo) RemoveMember(_ context.Context, projectID, userID int64) error {
	kept := r.members[:0]
	for _, m := range r.members {
		if m.ProjectID == projectID && m.UserID == userID {
			continue
		}
		kept = append(kept, m)
	}
	r.members = kept
	return nil
}

func (r *fakeProjectRepo) ListMembers(_ context.Context, projectID int64) ([]entity.ProjectMember, error) {
	out := make([]entity.ProjectMember, 0)
	for _, m := range r.members {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) MemberInfo(_ context.Context, projectID, userID int64) ([]entity.ProjectMember, error) {
	out := make([]entity.ProjectMember, 0)
	for _, m := range r.members {
		if m.ProjectID == projectID && m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.ProjectRepository = (*fakeProjectRepo)(nil)
