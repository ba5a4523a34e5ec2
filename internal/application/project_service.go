package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iconforge/iconforge-backend/internal/domain/entity"
	repo "github.com/iconforge/iconforge-backend/internal/domain/repository"
	"github.com/iconforge/iconforge-backend/internal/infrastructure/snapshot"
	"github.com/iconforge/iconforge-backend/pkg/helpers"
	"github.com/iconforge/iconforge-backend/pkg/iconset"
)

var (
	ErrProjectNotFound = errors.New("project is not found")
	ErrPrefixExists    = errors.New("iconset existed")
)

// CollectionsCacheKey is the redis hash holding the served collection JSON
// per prefix. Icon mutations drop it; the snapshot worker rebuilds it.
const CollectionsCacheKey = "iconsets:collections"

const infoCacheTTL = 5 * time.Minute

func infoCacheKey(prefix string) string {
	return "iconsets:info:" + prefix
}

// IconSetUpdatedEvent is published after every icon set mutation so the
// serving side can refresh its snapshot of the data.
type IconSetUpdatedEvent struct {
	ProjectID int64     `json:"project_id"`
	Prefix    string    `json:"prefix"`
	Total     int       `json:"total"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProjectService struct {
	Repo      repo.ProjectRepository
	Snapshots *snapshot.Store
	Redis     *redis.Client
	Events    *helpers.RabbitPublisher
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewProjectService(r repo.ProjectRepository, snapshots *snapshot.Store, rdb *redis.Client, events *helpers.RabbitPublisher, gcs *storage.Client, gcsBucket string, logger *logrus.Logger) *ProjectService {
	return &ProjectService{
		Repo:      r,
		Snapshots: snapshots,
		Redis:     rdb,
		Events:    events,
		GCS:       gcs,
		GCSBucket: gcsBucket,
		Logger:    logger,
	}
}

type CreateProjectInput struct {
	Prefix  string
	Name    string
	Desc    string
	UserIDs []int64
	Logo    string
}

// CreateProject builds an empty icon set document for the prefix, writes the
// file snapshot, then creates the project row plus membership rows (owner
// role 1, the rest role 0) in one transaction. A snapshot file already
// present for the prefix fails the call before any write: the check catches
// both an earlier project and a file left behind without a matching row.
func (s *ProjectService) CreateProject(ctx context.Context, owner *entity.User, in CreateProjectInput) (json.RawMessage, error) {
	exists, err := s.Snapshots.Exists(in.Prefix)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s %w", in.Prefix, ErrPrefixExists)
	}

	set := iconset.New(in.Prefix, in.Name, owner.Name)
	blob, err := set.Export()
	if err != nil {
		return nil, err
	}

	if err := s.Snapshots.Write(in.Prefix, blob); err != nil {
		return nil, err
	}

	p := &entity.Project{
		Prefix:      in.Prefix,
		Name:        in.Name,
		Desc:        in.Desc,
		Logo:        in.Logo,
		Total:       0,
		IconSetJSON: blob,
	}
	if err := s.Repo.Create(ctx, p, owner.ID, in.UserIDs); err != nil {
		// compensate the write-ahead file so no orphan snapshot remains
		if rmErr := s.Snapshots.Remove(in.Prefix); rmErr != nil && s.Logger != nil {
			s.Logger.WithError(rmErr).WithField("prefix", in.Prefix).Error("orphan snapshot left after failed create")
		}
		if errors.Is(err, repo.ErrDuplicatePrefix) {
			return nil, fmt.Errorf("%s %w", in.Prefix, ErrPrefixExists)
		}
		return nil, err
	}

	s.invalidate(ctx, p)
	return blob, nil
}

// AddIcons inserts each supplied icon whose name is not already present.
// Existing names are left untouched: first write wins, no merge.
func (s *ProjectService) AddIcons(ctx context.Context, projectID int64, icons map[string]iconset.Icon) error {
	return s.mutateIconSet(ctx, projectID, func(set *iconset.IconSet) {
		for name, icon := range icons {
			set.SetIcon(name, icon)
		}
	})
}

// RemoveIcons deletes each named icon if present; absent names are no-ops.
func (s *ProjectService) RemoveIcons(ctx context.Context, projectID int64, names []string) error {
	return s.mutateIconSet(ctx, projectID, func(set *iconset.IconSet) {
		for _, name := range names {
			set.Remove(name)
		}
	})
}

// mutateIconSet is the single pipeline every icon mutation goes through:
// load the project, apply the mutation, export once, write the file
// snapshot, update the database row with the same bytes, invalidate
// downstream. A failed database write restores the previous file content so
// the two targets cannot diverge.
func (s *ProjectService) mutateIconSet(ctx context.Context, projectID int64, mutate func(*iconset.IconSet)) error {
	p, err := s.Repo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	set, err := iconset.Parse(p.IconSetJSON)
	if err != nil {
		return err
	}
	mutate(set)

	blob, err := set.Export()
	if err != nil {
		return err
	}

	prev, prevErr := s.Snapshots.Read(p.Prefix)
	if prevErr != nil && !errors.Is(prevErr, snapshot.ErrNotFound) {
		return prevErr
	}

	if err := s.Snapshots.Write(p.Prefix, blob); err != nil {
		return err
	}
	if err := s.Repo.UpdateIconSet(ctx, p.ID, blob, set.Count()); err != nil {
		if prevErr == nil {
			_ = s.Snapshots.Write(p.Prefix, prev)
		} else {
			_ = s.Snapshots.Remove(p.Prefix)
		}
		return err
	}

	p.IconSetJSON = blob
	p.Total = set.Count()
	s.invalidate(ctx, p)
	return nil
}

// invalidate drops the served collections cache and notifies the serving
// side. Both are best-effort; the persisted aggregate is already consistent.
func (s *ProjectService) invalidate(ctx context.Context, p *entity.Project) {
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, CollectionsCacheKey, infoCacheKey(p.Prefix)).Err(); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("collections cache invalidation failed")
		}
	}
	if s.Events != nil {
		ev := IconSetUpdatedEvent{ProjectID: p.ID, Prefix: p.Prefix, Total: p.Total, UpdatedAt: time.Now().UTC()}
		if err := s.Events.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("prefix", p.Prefix).Warn("publish iconset update failed")
		}
	}
}

// ListProjects returns a summary for every project the user belongs to.
func (s *ProjectService) ListProjects(ctx context.Context, userID int64) ([]entity.ProjectSummary, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// ProjectInfo merges the database summary with the collection response built
// from the file snapshot; collection fields take precedence. The merged
// object is cached briefly in Redis; mutations drop the entry.
func (s *ProjectService) ProjectInfo(ctx context.Context, prefix string) (map[string]any, error) {
	if s.Redis != nil {
		var cached map[string]any
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, infoCacheKey(prefix), &cached); err == nil && ok {
			return cached, nil
		}
	}

	out := map[string]any{}

	if summary, err := s.Repo.SummaryByPrefix(ctx, prefix); err == nil {
		out["id"] = summary.ID
		out["name"] = summary.Name
		out["prefix"] = summary.Prefix
		out["desc"] = summary.Desc
		out["total"] = summary.Total
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	col, err := BuildCollection(s.Snapshots, prefix)
	if err != nil {
		return nil, err
	}
	for k, v := range col.Fields() {
		out[k] = v
	}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, infoCacheKey(prefix), out, infoCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("prefix", prefix).Warn("info cache write failed")
		}
	}
	return out, nil
}

// PackJSON returns the stored icon set blob for the project.
func (s *ProjectService) PackJSON(ctx context.Context, projectID int64) (json.RawMessage, error) {
	p, err := s.Repo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p.IconSetJSON, nil
}

// UploadLogo stores the image in GCS and persists the public URL on the
// project row.
func (s *ProjectService) UploadLogo(ctx context.Context, projectID int64, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	p, err := s.Repo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrProjectNotFound
		}
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("logos", strconvID(p.ID), uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.Repo.UpdateLogo(ctx, p.ID, url); err != nil {
		return "", err
	}
	return url, nil
}

// AddMember creates a membership row with the regular role. Duplicate adds
// are idempotent per (project, user) pair.
func (s *ProjectService) AddMember(ctx context.Context, projectID, userID int64) error {
	return s.Repo.AddMember(ctx, projectID, userID, entity.RoleMember)
}

// RemoveMember deletes all membership rows for the pair.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, userID int64) error {
	return s.Repo.RemoveMember(ctx, projectID, userID)
}

func (s *ProjectService) MemberList(ctx context.Context, projectID int64) ([]entity.ProjectMember, error) {
	return s.Repo.ListMembers(ctx, projectID)
}

func (s *ProjectService) MemberInfo(ctx context.Context, projectID, userID int64) ([]entity.ProjectMember, error) {
	return s.Repo.MemberInfo(ctx, projectID, userID)
}

// Reconcile runs at startup and rewrites every snapshot file whose bytes
// differ from the database blob. The database wins: it is the target written
// last, so a crash inside the dual write leaves the file stale, not the row.
func (s *ProjectService) Reconcile(ctx context.Context) error {
	projects, err := s.Repo.All(ctx)
	if err != nil {
		return err
	}
	repaired := 0
	for i := range projects {
		p := &projects[i]
		data, err := s.Snapshots.Read(p.Prefix)
		if err != nil && !errors.Is(err, snapshot.ErrNotFound) {
			return err
		}
		if err == nil && bytes.Equal(data, p.IconSetJSON) {
			continue
		}
		if err := s.Snapshots.Write(p.Prefix, p.IconSetJSON); err != nil {
			return err
		}
		repaired++
	}
	if s.Logger != nil && repaired > 0 {
		s.Logger.WithField("repaired", repaired).Info("snapshot reconciliation rewrote diverged files")
	}
	return nil
}

func strconvID(id int64) string {
	return fmt.Sprintf("%d", id)
}
