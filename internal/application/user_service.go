package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iconforge/iconforge-backend/internal/domain/entity"
	repo "github.com/iconforge/iconforge-backend/internal/domain/repository"
	"github.com/iconforge/iconforge-backend/pkg/helpers"
	"github.com/iconforge/iconforge-backend/pkg/mailer"
)

// Error strings below are part of the wire contract with existing clients.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrWrongPassword  = errors.New("email or pwd error")
	ErrEmailTaken     = errors.New("email already registered")
	ErrInvalidRefresh = errors.New("invalid refresh token")
)

// TokenPair carries both signed tokens issued for a session.
type TokenPair struct {
	Access  string
	Refresh string
}

type UserService struct {
	Repo         repo.UserRepository
	JWT          *helpers.JWTManager
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	Mail         *helpers.RabbitPublisher
	MailEnabled  bool
}

func NewUserService(r repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string, mail *helpers.RabbitPublisher, mailEnabled bool) *UserService {
	return &UserService{
		Repo:         r,
		JWT:          jwt,
		Redis:        rdb,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		Mail:         mail,
		MailEnabled:  mailEnabled,
	}
}

func sessionKey(userID int64) string {
	return "user:session:" + strconv.FormatInt(userID, 10)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Register creates the user with a bcrypt-hashed password and issues signed
// tokens. The returned user never carries the password.
func (s *UserService) Register(ctx context.Context, email, name, pwd string) (*entity.User, TokenPair, error) {
	hash, err := helpers.HashPassword(pwd)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u := &entity.User{Email: email, Name: name, Password: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, err
	}

	_ = s.indexUser(ctx, u)

	if s.Mail != nil && s.MailEnabled {
		if err := s.Mail.PublishJSON(ctx, mailer.WelcomeEmail(u.Email, u.Name)); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
		}
	}

	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Login validates credentials and issues tokens. Failures never return a
// token.
func (s *UserService) Login(ctx context.Context, email, pwd string) (*entity.User, TokenPair, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, TokenPair{}, ErrUserNotFound
		}
		return nil, TokenPair{}, err
	}
	if !helpers.CompareHashAndPassword(u.Password, pwd) {
		return nil, TokenPair{}, ErrWrongPassword
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The session id
// rotates, so earlier tokens for the session stop validating.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*entity.User, TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidRefresh
	}
	if s.Redis != nil {
		data, err := s.Redis.HGetAll(ctx, sessionKey(claims.UserID)).Result()
		if err != nil || len(data) == 0 || (claims.SessionID != "" && data["sid"] != claims.SessionID) {
			return nil, TokenPair{}, ErrInvalidRefresh
		}
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, TokenPair{}, ErrUserNotFound
		}
		return nil, TokenPair{}, err
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// issueTokens generates the token pair and records a session in Redis.
func (s *UserService) issueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, _, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, _, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Logout drops the Redis session so the current token stops passing the
// session check even before it expires.
func (s *UserService) Logout(ctx context.Context, userID int64) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(ctx, sessionKey(userID)).Err()
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Search finds users by keyword. An empty keyword returns an empty list
// without touching any store. Elasticsearch is preferred; the repository
// ILIKE query serves as fallback when ES is not configured.
func (s *UserService) Search(ctx context.Context, keyword string, size int) ([]entity.UserSummary, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []entity.UserSummary{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	if s.ES == nil || s.ESUsersIndex == "" {
		return s.Repo.SearchByName(ctx, keyword, size)
	}
	return s.searchES(ctx, keyword, size)
}

func (s *UserService) searchES(ctx context.Context, keyword string, size int) ([]entity.UserSummary, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  keyword,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source entity.UserSummary `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.UserSummary, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESUsersIndex,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}
