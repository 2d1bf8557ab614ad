package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// ExternalProfile 外部认证方下发的档案字段
type ExternalProfile struct {
	ExternalID string
	FirstName  string
	LastName   string
	Username   string
	Email      string
	Image      string
}

// ProfileView 账号 + 关注/粉丝/帖子计数
type ProfileView struct {
	model.User
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Posts     int64 `json:"posts"`
}

// Suggestion 推荐候选 + 粉丝数
type Suggestion struct {
	model.UserSummary
	Followers int64 `json:"followers"`
}

// UserService 账号、关注关系与推荐
type UserService interface {
	// SyncUser 首次见到外部身份时幂等建账号
	SyncUser(ctx context.Context, p ExternalProfile) (*model.User, error)
	// ResolveViewer 外部身份 -> 内部账号 ID；未同步返回 ""（不视为错误）
	ResolveViewer(ctx context.Context, externalID string) (string, error)
	GetProfileByExternalID(ctx context.Context, externalID string) (*ProfileView, error)
	GetProfileByUsername(ctx context.Context, username string) (*ProfileView, error)
	IsFollowing(ctx context.Context, viewerID, targetID string) (bool, error)
	// ToggleFollow 关注状态翻转，返回面向用户的结果文案
	ToggleFollow(ctx context.Context, viewerID, targetID string) (string, error)
	ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]model.UserSummary, error)
	ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]model.UserSummary, error)
	// SuggestRecent 模式 A：最近注册的账号，排除自己，最多 3 条
	SuggestRecent(ctx context.Context, viewerID string) ([]Suggestion, error)
	// SuggestFollowOfFollows 模式 B：两跳图推荐，最多 6 条
	SuggestFollowOfFollows(ctx context.Context, viewerID string) ([]Suggestion, error)
}

type userService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	postRepo    repository.PostRepository
	invalidator ViewInvalidator
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, followRepo repository.FollowRepository, postRepo repository.PostRepository, invalidator ViewInvalidator) UserService {
	return &userService{db: db, userRepo: userRepo, followRepo: followRepo, postRepo: postRepo, invalidator: invalidator}
}

func (s *userService) SyncUser(ctx context.Context, p ExternalProfile) (*model.User, error) {
	existing, err := s.userRepo.GetByExternalID(ctx, p.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("lookup user by external id: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	username := p.Username
	if username == "" {
		// 无 username 时取邮箱本地部分
		username = strings.SplitN(p.Email, "@", 2)[0]
	}
	u := &model.User{
		ID:         uuid.New().String(),
		ExternalID: p.ExternalID,
		Name:       strings.TrimSpace(p.FirstName + " " + p.LastName),
		Username:   username,
		Email:      p.Email,
		Image:      p.Image,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		// 并发首登：唯一键冲突则读已有记录
		if again, lookupErr := s.userRepo.GetByExternalID(ctx, p.ExternalID); lookupErr == nil && again != nil {
			return again, nil
		}
		logger.Error("sync user failed", zap.String("external_id", p.ExternalID), zap.Error(err))
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *userService) ResolveViewer(ctx context.Context, externalID string) (string, error) {
	if externalID == "" {
		return "", nil
	}
	u, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return "", fmt.Errorf("resolve viewer: %w", err)
	}
	if u == nil {
		return "", nil
	}
	return u.ID, nil
}

func (s *userService) GetProfileByExternalID(ctx context.Context, externalID string) (*ProfileView, error) {
	u, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return s.profile(ctx, u)
}

func (s *userService) GetProfileByUsername(ctx context.Context, username string) (*ProfileView, error) {
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return s.profile(ctx, u)
}

func (s *userService) profile(ctx context.Context, u *model.User) (*ProfileView, error) {
	followers, err := s.followRepo.CountFollowers(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.CountByAuthor(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: *u, Followers: followers, Following: following, Posts: posts}, nil
}

func (s *userService) IsFollowing(ctx context.Context, viewerID, targetID string) (bool, error) {
	if viewerID == "" {
		return false, nil
	}
	return s.followRepo.Exists(ctx, viewerID, targetID)
}

func (s *userService) ToggleFollow(ctx context.Context, viewerID, targetID string) (string, error) {
	if viewerID == "" {
		return "", ErrUnauthenticated
	}
	if viewerID == targetID {
		return "", ErrFollowSelf
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return "", fmt.Errorf("lookup follow target: %w", err)
	}
	if target == nil {
		return "", ErrNotFound
	}

	exists, err := s.followRepo.Exists(ctx, viewerID, targetID)
	if err != nil {
		return "", fmt.Errorf("check follow state: %w", err)
	}

	if exists {
		// FOLLOWING -> NOT_FOLLOWING：只删边，不清理历史通知
		if err := s.followRepo.Delete(ctx, viewerID, targetID); err != nil {
			logger.Error("unfollow failed", zap.String("viewer", viewerID), zap.String("target", targetID), zap.Error(err))
			return "", fmt.Errorf("unfollow: %w", err)
		}
		s.invalidator.Notify("unfollow")
		return fmt.Sprintf("Unfollowed @%s", target.Username), nil
	}

	// NOT_FOLLOWING -> FOLLOWING：边 + FOLLOW 通知同事务落库
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f := &model.Follow{ID: uuid.New().String(), FollowerID: viewerID, FolloweeID: targetID}
		if err := tx.Create(f).Error; err != nil {
			return err
		}
		n := &model.Notification{
			ID:        uuid.New().String(),
			Type:      model.NotificationFollow,
			UserID:    targetID,
			CreatorID: viewerID,
		}
		return tx.Create(n).Error
	})
	if err != nil {
		logger.Error("follow failed", zap.String("viewer", viewerID), zap.String("target", targetID), zap.Error(err))
		return "", fmt.Errorf("follow: %w", err)
	}
	s.invalidator.Notify("follow")
	return fmt.Sprintf("You are now following @%s", target.Username), nil
}

func (s *userService) ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]model.UserSummary, error) {
	offset, limit := pageToRange(page, pageSize)
	users, err := s.followRepo.ListFollowing(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return summaries(users), nil
}

func (s *userService) ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]model.UserSummary, error) {
	offset, limit := pageToRange(page, pageSize)
	users, err := s.followRepo.ListFollowers(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return summaries(users), nil
}

const (
	recentSuggestLimit = 3
	graphSuggestLimit  = 6
)

func (s *userService) SuggestRecent(ctx context.Context, viewerID string) ([]Suggestion, error) {
	users, err := s.userRepo.ListRecent(ctx, viewerID, recentSuggestLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent users: %w", err)
	}
	return s.suggestions(ctx, users)
}

func (s *userService) SuggestFollowOfFollows(ctx context.Context, viewerID string) ([]Suggestion, error) {
	// hop 1：我关注的人
	followees, err := s.followRepo.FolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("hop1: %w", err)
	}
	if len(followees) == 0 {
		// 无关注则无候选；不回退到随机推荐
		return nil, nil
	}

	// hop 2：我关注的人关注的人
	secondHop, err := s.followRepo.FolloweeIDsOf(ctx, followees)
	if err != nil {
		return nil, fmt.Errorf("hop2: %w", err)
	}

	// 排除自己与已关注
	known := make(map[string]struct{}, len(followees)+1)
	known[viewerID] = struct{}{}
	for _, id := range followees {
		known[id] = struct{}{}
	}
	candidates := make([]string, 0, len(secondHop))
	for _, id := range secondHop {
		if _, ok := known[id]; !ok {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	users, err := s.userRepo.ListByIDsRecent(ctx, candidates, graphSuggestLimit)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return s.suggestions(ctx, users)
}

func (s *userService) suggestions(ctx context.Context, users []*model.User) ([]Suggestion, error) {
	res := make([]Suggestion, 0, len(users))
	for _, u := range users {
		followers, err := s.followRepo.CountFollowers(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		res = append(res, Suggestion{UserSummary: u.Summary(), Followers: followers})
	}
	return res, nil
}

func pageToRange(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return (page - 1) * pageSize, pageSize
}

func summaries(users []*model.User) []model.UserSummary {
	res := make([]model.UserSummary, len(users))
	for i, u := range users {
		res[i] = u.Summary()
	}
	return res
}
