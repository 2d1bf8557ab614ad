package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// FeedCache feed 读路径的旁路缓存；nil 实现可直接跳过
type FeedCache interface {
	Get(ctx context.Context, viewerID string) ([]model.FeedPost, bool)
	Set(ctx context.Context, viewerID string, posts []model.FeedPost)
}

// PostService 帖子、feed、点赞与评论
type PostService interface {
	CreatePost(ctx context.Context, viewerID, content, image string) (*model.Post, error)
	// DeletePost 仅作者可删；连带清理点赞/评论/关联通知
	DeletePost(ctx context.Context, viewerID, postID string) error
	// GetFeed 自己 + 关注者的帖子，创建时间倒序；viewer 未同步返回空
	GetFeed(ctx context.Context, viewerID string) ([]model.FeedPost, error)
	GetUserPosts(ctx context.Context, userID string) ([]model.FeedPost, error)
	GetUserLikedPosts(ctx context.Context, userID string) ([]model.FeedPost, error)
	// ToggleLike 返回翻转后的状态（true = 已点赞）
	ToggleLike(ctx context.Context, viewerID, postID string) (bool, error)
	CreateComment(ctx context.Context, viewerID, postID, content string) (*model.Comment, error)
	// UpdateComment 仅作者可改
	UpdateComment(ctx context.Context, viewerID, commentID, content string) error
}

type postService struct {
	db          *gorm.DB
	postRepo    repository.PostRepository
	followRepo  repository.FollowRepository
	likeRepo    repository.LikeRepository
	commentRepo repository.CommentRepository
	feedCache   FeedCache
	invalidator ViewInvalidator
}

func NewPostService(db *gorm.DB, postRepo repository.PostRepository, followRepo repository.FollowRepository, likeRepo repository.LikeRepository, commentRepo repository.CommentRepository, feedCache FeedCache, invalidator ViewInvalidator) PostService {
	return &postService{
		db:          db,
		postRepo:    postRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
		feedCache:   feedCache,
		invalidator: invalidator,
	}
}

func (s *postService) CreatePost(ctx context.Context, viewerID, content, image string) (*model.Post, error) {
	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	p := &model.Post{ID: uuid.New().String(), AuthorID: viewerID, Content: content, Image: image}
	if err := s.postRepo.Create(ctx, p); err != nil {
		logger.Error("create post failed", zap.String("author", viewerID), zap.Error(err))
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.invalidator.Notify("post created")
	return p, nil
}

func (s *postService) DeletePost(ctx context.Context, viewerID, postID string) error {
	if viewerID == "" {
		return ErrUnauthenticated
	}
	p, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("lookup post: %w", err)
	}
	if p == nil {
		return ErrNotFound
	}
	if p.AuthorID != viewerID {
		return ErrUnauthorized
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.Notification{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", postID).Delete(&model.Post{}).Error
	})
	if err != nil {
		logger.Error("delete post failed", zap.String("post", postID), zap.Error(err))
		return fmt.Errorf("delete post: %w", err)
	}
	s.invalidator.Notify("post deleted")
	return nil
}

func (s *postService) GetFeed(ctx context.Context, viewerID string) ([]model.FeedPost, error) {
	// 匿名/未同步访客：空 feed 是合法状态
	if viewerID == "" {
		return []model.FeedPost{}, nil
	}
	if s.feedCache != nil {
		if cached, ok := s.feedCache.Get(ctx, viewerID); ok {
			return cached, nil
		}
	}

	authorIDs, err := s.followRepo.FolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("resolve followees: %w", err)
	}
	authorIDs = append(authorIDs, viewerID)

	posts, err := s.postRepo.ListByAuthors(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("load feed posts: %w", err)
	}

	feed, err := s.assemble(ctx, posts)
	if err != nil {
		return nil, err
	}
	if s.feedCache != nil {
		s.feedCache.Set(ctx, viewerID, feed)
	}
	return feed, nil
}

func (s *postService) GetUserPosts(ctx context.Context, userID string) ([]model.FeedPost, error) {
	posts, err := s.postRepo.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user posts: %w", err)
	}
	return s.assemble(ctx, posts)
}

func (s *postService) GetUserLikedPosts(ctx context.Context, userID string) ([]model.FeedPost, error) {
	posts, err := s.postRepo.ListLikedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load liked posts: %w", err)
	}
	return s.assemble(ctx, posts)
}

// assemble 批量装配帖子视图：作者摘要、升序评论、点赞集合与计数
func (s *postService) assemble(ctx context.Context, posts []*model.Post) ([]model.FeedPost, error) {
	if len(posts) == 0 {
		return []model.FeedPost{}, nil
	}

	postIDs := make([]string, len(posts))
	authorSet := make(map[string]struct{}, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
		authorSet[p.AuthorID] = struct{}{}
	}
	authorIDs := make([]string, 0, len(authorSet))
	for id := range authorSet {
		authorIDs = append(authorIDs, id)
	}

	var authors []*model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	authorByID := make(map[string]model.UserSummary, len(authors))
	for _, u := range authors {
		authorByID[u.ID] = u.Summary()
	}

	comments, err := s.commentRepo.ListByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	commentsByPost := make(map[string][]model.CommentView)
	for _, c := range comments {
		commentsByPost[c.PostID] = append(commentsByPost[c.PostID], c)
	}

	likes, err := s.likeRepo.ListByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}
	likersByPost := make(map[string][]string)
	for _, l := range likes {
		likersByPost[l.PostID] = append(likersByPost[l.PostID], l.UserID)
	}

	feed := make([]model.FeedPost, len(posts))
	for i, p := range posts {
		cs := commentsByPost[p.ID]
		if cs == nil {
			cs = []model.CommentView{}
		}
		likers := likersByPost[p.ID]
		if likers == nil {
			likers = []string{}
		}
		feed[i] = model.FeedPost{
			Post:         *p,
			Author:       authorByID[p.AuthorID],
			Comments:     cs,
			LikerIDs:     likers,
			LikeCount:    int64(len(likers)),
			CommentCount: int64(len(cs)),
		}
	}
	return feed, nil
}

func (s *postService) ToggleLike(ctx context.Context, viewerID, postID string) (bool, error) {
	if viewerID == "" {
		return false, ErrUnauthenticated
	}
	p, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, fmt.Errorf("lookup post: %w", err)
	}
	if p == nil {
		return false, ErrNotFound
	}

	liked, err := s.likeRepo.Exists(ctx, viewerID, postID)
	if err != nil {
		return false, fmt.Errorf("check like state: %w", err)
	}

	if liked {
		// LIKED -> NOT_LIKED：只删点赞
		if err := s.likeRepo.Delete(ctx, viewerID, postID); err != nil {
			logger.Error("unlike failed", zap.String("post", postID), zap.Error(err))
			return false, fmt.Errorf("unlike: %w", err)
		}
		s.invalidator.Notify("unlike")
		return false, nil
	}

	// NOT_LIKED -> LIKED：点赞 + LIKE 通知同事务落库（自己的帖子不通知）
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l := &model.Like{ID: uuid.New().String(), UserID: viewerID, PostID: postID}
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		if p.AuthorID == viewerID {
			return nil
		}
		n := &model.Notification{
			ID:        uuid.New().String(),
			Type:      model.NotificationLike,
			UserID:    p.AuthorID,
			CreatorID: viewerID,
			PostID:    postID,
		}
		return tx.Create(n).Error
	})
	if err != nil {
		logger.Error("like failed", zap.String("post", postID), zap.Error(err))
		return false, fmt.Errorf("like: %w", err)
	}
	s.invalidator.Notify("like")
	return true, nil
}

func (s *postService) CreateComment(ctx context.Context, viewerID, postID, content string) (*model.Comment, error) {
	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	if content == "" {
		return nil, ErrEmptyContent
	}
	p, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("lookup post: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}

	c := &model.Comment{ID: uuid.New().String(), PostID: postID, AuthorID: viewerID, Content: content}
	// 评论 + COMMENT 通知同事务落库（自己的帖子不通知）
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		if p.AuthorID == viewerID {
			return nil
		}
		n := &model.Notification{
			ID:        uuid.New().String(),
			Type:      model.NotificationComment,
			UserID:    p.AuthorID,
			CreatorID: viewerID,
			PostID:    postID,
			CommentID: c.ID,
		}
		return tx.Create(n).Error
	})
	if err != nil {
		logger.Error("create comment failed", zap.String("post", postID), zap.Error(err))
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.invalidator.Notify("comment created")
	return c, nil
}

func (s *postService) UpdateComment(ctx context.Context, viewerID, commentID, content string) error {
	if viewerID == "" {
		return ErrUnauthenticated
	}
	if content == "" {
		return ErrEmptyContent
	}
	c, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("lookup comment: %w", err)
	}
	if c == nil {
		return ErrNotFound
	}
	if c.AuthorID != viewerID {
		return ErrUnauthorized
	}
	if err := s.commentRepo.UpdateContent(ctx, commentID, content); err != nil {
		logger.Error("update comment failed", zap.String("comment", commentID), zap.Error(err))
		return fmt.Errorf("update comment: %w", err)
	}
	s.invalidator.Notify("comment updated")
	return nil
}
