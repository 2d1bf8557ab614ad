package service

import (
	"context"
	"fmt"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

// NotificationService 通知读取与已读标记
type NotificationService interface {
	List(ctx context.Context, viewerID string, page, pageSize int) ([]model.NotificationView, error)
	// MarkRead ids 为空时标记全部
	MarkRead(ctx context.Context, viewerID string, ids []string) error
	CountUnread(ctx context.Context, viewerID string) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, viewerID string, page, pageSize int) ([]model.NotificationView, error) {
	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	offset, limit := pageToRange(page, pageSize)
	res, err := s.repo.ListByUser(ctx, viewerID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return res, nil
}

func (s *notificationService) MarkRead(ctx context.Context, viewerID string, ids []string) error {
	if viewerID == "" {
		return ErrUnauthenticated
	}
	return s.repo.MarkRead(ctx, viewerID, ids)
}

func (s *notificationService) CountUnread(ctx context.Context, viewerID string) (int64, error) {
	if viewerID == "" {
		return 0, ErrUnauthenticated
	}
	return s.repo.CountUnread(ctx, viewerID)
}
