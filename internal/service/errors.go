package service

import "errors"

var (
	ErrFollowSelf      = errors.New("cannot follow self")
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("no permission")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrEmptyContent    = errors.New("content can't be empty")
)

// ViewInvalidator 变更后发出的视图失效信号（fire-and-forget）
type ViewInvalidator interface {
	Notify(reason string)
}
