package user

import (
	"context"
	"errors"

	"github.com/fkhayef/spartan/internal/database"
)

// Common errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already in use")
)

// Default listing parameters, matching the API's documented defaults.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100

	defaultSortColumn = "id"
	defaultSortDir    = "asc"
)

// sortColumns is the set of user attributes a listing may be ordered by.
// An unrecognized sort_by falls back to id, and an unrecognized
// sort_type falls back to ascending; invalid sort parameters are never
// an error.
var sortColumns = map[string]bool{
	"id":         true,
	"username":   true,
	"email":      true,
	"created_at": true,
	"updated_at": true,
}

// ListResult is one page of users plus pagination bookkeeping.
// FirstItem and LastItem are 1-based positions within the full ordered
// set; FirstItem is 0 when the page is empty.
type ListResult struct {
	Items    []*User
	Total    int
	LastPage int

	FirstItem int
	LastItem  int
}

// Service handles user business logic
type Service struct {
	repo *Repository
}

// NewService creates a new user service with repository dependency injected
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new user. Returns ErrDuplicateUser when the username
// or email is already taken.
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUser
	}

	user, err := s.repo.Create(ctx, req)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List retrieves one page of users ordered by the requested field.
//
// Pagination is offset-based: a page past the end yields an empty page,
// not an error, and ordering is not guaranteed stable across concurrent
// writes between page fetches.
func (s *Service) List(ctx context.Context, page, perPage int, sortBy, sortType string) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}

	column := sortBy
	if !sortColumns[column] {
		column = defaultSortColumn
	}
	dir := sortType
	if dir != "asc" && dir != "desc" {
		dir = defaultSortDir
	}

	offset := (page - 1) * perPage
	items, total, err := s.repo.List(ctx, perPage, offset, column, dir)
	if err != nil {
		return nil, err
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	result := &ListResult{
		Items:    items,
		Total:    total,
		LastPage: lastPage,
		LastItem: offset + len(items),
	}
	if len(items) > 0 {
		result.FirstItem = offset + 1
	}
	return result, nil
}

// Update applies a partial update to a user. Only the username can
// change; email and password are immutable after creation. Returns
// ErrUserNotFound when no user matches id, and ErrDuplicateUser when
// the new username is already taken.
func (s *Service) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	user, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Delete removes a user and returns the entity as it was before
// deletion. Returns ErrUserNotFound when no user matches id.
func (s *Service) Delete(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
