package services

import (
	"context"

	"yatube/app/models"
	"yatube/app/repositories"
)

// GroupService manages groups. Groups are created by operators, not users.
type GroupService struct {
	groups repositories.GroupRepository
}

func NewGroupService(groups repositories.GroupRepository) *GroupService {
	return &GroupService{groups: groups}
}

func (s *GroupService) CreateGroup(ctx context.Context, title, slug, description string) (*models.Group, error) {
	group := &models.Group{Title: title, Slug: slug, Description: description}
	if err := group.Validate(); err != nil {
		return nil, validationError(err, nil)
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, storageError(err, "group")
	}
	return group, nil
}

func (s *GroupService) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, storageError(err, "group")
	}
	return group, nil
}

func (s *GroupService) List(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, storageError(err, "groups")
	}
	return groups, nil
}

// DeleteGroup detaches the group's posts and removes the group.
func (s *GroupService) DeleteGroup(ctx context.Context, slug string) error {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return storageError(err, "group")
	}
	return storageError(s.groups.Delete(ctx, group.ID), "group")
}
