package service

import (
	"course_hub_backend/internal/model"
	"course_hub_backend/internal/repository"
	"course_hub_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) GetUser(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUsers(page, limit int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.UserRepo.FindAll(page, limit)
}

type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"omitempty,max=100"`
	Avatar string `json:"avatar" binding:"omitempty,max=255"`
}

func (s *UserService) UpdateProfile(id uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}

	return user, s.UserRepo.Update(user)
}

func (s *UserService) DeleteUser(id uint) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}
	return s.UserRepo.Delete(id)
}
