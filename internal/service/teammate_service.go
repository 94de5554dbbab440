package service

import (
	"context"

	"renova-rooms/internal/domain"
	"renova-rooms/internal/repository"

	"go.uber.org/zap"
)

// TeammateService 队友基础操作（生命周期在本服务域之外，这里只做建档与查询）
type TeammateService interface {
	CreateTeammate(ctx context.Context, req CreateTeammateRequest) (*TeammateResponse, error)
	GetTeammate(ctx context.Context, req GetTeammateRequest) (*TeammateResponse, error)
}

type teammateService struct {
	teammates repository.TeammatesRepository
	logger    *zap.Logger
}

// NewTeammateService 创建 TeammateService 实例
func NewTeammateService(teammates repository.TeammatesRepository, logger *zap.Logger) TeammateService {
	return &teammateService{teammates: teammates, logger: logger}
}

type CreateTeammateRequest struct {
	TeammateName string
}

type GetTeammateRequest struct {
	TeammateID string
}

type TeammateResponse struct {
	Teammate *domain.Teammate `json:"teammate"`
}

func (s *teammateService) CreateTeammate(ctx context.Context, req CreateTeammateRequest) (*TeammateResponse, error) {
	if req.TeammateName == "" {
		return nil, domain.NewValidationError("teammate_name is required")
	}
	teammate := &domain.Teammate{TeammateName: req.TeammateName, Items: []string{}}
	id, err := s.teammates.CreateTeammate(ctx, teammate)
	if err != nil {
		return nil, &domain.StorageError{Op: "create teammate", Err: err}
	}
	teammate.TeammateID = id
	s.logger.Info("teammate created", zap.String("teammate_id", id))
	return &TeammateResponse{Teammate: teammate}, nil
}

func (s *teammateService) GetTeammate(ctx context.Context, req GetTeammateRequest) (*TeammateResponse, error) {
	if req.TeammateID == "" {
		return nil, domain.NewValidationError("teammate_id is required")
	}
	teammate, err := s.teammates.FindTeammate(ctx, req.TeammateID)
	if err != nil {
		return nil, &domain.StorageError{Op: "find teammate", Err: err}
	}
	if teammate == nil {
		return nil, &domain.NotFoundError{Entity: "teammate", ID: req.TeammateID}
	}
	return &TeammateResponse{Teammate: teammate}, nil
}
