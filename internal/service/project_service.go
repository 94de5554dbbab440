package service

import (
	"context"

	"renova-rooms/internal/domain"
	"renova-rooms/internal/repository"

	"go.uber.org/zap"
)

// ProjectService 项目基础操作
// 项目的业务生命周期在本服务域之外，这里只提供建档与查询
type ProjectService interface {
	CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error)
	GetProject(ctx context.Context, req GetProjectRequest) (*ProjectResponse, error)
}

type projectService struct {
	projects repository.ProjectsRepository
	logger   *zap.Logger
}

// NewProjectService 创建 ProjectService 实例
func NewProjectService(projects repository.ProjectsRepository, logger *zap.Logger) ProjectService {
	return &projectService{projects: projects, logger: logger}
}

type CreateProjectRequest struct {
	ProjectName string
}

type GetProjectRequest struct {
	ProjectID string
}

type ProjectResponse struct {
	Project *domain.Project `json:"project"`
}

func (s *projectService) CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error) {
	if req.ProjectName == "" {
		return nil, domain.NewValidationError("project_name is required")
	}
	project := &domain.Project{ProjectName: req.ProjectName, Rooms: []string{}}
	id, err := s.projects.CreateProject(ctx, project)
	if err != nil {
		return nil, &domain.StorageError{Op: "create project", Err: err}
	}
	project.ProjectID = id
	s.logger.Info("project created", zap.String("project_id", id))
	return &ProjectResponse{Project: project}, nil
}

func (s *projectService) GetProject(ctx context.Context, req GetProjectRequest) (*ProjectResponse, error) {
	if req.ProjectID == "" {
		return nil, domain.NewValidationError("project_id is required")
	}
	project, err := s.projects.FindProject(ctx, req.ProjectID)
	if err != nil {
		return nil, &domain.StorageError{Op: "find project", Err: err}
	}
	if project == nil {
		return nil, &domain.NotFoundError{Entity: "project", ID: req.ProjectID}
	}
	return &ProjectResponse{Project: project}, nil
}
