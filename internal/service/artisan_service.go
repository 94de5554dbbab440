package service

import (
	"context"

	"renova-rooms/internal/domain"
	"renova-rooms/internal/repository"

	"go.uber.org/zap"
)

// ArtisanService 工匠目录服务
type ArtisanService interface {
	ListArtisans(ctx context.Context) (*ListArtisansResponse, error)
	// ImportArtisans 从外部目录拉取指定工种并入库（按 名称+工种 去重）
	ImportArtisans(ctx context.Context, req ImportArtisansRequest) (*ImportArtisansResponse, error)
}

type artisanService struct {
	artisans  repository.ArtisansRepository
	directory *DirectoryClient // 可为 nil（未配置外部目录）
	logger    *zap.Logger
}

// NewArtisanService 创建 ArtisanService 实例
func NewArtisanService(artisans repository.ArtisansRepository, directory *DirectoryClient, logger *zap.Logger) ArtisanService {
	return &artisanService{artisans: artisans, directory: directory, logger: logger}
}

type ListArtisansResponse struct {
	Items []*domain.Artisan `json:"items"`
}

type ImportArtisansRequest struct {
	Trade string // 可选，空则导入全部
}

type ImportArtisansResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func (s *artisanService) ListArtisans(ctx context.Context) (*ListArtisansResponse, error) {
	items, err := s.artisans.ListArtisans(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "list artisans", Err: err}
	}
	return &ListArtisansResponse{Items: items}, nil
}

func (s *artisanService) ImportArtisans(ctx context.Context, req ImportArtisansRequest) (*ImportArtisansResponse, error) {
	if s.directory == nil {
		return nil, domain.NewValidationError("artisan directory is not configured")
	}

	found, err := s.directory.SearchArtisans(ctx, req.Trade)
	if err != nil {
		return nil, &domain.StorageError{Op: "search directory", Err: err}
	}

	existing, err := s.artisans.ListArtisans(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "list artisans", Err: err}
	}
	seen := map[string]bool{}
	for _, a := range existing {
		seen[a.ArtisanName+"|"+a.Trade] = true
	}

	resp := &ImportArtisansResponse{}
	for _, entry := range found {
		if entry.Name == "" || seen[entry.Name+"|"+entry.Trade] {
			resp.Skipped++
			continue
		}
		_, err := s.artisans.CreateArtisan(ctx, &domain.Artisan{
			ArtisanName: entry.Name,
			Trade:       entry.Trade,
			Phone:       entry.Phone,
			Email:       entry.Email,
		})
		if err != nil {
			return nil, &domain.StorageError{Op: "create artisan", Err: err}
		}
		seen[entry.Name+"|"+entry.Trade] = true
		resp.Imported++
	}

	s.logger.Info("artisans imported",
		zap.String("trade", req.Trade),
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", resp.Skipped))
	return resp, nil
}
