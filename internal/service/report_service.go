package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"renova-rooms/internal/domain"
	"renova-rooms/internal/repository"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ProjectReportHeader Rooms 工作表表头
var ProjectReportHeader = []string{
	"Room ID",
	"Type",
	"Name",
	"Surface (m2)",
	"Comment",
	"Item Count",
}

// ProjectReportItemHeader Items 工作表表头
var ProjectReportItemHeader = []string{
	"Room ID",
	"Room Type",
	"Item ID",
	"Field",
	"Difficulty",
	"DIY",
	"Artisan ID",
	"Teammate Count",
}

// ReportService 项目报表导出（Excel）
type ReportService interface {
	// ExportProjectReport 生成项目的房间/工作项清单工作簿
	ExportProjectReport(ctx context.Context, req ExportProjectReportRequest) (*ExportProjectReportResponse, error)
}

type reportService struct {
	rooms    repository.RoomsRepository
	projects repository.ProjectsRepository
	logger   *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(rooms repository.RoomsRepository, projects repository.ProjectsRepository, logger *zap.Logger) ReportService {
	return &reportService{rooms: rooms, projects: projects, logger: logger}
}

type ExportProjectReportRequest struct {
	ProjectID string
}

type ExportProjectReportResponse struct {
	FileName string
	Data     []byte
}

func (s *reportService) ExportProjectReport(ctx context.Context, req ExportProjectReportRequest) (*ExportProjectReportResponse, error) {
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
	rooms, err := s.rooms.FindRoomsByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, &domain.StorageError{Op: "list rooms", Err: err}
	}

	data, err := buildProjectWorkbook(rooms)
	if err != nil {
		return nil, err
	}

	name := project.ProjectName
	if name == "" {
		name = project.ProjectID
	}
	s.logger.Info("project report exported",
		zap.String("project_id", req.ProjectID), zap.Int("rooms", len(rooms)))
	return &ExportProjectReportResponse{
		FileName: fmt.Sprintf("renovation-%s.xlsx", name),
		Data:     data,
	}, nil
}

func buildProjectWorkbook(rooms []*domain.Room) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo 之前不能 Close，出错路径手动收

	roomsSheet := "Rooms"
	index, err := f.NewSheet(roomsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	itemsSheet := "Items"
	if _, err := f.NewSheet(itemsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	writeHeader := func(sheet string, header []string) error {
		for col, title := range header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sheet, cell, title); err != nil {
				return err
			}
		}
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		return f.SetCellStyle(sheet, "A1", last, headerStyle)
	}
	if err := writeHeader(roomsSheet, ProjectReportHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := writeHeader(itemsSheet, ProjectReportItemHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	itemRow := 2
	for i, room := range rooms {
		row := strconv.Itoa(i + 2)
		f.SetCellValue(roomsSheet, "A"+row, room.RoomID)
		f.SetCellValue(roomsSheet, "B"+row, room.RoomType)
		f.SetCellValue(roomsSheet, "C"+row, room.RoomName)
		f.SetCellValue(roomsSheet, "D"+row, room.Surface)
		f.SetCellValue(roomsSheet, "E"+row, room.Comment)
		f.SetCellValue(roomsSheet, "F"+row, len(room.Items))

		for _, item := range room.Items {
			row := strconv.Itoa(itemRow)
			f.SetCellValue(itemsSheet, "A"+row, room.RoomID)
			f.SetCellValue(itemsSheet, "B"+row, room.RoomType)
			f.SetCellValue(itemsSheet, "C"+row, item.ItemID)
			f.SetCellValue(itemsSheet, "D"+row, item.Field)
			f.SetCellValue(itemsSheet, "E"+row, item.Difficulty)
			f.SetCellValue(itemsSheet, "F"+row, item.DIY)
			if item.ArtisanID != nil {
				f.SetCellValue(itemsSheet, "G"+row, *item.ArtisanID)
			}
			f.SetCellValue(itemsSheet, "H"+row, len(item.Teammates))
			itemRow++
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
