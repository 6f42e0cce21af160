package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"imscaa/backend/internal/dto"
	"imscaa/backend/internal/model"
	"imscaa/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRecords    = errors.New("该活动暂无签到记录")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 签到名单导出为 Excel (.xlsx)，日历导出为 iCalendar (.ics)
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportAttendance 导出某活动的签到名单为 Excel
	ExportAttendance(ctx context.Context, sess *dto.Session, requirementID string) (*bytes.Buffer, string, error)
	// ExportEventCalendar 导出社团进行中活动的时间段为 ICS 日历
	ExportEventCalendar(ctx context.Context, sess *dto.Session) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ────────────────────── ExportAttendance ──────────────────────

// 输出格式：单 Sheet，表头 | 成员 | 时间段 | 状态 | 签到时间 | 核验人 | 备注 |
func (s *exportService) ExportAttendance(ctx context.Context, sess *dto.Session, requirementID string) (*bytes.Buffer, string, error) {
	requirement, err := s.repo.Requirement.GetByID(ctx, sess.ClubID, requirementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrRequirementNotFound
		}
		s.logger.Error("查询活动失败", zap.String("requirement_id", requirementID), zap.Error(err))
		return nil, "", err
	}

	records, err := s.repo.Attendance.ListByRequirement(ctx, sess.ClubID, requirementID)
	if err != nil {
		s.logger.Error("查询签到记录失败", zap.Error(err))
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "签到名单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 18)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "D", 20)
	f.SetColWidth(sheetName, "E", "E", 16)
	f.SetColWidth(sheetName, "F", "F", 30)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 签到名单", requirement.Name))
	f.MergeCell(sheetName, "A1", "F1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"成员", "时间段", "状态", "签到时间", "核验人", "备注"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, fmt.Sprintf("%s2", col), h)
	}

	// 数据行
	row := 3
	for i := range records {
		r := &records[i]

		memberName := r.UserID
		if r.User != nil {
			memberName = r.User.Name
		}
		slotName := "-"
		if r.TimeSlot != nil {
			slotName = fmt.Sprintf("%s (%s-%s)", r.TimeSlot.SlotName, r.TimeSlot.StartTime, r.TimeSlot.EndTime)
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), memberName)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), slotName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.ScanDatetime.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.VerifiedBy)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.Notes)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("签到名单_%s.xlsx", requirement.Name)
	return buf, filename, nil
}

// ────────────────────── ExportEventCalendar ──────────────────────

// 每个活动的每个启用时间段生成一个 VEVENT，供成员订阅到日历应用
func (s *exportService) ExportEventCalendar(ctx context.Context, sess *dto.Session) (*bytes.Buffer, string, error) {
	events, err := s.repo.Requirement.ListActiveEvents(ctx, sess.ClubID, time.Now())
	if err != nil {
		s.logger.Error("查询进行中的活动失败", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//imscaa//attendance calendar//CN")

	for i := range events {
		slots, err := s.repo.TimeSlot.List(ctx, sess.ClubID, events[i].RequirementID, true)
		if err != nil {
			s.logger.Error("查询活动时间段失败",
				zap.String("requirement_id", events[i].RequirementID),
				zap.Error(err))
			return nil, "", err
		}

		for j := range slots {
			start, err := combineDateTime(slots[j].Date, slots[j].StartTime)
			if err != nil {
				continue
			}
			end, err := combineDateTime(slots[j].Date, slots[j].EndTime)
			if err != nil {
				continue
			}

			ev := cal.AddEvent(slots[j].SlotID)
			ev.SetCreatedTime(time.Now())
			ev.SetStartAt(start)
			ev.SetEndAt(end)
			ev.SetSummary(fmt.Sprintf("%s · %s", events[i].Name, slots[j].SlotName))
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "活动日历.ics", nil
}

// ── 辅助函数 ──

// combineDateTime 将 date 列与 "HH:MM" 时间合成本地时间点
func combineDateTime(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse(model.TimeLayout, hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.Local), nil
}
