package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"staff-attendance/internal/dto"
	"staff-attendance/internal/model"
	"staff-attendance/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportRangeTooLong = fmt.Errorf("导出区间不能超过 %d 天", maxExportDays)
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

const maxExportDays = 366

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// Excel 格式：Sheet「明细」逐条列出记录，Sheet「汇总」按人统计各状态天数。
type ExportService interface {
	ExportAttendance(ctx context.Context, req *dto.AttendanceExportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance — 导出考勤记录为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportAttendance(ctx context.Context, req *dto.AttendanceExportRequest) (*bytes.Buffer, string, error) {
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return nil, "", err
	}
	if from == nil || to == nil {
		return nil, "", ErrInvalidDate
	}
	if to.Sub(*from).Hours()/24 >= maxExportDays {
		return nil, "", ErrExportRangeTooLong
	}

	records, err := s.repo.Attendance.ListForExport(ctx, repository.AttendanceFilter{
		Department: req.Department,
		From:       from,
		To:         to,
	})
	if err != nil {
		s.logger.Error("查询导出考勤失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 明细
	detail := "明细"
	idx, _ := f.NewSheet(detail)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"日期", "工号", "姓名", "部门", "状态", "标记时间", "标记人角色"}
	for i, h := range headers {
		f.SetCellValue(detail, cell(colName(i), 1), h)
	}
	f.SetCellStyle(detail, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(detail, "A", "A", 12)
	f.SetColWidth(detail, "B", "D", 18)
	f.SetColWidth(detail, "F", "F", 22)

	type tally struct {
		uniqueID, name, dept           string
		present, absent, late, onLeave int
	}
	var order []string
	tallies := make(map[string]*tally)

	row := 2
	for i := range records {
		r := &records[i]
		var uniqueID, name, dept string
		if r.User != nil {
			uniqueID, name, dept = r.User.UniqueID, r.User.Name, r.User.DepartmentName()
		}
		f.SetCellValue(detail, cell("A", row), r.Date.Format(dateLayout))
		f.SetCellValue(detail, cell("B", row), uniqueID)
		f.SetCellValue(detail, cell("C", row), name)
		f.SetCellValue(detail, cell("D", row), dept)
		f.SetCellValue(detail, cell("E", row), r.Status)
		f.SetCellValue(detail, cell("F", row), formatTime(&r.MarkedAt))
		f.SetCellValue(detail, cell("G", row), r.MarkedByRole)
		row++

		t, ok := tallies[r.UserID]
		if !ok {
			t = &tally{uniqueID: uniqueID, name: name, dept: dept}
			tallies[r.UserID] = t
			order = append(order, r.UserID)
		}
		switch r.Status {
		case model.AttendancePresent:
			t.present++
		case model.AttendanceAbsent:
			t.absent++
		case model.AttendanceLate:
			t.late++
		case model.AttendanceLeave:
			t.onLeave++
		}
	}

	// 汇总
	summary := "汇总"
	f.NewSheet(summary)
	sumHeaders := []string{"工号", "姓名", "部门", "出勤", "缺勤", "迟到", "请假"}
	for i, h := range sumHeaders {
		f.SetCellValue(summary, cell(colName(i), 1), h)
	}
	f.SetCellStyle(summary, "A1", cell(colName(len(sumHeaders)-1), 1), headerStyle)
	f.SetColWidth(summary, "A", "C", 18)

	row = 2
	for _, uid := range order {
		t := tallies[uid]
		values := []interface{}{t.uniqueID, t.name, t.dept, t.present, t.absent, t.late, t.onLeave}
		for i, v := range values {
			f.SetCellValue(summary, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx", req.From, req.To)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
