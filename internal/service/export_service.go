package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"assignment-tracker/backend/internal/model"
	"assignment-tracker/backend/internal/policy"
	"assignment-tracker/backend/internal/repository"
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出作业的提交名单为 Excel (.xlsx)，仅课程管理者可用
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 没有提交时仍导出表头，便于教师确认名单为空
type ExportService interface {
	// ExportSubmissions 导出作业提交名单
	ExportSubmissions(ctx context.Context, caller *model.User, assignmentID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	rules  policy.Evaluator
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, rules policy.Evaluator, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, rules: rules, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportSubmissions — 导出提交名单
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "提交名单"
//   - 第 1 行：课程代码 作业标题 — 状态
//   - 第 2 行表头：序号 | 姓名 | 邮箱 | 文件链接 | 备注 | 提交时间
//   - 数据行按首次提交先后排列

func (s *exportService) ExportSubmissions(ctx context.Context, caller *model.User, assignmentID string) (*bytes.Buffer, string, error) {
	// 1. 查询作业（含课程与提交）
	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		err = notFound(err, ErrAssignmentNotFound)
		if !isBusinessErr(err) {
			s.logger.Error("查询作业失败", zap.Error(err))
		}
		return nil, "", err
	}

	// 2. 权限
	ok, err := s.rules.CanManageAssignment(caller, assignment)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrAssignmentManageDenied
	}

	courseCode := ""
	if assignment.Course != nil {
		courseCode = assignment.Course.Code
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "提交名单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "C", 28)
	f.SetColWidth(sheetName, "D", "D", 48)
	f.SetColWidth(sheetName, "E", "E", 32)
	f.SetColWidth(sheetName, "F", "F", 22)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s %s — %s", courseCode, assignment.Title, assignment.Status))
	f.MergeCell(sheetName, "A1", "F1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"序号", "姓名", "邮箱", "文件链接", "备注", "提交时间"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", "F2", headerStyle)

	// 数据行
	row := 3
	for i, sub := range assignment.Submissions {
		name, email := sub.UserID, ""
		if sub.User != nil {
			name, email = sub.User.Name, sub.User.Email
		}
		f.SetCellValue(sheetName, cell("A", row), i+1)
		f.SetCellValue(sheetName, cell("B", row), name)
		f.SetCellValue(sheetName, cell("C", row), email)
		f.SetCellValue(sheetName, cell("D", row), sub.FileURL)
		f.SetCellValue(sheetName, cell("E", row), sub.Comment)
		f.SetCellValue(sheetName, cell("F", row), sub.SubmittedAt.UTC().Format("2006-01-02 15:04:05"))
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("提交名单_%s_%s.xlsx", courseCode, assignment.Title)
	return buf, filename, nil
}

// colName 0-based 列号转列名
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
