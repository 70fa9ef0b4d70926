package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"assignment-tracker/backend/internal/dto"
)

func TestExportSubmissions(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	a := f.create(t, "第一次作业")
	f.env.svc.Assignment.Submit(ctx, f.student, a.ID, &dto.SubmitAssignmentRequest{FileURL: "http://x/f.pdf", Comment: "请查收"})

	buf, filename, err := f.env.svc.Export.ExportSubmissions(ctx, f.teacher, a.ID)
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") || !strings.Contains(filename, "CS101") {
		t.Errorf("文件名不符合预期: %s", filename)
	}

	xlsx, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer xlsx.Close()

	rows, err := xlsx.GetRows("提交名单")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望 标题+表头+1 行数据，实际=%d 行", len(rows))
	}
	if rows[1][0] != "序号" || rows[1][5] != "提交时间" {
		t.Errorf("表头不匹配: %v", rows[1])
	}
	if rows[2][1] != "小明" || rows[2][3] != "http://x/f.pdf" || rows[2][4] != "请查收" {
		t.Errorf("数据行不匹配: %v", rows[2])
	}
}

func TestExportSubmissions_EmptyRosterKeepsHeader(t *testing.T) {
	f := newAssignmentFixture(t)
	a := f.create(t, "第一次作业")

	buf, _, err := f.env.svc.Export.ExportSubmissions(context.Background(), f.teacher, a.ID)
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	xlsx, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer xlsx.Close()

	rows, _ := xlsx.GetRows("提交名单")
	if len(rows) != 2 {
		t.Errorf("无提交时应只有标题与表头，实际=%d 行", len(rows))
	}
}

func TestExportSubmissions_Permissions(t *testing.T) {
	f := newAssignmentFixture(t)
	a := f.create(t, "第一次作业")
	ctx := context.Background()

	if _, _, err := f.env.svc.Export.ExportSubmissions(ctx, f.student, a.ID); !errors.Is(err, ErrAssignmentManageDenied) {
		t.Errorf("期望 ErrAssignmentManageDenied，实际: %v", err)
	}
	if _, _, err := f.env.svc.Export.ExportSubmissions(ctx, f.teacher, "missing"); !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际: %v", err)
	}
}
