// Package workflow 作业状态机：Pending → Submitted → Graded。
//
// 状态只能经由这里的转换函数改变；Graded 为终态，评分后不再接受提交，
// 也不允许通过编辑接口回退到更早的状态。函数只修改内存中的模型，
// 持久化由调用方在同一事务内完成。
package workflow

import (
	"strings"
	"time"

	"assignment-tracker/backend/internal/model"
	pkgerrors "assignment-tracker/backend/pkg/errors"
)

var (
	ErrAssignmentGraded  = pkgerrors.New(pkgerrors.KindConflict, 21004, "作业已评分，不能再提交")
	ErrInvalidTransition = pkgerrors.New(pkgerrors.KindValidation, 21005, "不允许的作业状态变更")
	ErrInvalidStatus     = pkgerrors.New(pkgerrors.KindValidation, 21006, "作业状态取值无效")
	ErrInvalidPriority   = pkgerrors.New(pkgerrors.KindValidation, 21007, "作业优先级取值无效")
	ErrFileURLRequired   = pkgerrors.New(pkgerrors.KindValidation, 21009, "文件链接不能为空")
	ErrTitleRequired     = pkgerrors.New(pkgerrors.KindValidation, 21011, "作业标题不能为空")
)

var statusRank = map[string]int{
	model.StatusPending:   0,
	model.StatusSubmitted: 1,
	model.StatusGraded:    2,
}

// ValidStatus 判断状态是否合法
func ValidStatus(status string) bool {
	_, ok := statusRank[status]
	return ok
}

// CanTransition 判断 from → to 是否合法
// 只能前进或原地（Submitted → Submitted 即重新提交）；Graded 只能停留在 Graded
func CanTransition(from, to string) bool {
	fr, ok1 := statusRank[from]
	tr, ok2 := statusRank[to]
	if !ok1 || !ok2 {
		return false
	}
	if from == model.StatusGraded {
		return to == model.StatusGraded
	}
	return tr >= fr
}

// NewAssignment 创建处于 Pending 状态的作业，priority 为空时取 Normal
func NewAssignment(courseID, title, description string, dueDate time.Time, priority string) (*model.Assignment, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !model.ValidPriority(priority) {
		return nil, ErrInvalidPriority
	}

	return &model.Assignment{
		CourseID:    courseID,
		Title:       title,
		Description: strings.TrimSpace(description),
		DueDate:     dueDate,
		Priority:    priority,
		Status:      model.StatusPending,
	}, nil
}

// Submit 按用户 upsert 提交记录并把作业置为 Submitted
// 已有提交则原位替换（保留 SubmissionID 与在列表中的位置），否则追加
// 返回被写入的提交记录
func Submit(a *model.Assignment, userID, fileURL, comment string, now time.Time) (*model.Submission, error) {
	fileURL = strings.TrimSpace(fileURL)
	if fileURL == "" {
		return nil, ErrFileURLRequired
	}
	if a.Status == model.StatusGraded {
		return nil, ErrAssignmentGraded
	}
	if !CanTransition(a.Status, model.StatusSubmitted) {
		return nil, ErrInvalidTransition
	}

	var sub *model.Submission
	for i := range a.Submissions {
		if a.Submissions[i].UserID == userID {
			sub = &a.Submissions[i]
			break
		}
	}
	if sub == nil {
		a.Submissions = append(a.Submissions, model.Submission{
			AssignmentID: a.AssignmentID,
			UserID:       userID,
		})
		sub = &a.Submissions[len(a.Submissions)-1]
	}

	sub.FileURL = fileURL
	sub.Comment = comment
	sub.SubmittedAt = now

	a.Status = model.StatusSubmitted
	return sub, nil
}

// Grade 无条件置为 Graded，不改动提交记录
func Grade(a *model.Assignment) {
	a.Status = model.StatusGraded
}

// Patch 管理者编辑作业的字段补丁，nil 表示不修改
type Patch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *string
	Status      *string
}

// ApplyPatch 校验全部字段后再一次性写入，任一字段非法则作业保持不变
func ApplyPatch(a *model.Assignment, p Patch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Priority != nil && !model.ValidPriority(*p.Priority) {
		return ErrInvalidPriority
	}
	if p.Status != nil {
		if !ValidStatus(*p.Status) {
			return ErrInvalidStatus
		}
		if !CanTransition(a.Status, *p.Status) {
			return ErrInvalidTransition
		}
	}

	if p.Title != nil {
		a.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		a.Description = strings.TrimSpace(*p.Description)
	}
	if p.DueDate != nil {
		a.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		a.Priority = *p.Priority
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	return nil
}
