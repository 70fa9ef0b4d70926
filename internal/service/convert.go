package service

import (
	"assignment-tracker/backend/internal/dto"
	"assignment-tracker/backend/internal/model"
)

// ── 模型 → 响应 ──

func toCourseResponse(c *model.Course) dto.CourseResponse {
	members := make([]dto.UserBrief, 0, len(c.Members))
	for i := range c.Members {
		members = append(members, dto.NewUserBrief(c.Members[i].UserID, &c.Members[i]))
	}
	return dto.CourseResponse{
		ID:          c.CourseID,
		Title:       c.Title,
		Code:        c.Code,
		Description: c.Description,
		Owner:       dto.NewUserBrief(c.OwnerID, c.Owner),
		Members:     members,
		CreatedAt:   c.CreatedAt,
	}
}

func toAssignmentResponse(a *model.Assignment) dto.AssignmentResponse {
	course := dto.CourseBrief{ID: a.CourseID}
	if a.Course != nil {
		course.Title = a.Course.Title
		course.Code = a.Course.Code
	}

	subs := make([]dto.SubmissionResponse, 0, len(a.Submissions))
	for _, s := range a.Submissions {
		subs = append(subs, dto.SubmissionResponse{
			User:        dto.NewUserBrief(s.UserID, s.User),
			FileURL:     s.FileURL,
			Comment:     s.Comment,
			SubmittedAt: s.SubmittedAt,
		})
	}

	return dto.AssignmentResponse{
		ID:          a.AssignmentID,
		Course:      course,
		Title:       a.Title,
		Description: a.Description,
		DueDate:     a.DueDate,
		Priority:    a.Priority,
		Status:      a.Status,
		Submissions: subs,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toResourceResponse(r *model.Resource) dto.ResourceResponse {
	return dto.ResourceResponse{
		ID:         r.ResourceID,
		CourseID:   r.CourseID,
		Title:      r.Title,
		FileURL:    r.FileURL,
		Type:       r.Type,
		UploadedBy: dto.NewUserBrief(r.UploadedBy, r.Uploader),
		CreatedAt:  r.CreatedAt,
	}
}
