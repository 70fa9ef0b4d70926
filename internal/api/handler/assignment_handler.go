package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"assignment-tracker/backend/internal/dto"
	"assignment-tracker/backend/internal/service"
	"assignment-tracker/backend/pkg/response"
)

// AssignmentHandler 作业模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
	logger        *zap.Logger
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc, logger: logger}
}

// Create 创建作业
// POST /api/v1/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.assignmentSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Created(c, result)
}

// List 可访问的作业列表
// GET /api/v1/assignments?course=&status=&due_date=
func (h *AssignmentHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.AssignmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.assignmentSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// Get 作业详情
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrAssignmentNotFound)
	if !ok {
		return
	}

	result, err := h.assignmentSvc.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// Update 编辑作业
// PUT /api/v1/assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrAssignmentNotFound)
	if !ok {
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.assignmentSvc.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除作业
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrAssignmentNotFound)
	if !ok {
		return
	}

	if err := h.assignmentSvc.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, nil)
}

// Submit 提交作业
// POST /api/v1/assignments/:id/submit
func (h *AssignmentHandler) Submit(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrAssignmentNotFound)
	if !ok {
		return
	}

	var req dto.SubmitAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.assignmentSvc.Submit(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// Grade 评分
// PUT /api/v1/assignments/:id/grade
func (h *AssignmentHandler) Grade(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrAssignmentNotFound)
	if !ok {
		return
	}

	result, err := h.assignmentSvc.Grade(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}
