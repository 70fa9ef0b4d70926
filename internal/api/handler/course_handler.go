package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"assignment-tracker/backend/internal/dto"
	"assignment-tracker/backend/internal/service"
	"assignment-tracker/backend/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器（含课程资料与聊天记录）
type CourseHandler struct {
	courseSvc   service.CourseService
	resourceSvc service.ResourceService
	chatSvc     service.ChatService
	logger      *zap.Logger
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService, resourceSvc service.ResourceService, chatSvc service.ChatService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc, resourceSvc: resourceSvc, chatSvc: chatSvc, logger: logger}
}

// Create 创建课程，创建者成为所有者和成员
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.courseSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Created(c, result)
}

// List 当前用户可访问的课程
// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.courseSvc.List(c.Request.Context(), caller)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// Get 课程详情及其作业
// GET /api/v1/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrCourseNotFound)
	if !ok {
		return
	}

	result, err := h.courseSvc.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// Update 编辑课程
// PUT /api/v1/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrCourseNotFound)
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.courseSvc.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除课程
// DELETE /api/v1/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrCourseNotFound)
	if !ok {
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, nil)
}

// Enroll 加入课程
// POST /api/v1/courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrCourseNotFound)
	if !ok {
		return
	}

	result, err := h.courseSvc.Enroll(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// Leave 退出课程
// POST /api/v1/courses/:id/leave
func (h *CourseHandler) Leave(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrCourseNotFound)
	if !ok {
		return
	}

	if err := h.courseSvc.Leave(c.Request.Context(), caller, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, nil)
}

// ── 课程资料 ──

// CreateResource 上传课程资料
// POST /api/v1/courses/:id/resources
func (h *CourseHandler) CreateResource(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrCourseNotFound)
	if !ok {
		return
	}

	var req dto.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.resourceSvc.Create(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Created(c, result)
}

// ListResources 课程资料列表
// GET /api/v1/courses/:id/resources
func (h *CourseHandler) ListResources(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrCourseNotFound)
	if !ok {
		return
	}

	result, err := h.resourceSvc.List(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// ── 聊天记录 ──

// ListMessages 课程聊天记录（按时间升序）
// GET /api/v1/courses/:id/messages
func (h *CourseHandler) ListMessages(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := MustGetPathID(c, service.ErrCourseNotFound)
	if !ok {
		return
	}

	result, err := h.chatSvc.History(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}
