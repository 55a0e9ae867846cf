package controller

import (
	"errors"

	"interview_backend/internal/model"
	"interview_backend/internal/service"
	"interview_backend/internal/session"
	"interview_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InterviewController struct {
	InterviewService *service.InterviewService
}

func NewInterviewController(interviewService *service.InterviewService) *InterviewController {
	return &InterviewController{InterviewService: interviewService}
}

type ProvideInfoRequest struct {
	Value string `json:"value"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type ModalRequest struct {
	Modal string `json:"modal" binding:"required"`
	Show  bool   `json:"show"`
}

// GetSession godoc
// @Summary 当前面试会话
// @Description 返回会话状态，附带阶段、难度/时间分级和格式化倒计时
// @Tags 面试
// @Produce json
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Router /api/interview [get]
func (c *InterviewController) GetSession(ctx *gin.Context) {
	util.Success(ctx, c.InterviewService.View())
}

// Begin godoc
// @Summary 开始收集候选人信息
// @Description 用简历解析结果开始会话；信息齐全时直接开始面试，否则逐项询问缺失字段
// @Tags 面试
// @Accept json
// @Produce json
// @Param body body model.ResumeData true "简历解析结果"
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Failure 409 {object} util.Response "已有会话"
// @Router /api/interview/begin [post]
func (c *InterviewController) Begin(ctx *gin.Context) {
	var req model.ResumeData
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.InterviewService.Begin(ctx.Request.Context(), req)
	respondInterview(ctx, view, err)
}

// ProvideInfo godoc
// @Summary 回答当前询问的信息字段
// @Tags 面试
// @Accept json
// @Produce json
// @Param body body ProvideInfoRequest true "字段取值"
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Failure 409 {object} util.Response "不在信息收集阶段"
// @Router /api/interview/info [post]
func (c *InterviewController) ProvideInfo(ctx *gin.Context) {
	var req ProvideInfoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.InterviewService.ProvideInfo(ctx.Request.Context(), req.Value)
	respondInterview(ctx, view, err)
}

// Answer godoc
// @Summary 提交当前题目的答案
// @Description 答案经网关评分后记录，并推进到下一题或完成面试
// @Tags 面试
// @Accept json
// @Produce json
// @Param body body AnswerRequest true "答案"
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Failure 400 {object} util.Response "答案为空"
// @Failure 409 {object} util.Response "面试未进行或题目已变化"
// @Router /api/interview/answer [post]
func (c *InterviewController) Answer(ctx *gin.Context) {
	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.InterviewService.Answer(ctx.Request.Context(), req.Answer)
	respondInterview(ctx, view, err)
}

// Pause godoc
// @Summary 暂停面试
// @Tags 面试
// @Produce json
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Failure 409 {object} util.Response
// @Router /api/interview/pause [post]
func (c *InterviewController) Pause(ctx *gin.Context) {
	view, err := c.InterviewService.Pause()
	respondInterview(ctx, view, err)
}

// Resume godoc
// @Summary 继续面试
// @Tags 面试
// @Produce json
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Failure 409 {object} util.Response
// @Router /api/interview/resume [post]
func (c *InterviewController) Resume(ctx *gin.Context) {
	view, err := c.InterviewService.Resume()
	respondInterview(ctx, view, err)
}

// ConfirmPause godoc
// @Summary 确认暂停提示
// @Tags 面试
// @Produce json
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Router /api/interview/confirm-pause [post]
func (c *InterviewController) ConfirmPause(ctx *gin.Context) {
	view, err := c.InterviewService.ConfirmPause()
	respondInterview(ctx, view, err)
}

// Complete godoc
// @Summary 提前结束面试
// @Tags 面试
// @Produce json
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Failure 409 {object} util.Response "面试未开始"
// @Router /api/interview/complete [post]
func (c *InterviewController) Complete(ctx *gin.Context) {
	view, err := c.InterviewService.Complete()
	respondInterview(ctx, view, err)
}

// End godoc
// @Summary 结束面试
// @Description 结束面试但不写入完成结果
// @Tags 面试
// @Produce json
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Failure 409 {object} util.Response "面试未开始"
// @Router /api/interview/end [post]
func (c *InterviewController) End(ctx *gin.Context) {
	view, err := c.InterviewService.End()
	respondInterview(ctx, view, err)
}

// Activity godoc
// @Summary 刷新活动时间
// @Tags 面试
// @Produce json
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Failure 409 {object} util.Response "面试未进行"
// @Router /api/interview/activity [post]
func (c *InterviewController) Activity(ctx *gin.Context) {
	view, err := c.InterviewService.Touch()
	respondInterview(ctx, view, err)
}

// ClearChat godoc
// @Summary 清空对话记录
// @Description 继续面试时会按已答题目重建
// @Tags 面试
// @Produce json
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Router /api/interview/chat [delete]
func (c *InterviewController) ClearChat(ctx *gin.Context) {
	view, err := c.InterviewService.ClearChat()
	respondInterview(ctx, view, err)
}

// SetModal godoc
// @Summary 显示或隐藏提示框
// @Tags 面试
// @Accept json
// @Produce json
// @Param body body ModalRequest true "modal: welcome_back 或 pause"
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Failure 400 {object} util.Response "未知提示框"
// @Failure 409 {object} util.Response "进行中不能显示"
// @Router /api/interview/modal [post]
func (c *InterviewController) SetModal(ctx *gin.Context) {
	var req ModalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.InterviewService.SetModal(req.Modal, req.Show)
	respondInterview(ctx, view, err)
}

// Reset godoc
// @Summary 重置会话
// @Description 丢弃当前会话，候选人记录保留
// @Tags 面试
// @Produce json
// @Success 200 {object} util.Response{data=service.InterviewView}
// @Router /api/interview/reset [post]
func (c *InterviewController) Reset(ctx *gin.Context) {
	view, err := c.InterviewService.Reset()
	respondInterview(ctx, view, err)
}

func respondInterview(ctx *gin.Context, view service.InterviewView, err error) {
	switch {
	case err == nil:
		util.Success(ctx, view)
	case util.IsAny(err, util.ErrEmptyAnswer, service.ErrUnknownModal):
		util.BadRequest(ctx, err.Error())
	case util.IsAny(err,
		session.ErrNoQuestions,
		session.ErrNotActive,
		session.ErrNotPaused,
		session.ErrInterviewCompleted,
		session.ErrNoCurrentQuestion,
		session.ErrStaleAnswer,
		session.ErrModalWhileActive,
		session.ErrCandidateInfoSet,
		session.ErrSessionInProgress,
		session.ErrNotCollectingInfo,
		session.ErrNotStarted):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, service.ErrServiceClosed):
		util.ServiceUnavailable(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
