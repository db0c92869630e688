package controller

import (
	"errors"
	"net/http"
	"recruit_backend/internal/model"
	"recruit_backend/internal/service"
	"recruit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Bank     *service.QuestionBankService
	Attempts *service.AttemptService
	Scoring  *service.ScoringService
	Pending  *service.PendingService
	Results  *service.ResultService
}

func NewAssessmentController(
	bank *service.QuestionBankService,
	attempts *service.AttemptService,
	scoring *service.ScoringService,
	pending *service.PendingService,
	results *service.ResultService,
) *AssessmentController {
	return &AssessmentController{
		Bank:     bank,
		Attempts: attempts,
		Scoring:  scoring,
		Pending:  pending,
		Results:  results,
	}
}

// StartAssessmentRequest 开始测评请求
// swagger:model StartAssessmentRequest
type StartAssessmentRequest struct {
	JobID *uint `json:"jobId"`
}

// RecordAnswerRequest 单题作答
// swagger:model RecordAnswerRequest
type RecordAnswerRequest struct {
	Value model.AnswerValue `json:"value" swaggertype:"object"`
}

// SubmitAssessmentRequest maps question id to answer value. Submitted answers replace auto-saved ones.
// swagger:model SubmitAssessmentRequest
type SubmitAssessmentRequest struct {
	Answers map[uint]model.AnswerValue `json:"answers" swaggertype:"object"`
}

// respondAssessmentError maps service sentinels onto HTTP statuses.
func respondAssessmentError(ctx *gin.Context, err error) {
	var completed *util.AlreadyCompletedError
	switch {
	case errors.As(err, &completed):
		util.Conflict(ctx, util.ErrAlreadyCompleted.Error(), gin.H{"attemptId": completed.AttemptID})
	case errors.Is(err, util.ErrTemplateNotFound),
		errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrAnswerNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrAttemptNotActive),
		errors.Is(err, util.ErrAttemptNotCompleted):
		util.Conflict(ctx, err.Error(), nil)
	case errors.Is(err, util.ErrInvalidAnswerShape):
		util.UnprocessableEntity(ctx, err.Error())
	case errors.Is(err, util.ErrNotManuallyGradable),
		errors.Is(err, util.ErrInvalidPoints),
		errors.Is(err, util.ErrJobNotLinked):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParseID(ctx.Param(name))
	if !ok {
		util.BadRequest(ctx, "invalid "+name)
	}
	return id, ok
}

// @Summary 开始或继续测评
// @Description 同一候选人、模板、职位只允许一个进行中的测评；已完成则返回409及attemptId
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param templateId path int true "模板ID"
// @Param body body StartAssessmentRequest false "职位信息"
// @Success 200 {object} util.Response{data=service.StartResult}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/assessments/start/{templateId} [post]
func (c *AssessmentController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	templateID, ok := pathID(ctx, "templateId")
	if !ok {
		return
	}

	var req StartAssessmentRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}
	if req.JobID != nil && *req.JobID == 0 {
		req.JobID = nil
	}

	if req.JobID != nil {
		if err := c.Pending.VerifyJobLink(ctx.Request.Context(), *req.JobID, templateID); err != nil {
			respondAssessmentError(ctx, err)
			return
		}
	}

	res, err := c.Attempts.Start(ctx.Request.Context(), model.AttemptKey{
		CandidateID: user.UserID,
		TemplateID:  templateID,
		JobID:       req.JobID,
	})
	if err != nil {
		respondAssessmentError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 获取测评题目（不含答案）
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param templateId path int true "模板ID"
// @Success 200 {object} util.Response{data=service.CandidateView}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{templateId}/questions [get]
func (c *AssessmentController) GetQuestions(ctx *gin.Context) {
	templateID, ok := pathID(ctx, "templateId")
	if !ok {
		return
	}
	view, err := c.Bank.CandidateView(ctx.Request.Context(), templateID)
	if err != nil {
		respondAssessmentError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 自动保存单题答案
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "测评记录ID"
// @Param questionId path int true "题目ID"
// @Param body body RecordAnswerRequest true "答案"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/assessments/attempts/{attemptId}/answers/{questionId} [put]
func (c *AssessmentController) RecordAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := pathID(ctx, "attemptId")
	if !ok {
		return
	}
	questionID, ok := pathID(ctx, "questionId")
	if !ok {
		return
	}

	var req RecordAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.UnprocessableEntity(ctx, err.Error())
		return
	}

	if err := c.Attempts.RecordAnswer(ctx.Request.Context(), user.UserID, attemptID, questionID, req.Value); err != nil {
		respondAssessmentError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"attemptId": attemptID, "questionId": questionID})
}

// @Summary 提交测评
// @Description 超时提交会将测评标记为expired且不计分
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "测评记录ID"
// @Param body body SubmitAssessmentRequest true "全部答案"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 409 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/assessments/attempts/{attemptId}/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := pathID(ctx, "attemptId")
	if !ok {
		return
	}

	var req SubmitAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.UnprocessableEntity(ctx, err.Error())
		return
	}

	res, err := c.Scoring.Submit(ctx.Request.Context(), user.UserID, attemptID, req.Answers)
	if err != nil {
		respondAssessmentError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 查看测评结果
// @Description 候选人只能查看自己的记录，管理员可查看全部
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "测评记录ID"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/assessments/attempts/{attemptId}/results [get]
func (c *AssessmentController) GetResults(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := pathID(ctx, "attemptId")
	if !ok {
		return
	}

	res, err := c.Results.GetResults(ctx.Request.Context(), service.Viewer{UserID: user.UserID, Admin: user.IsAdmin()}, attemptID)
	if err != nil {
		respondAssessmentError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 候选人待完成测评列表
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.PendingAssessment}
// @Router /api/candidate/assessments/pending [get]
func (c *AssessmentController) ListPending(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	pending, err := c.Pending.ListPending(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondAssessmentError(ctx, err)
		return
	}
	util.Success(ctx, pending)
}
