package controller

import (
	"recruit_backend/internal/service"
	"recruit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	Service *service.ReviewService
}

func NewReviewController(svc *service.ReviewService) *ReviewController {
	return &ReviewController{Service: svc}
}

// ReviewAnswerRequest 人工批改简答题
// swagger:model ReviewAnswerRequest
type ReviewAnswerRequest struct {
	IsCorrect    *bool `json:"isCorrect" binding:"required"`
	PointsEarned *int  `json:"pointsEarned" binding:"required"`
}

// @Summary 人工批改简答题
// @Description 批改后重新计算总分并重新判定是否通过
// @Tags 测评管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "测评记录ID"
// @Param questionId path int true "题目ID"
// @Param body body ReviewAnswerRequest true "批改结果"
// @Success 200 {object} util.Response{data=service.ReviewResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/admin/assessments/attempts/{attemptId}/answers/{questionId}/review [post]
func (c *ReviewController) ReviewAnswer(ctx *gin.Context) {
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

	var req ReviewAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.ReviewAnswer(ctx.Request.Context(), service.ReviewInput{
		ReviewerID:   user.UserID,
		AttemptID:    attemptID,
		QuestionID:   questionID,
		IsCorrect:    *req.IsCorrect,
		PointsEarned: *req.PointsEarned,
	})
	if err != nil {
		respondAssessmentError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 待批改列表
// @Tags 测评管理
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回条数，默认100"
// @Success 200 {object} util.Response{data=[]model.ReviewQueueItem}
// @Router /api/admin/assessments/reviews [get]
func (c *ReviewController) ListAwaitingReview(ctx *gin.Context) {
	limit := int(util.MustParseUint(ctx.Query("limit")))

	items, err := c.Service.ListAwaitingReview(ctx.Request.Context(), limit)
	if err != nil {
		respondAssessmentError(ctx, err)
		return
	}
	util.Success(ctx, items)
}
