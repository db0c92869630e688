package controller

import (
	"recruit_backend/internal/service"
	"recruit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ResultAdminController serves the admin read views over assessment results.
type ResultAdminController struct {
	Results *service.ResultService
}

func NewResultAdminController(results *service.ResultService) *ResultAdminController {
	return &ResultAdminController{Results: results}
}

// @Summary 全部测评结果
// @Description 已完成或已过期的测评记录，按结束时间倒序
// @Tags 测评管理
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回条数，默认50，最多500"
// @Success 200 {object} util.Response{data=[]service.AttemptSummary}
// @Router /api/admin/assessments/results [get]
func (c *ResultAdminController) ListResults(ctx *gin.Context) {
	limit := int(util.MustParseUint(ctx.Query("limit")))

	list, err := c.Results.ListResults(ctx.Request.Context(), limit)
	if err != nil {
		respondAssessmentError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 候选人测评记录
// @Description 指定候选人的全部测评记录，按开始时间排序
// @Tags 测评管理
// @Produce json
// @Security BearerAuth
// @Param candidateId path int true "候选人ID"
// @Success 200 {object} util.Response{data=[]service.AttemptSummary}
// @Failure 400 {object} util.Response
// @Router /api/admin/candidates/{candidateId}/assessments [get]
func (c *ResultAdminController) ListCandidateResults(ctx *gin.Context) {
	candidateID, ok := pathID(ctx, "candidateId")
	if !ok {
		return
	}

	list, err := c.Results.ListCandidateResults(ctx.Request.Context(), candidateID)
	if err != nil {
		respondAssessmentError(ctx, err)
		return
	}
	util.Success(ctx, list)
}
