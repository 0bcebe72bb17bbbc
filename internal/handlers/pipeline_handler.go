package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finova/internal/errors"
	"finova/internal/events"
	"finova/internal/finance"
	"finova/internal/logger"
	"finova/internal/models"
	"finova/internal/services"
)

// PipelineHandler exposes scheduled jobs to external schedulers. Jobs are
// queued when a broker is configured and run inline otherwise.
type PipelineHandler struct {
	runner services.JobRunner
	queue  events.JobQueue
}

// NewPipelineHandler creates a new PipelineHandler. A nil queue runs jobs
// inline.
func NewPipelineHandler(runner services.JobRunner, queue events.JobQueue) *PipelineHandler {
	return &PipelineHandler{runner: runner, queue: queue}
}

// PipelineJobRequest scopes a pipeline job.
type PipelineJobRequest struct {
	Owner models.Owner `json:"owner"`
	Month string       `json:"month" binding:"omitempty,year_month"`
}

// JobResponse reports a queued or completed job.
type JobResponse struct {
	Job    events.Job `json:"job"`
	Status string     `json:"status"`
}

// Reconcile triggers recurring-transaction reconciliation.
// @Summary     Reconcile month (pipeline)
// @Description Carry open-ended recurring transactions into a month. Queued when a broker is configured.
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string              true  "Pipeline API key"
// @Param       request   body   PipelineJobRequest false "Owner and month (default Both, current month)"
// @Success     200 {object} JobResponse "Job completed"
// @Success     202 {object} JobResponse "Job queued"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/reconcile [post]
func (h *PipelineHandler) Reconcile(c *gin.Context) {
	h.dispatch(c, events.JobReconcileMonth)
}

// WeeklyAdvice triggers weekly report generation.
// @Summary     Generate weekly advice (pipeline)
// @Description Ensure this week's advice report exists. Without an owner every scope is covered. Queued when a broker is configured.
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string              true  "Pipeline API key"
// @Param       request   body   PipelineJobRequest false "Owner scope"
// @Success     200 {object} JobResponse "Job completed"
// @Success     202 {object} JobResponse "Job queued"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     502 {object} ErrorResponse "Advisor failure"
// @Failure     503 {object} ErrorResponse "Advisor not configured"
// @Router      /pipeline/advice [post]
func (h *PipelineHandler) WeeklyAdvice(c *gin.Context) {
	h.dispatch(c, events.JobWeeklyAdvice)
}

func (h *PipelineHandler) dispatch(c *gin.Context, kind events.JobKind) {
	var req PipelineJobRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}
	if kind == events.JobReconcileMonth && req.Month == "" {
		req.Month = finance.CurrentMonth(now()).String()
	}

	job := events.NewJob(kind, req.Owner, req.Month)
	ctx := c.Request.Context()

	if h.queue != nil {
		if err := h.queue.Enqueue(ctx, job); err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}
		logger.Get().Infow("pipeline job queued", "kind", job.Kind, "id", job.ID)
		c.JSON(http.StatusAccepted, JobResponse{Job: job, Status: "queued"})
		return
	}

	if err := h.runner.Run(ctx, job); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, JobResponse{Job: job, Status: "completed"})
}
