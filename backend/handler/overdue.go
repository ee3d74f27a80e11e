package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/contractdesk/backend/model"
	"github.com/AnTengye/contractdesk/backend/pipeline"
	"github.com/AnTengye/contractdesk/backend/service"
)

// OverdueHandler lists records whose signed copy is past the 45-day
// submission window. It is a read-only projection; edits go through the
// ledger routes.
type OverdueHandler struct {
	store *service.ContractStore
	now   func() time.Time
}

// NewOverdueHandler serves the overdue list of store
func NewOverdueHandler(store *service.ContractStore) *OverdueHandler {
	return &OverdueHandler{store: store, now: time.Now}
}

type overdueParams struct {
	Search string `form:"q"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
}

// List serves GET /api/overdue
func (h *OverdueHandler) List(c *gin.Context) {
	var params overdueParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	today := model.DateOf(h.now())
	projected := pipeline.SubmissionProjection(h.store.Snapshot().Records, today)
	rows := pipeline.Run(projected, pipeline.Query{
		Today:      today,
		View:       pipeline.ViewAll,
		Predicates: pipeline.Predicates{Search: params.Search},
	})

	page := pipeline.Paginate(rows, params.Page, pipeline.PageSize)
	c.JSON(http.StatusOK, gin.H{
		"title": "逾期未繳回合約 (起始日逾45日)",
		"page":  page,
		"empty": page.Empty(),
	})
}
