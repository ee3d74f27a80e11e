package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/contractdesk/backend/model"
	"github.com/AnTengye/contractdesk/backend/pipeline"
	"github.com/AnTengye/contractdesk/backend/pkg/logger"
	"github.com/AnTengye/contractdesk/backend/service"
)

// LedgerHandler serves one contract ledger: queries, edits, the per-session
// table, attachments and approvals
type LedgerHandler struct {
	store       *service.ContractStore
	sessions    *service.TableSessions
	attachments *service.AttachmentService
	layout      service.ChartLayout
	now         func() time.Time
}

// NewLedgerHandler creates the handler for one ledger
func NewLedgerHandler(store *service.ContractStore, sessions *service.TableSessions, attachments *service.AttachmentService, layout service.ChartLayout) *LedgerHandler {
	return &LedgerHandler{
		store:       store,
		sessions:    sessions,
		attachments: attachments,
		layout:      layout,
		now:         time.Now,
	}
}

// Register mounts the ledger routes on rg
func (h *LedgerHandler) Register(rg *gin.RouterGroup) {
	rg.Use(h.tagLedger)

	rg.GET("", h.List)
	rg.GET("/facets", h.Facets)

	table := rg.Group("/table")
	{
		table.GET("", h.Table)
		table.PUT("/filters", h.SetFilters)
		table.DELETE("/filters", h.ClearFilters)
		table.PUT("/view", h.SetView)
		table.POST("/page/next", h.NextPage)
		table.POST("/page/prev", h.PrevPage)
		table.PUT("/page", h.GotoPage)
		table.POST("/delete-mode", h.ToggleDeleteMode)
		table.POST("/selection/:id", h.ToggleSelected)
		table.PUT("/selection/all", h.SelectAll)
		table.DELETE("/selection", h.DeleteSelected)
		table.GET("/export", h.Export)
	}

	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.GET("/:id/approvals", h.Approvals)
	rg.POST("/:id/attachment", h.UploadAttachment)
	rg.PUT("/:id/attachment/link", h.LinkAttachment)
	rg.DELETE("/:id/attachment", h.RemoveAttachment)
	rg.GET("/:id/attachment", h.LocateAttachment)
}

// RegisterLending adds the lending workflow toggles
func (h *LedgerHandler) RegisterLending(rg *gin.RouterGroup) {
	rg.POST("/:id/lending-completed", h.ToggleLendingCompleted)
	rg.POST("/:id/manager-confirmed", h.ToggleManagerConfirmed)
}

func (h *LedgerHandler) tagLedger(c *gin.Context) {
	ctx := c.Request.Context()
	c.Request = c.Request.WithContext(contextWithLedger(ctx, h.store.Name()))
	c.Next()
}

func (h *LedgerHandler) today() model.Date {
	return model.DateOf(h.now())
}

// List runs a stateless query: view, predicates and page all come from the
// query string
func (h *LedgerHandler) List(c *gin.Context) {
	var params listParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}
	view, err := pipeline.ParseView(params.View)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	preds, err := params.predicates()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t := pipeline.NewTable()
	t.SetView(view)
	t.SetPredicates(preds)
	page := params.Page
	if page == 0 {
		page = 1
	}
	c.JSON(http.StatusOK, t.Goto(h.store.Snapshot(), h.today(), page))
}

// Facets lists the values offered by the department and year filters
func (h *LedgerHandler) Facets(c *gin.Context) {
	c.JSON(http.StatusOK, pipeline.BuildFacets(h.store.Snapshot().Records))
}

// Get returns one record by id
func (h *LedgerHandler) Get(c *gin.Context) {
	record, err := h.store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Update replaces the editable fields of a record
func (h *LedgerHandler) Update(c *gin.Context) {
	var in ContractInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	id := c.Param("id")
	record, err := h.store.Edit(id, in.Apply)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info(c.Request.Context(), "contract updated", "contract_id", id)
	c.JSON(http.StatusOK, record)
}

// Approvals renders the sign-off chart of a record
func (h *LedgerHandler) Approvals(c *gin.Context) {
	record, err := h.store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.BuildApprovalChart(record, h.layout))
}

// ToggleLendingCompleted flips whether the borrowed contract came back
func (h *LedgerHandler) ToggleLendingCompleted(c *gin.Context) {
	record, err := h.store.ToggleLendingCompleted(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info(c.Request.Context(), "lending completion toggled",
		"contract_id", record.ID, "lending_completed", record.LendingCompleted)
	c.JSON(http.StatusOK, record)
}

// ToggleManagerConfirmed flips the manager's sign-off on a lending record
func (h *LedgerHandler) ToggleManagerConfirmed(c *gin.Context) {
	record, err := h.store.ToggleManagerConfirmed(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info(c.Request.Context(), "manager confirmation toggled",
		"contract_id", record.ID, "manager_confirmed", record.ManagerConfirmed)
	c.JSON(http.StatusOK, record)
}
