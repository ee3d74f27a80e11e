package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/contractdesk/backend/export"
	"github.com/AnTengye/contractdesk/backend/middleware"
	"github.com/AnTengye/contractdesk/backend/pipeline"
	"github.com/AnTengye/contractdesk/backend/pkg/logger"
)

func contextWithLedger(ctx context.Context, ledger string) context.Context {
	return context.WithValue(ctx, logger.LedgerKey, ledger)
}

// table returns the caller's table on this ledger
func (h *LedgerHandler) table(c *gin.Context) *pipeline.Table {
	return h.sessions.Table(middleware.GetSessionID(c), h.store.Name())
}

func (h *LedgerHandler) render(c *gin.Context, t *pipeline.Table) {
	c.JSON(http.StatusOK, t.Render(h.store.Snapshot(), h.today()))
}

// Table renders the current page of the caller's table
func (h *LedgerHandler) Table(c *gin.Context) {
	h.render(c, h.table(c))
}

// SetFilters replaces the session table predicates
func (h *LedgerHandler) SetFilters(c *gin.Context) {
	var params FilterParams
	if err := c.ShouldBindJSON(&params); err != nil {
		bindError(c, err)
		return
	}
	preds, err := params.predicates()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := h.table(c)
	t.SetPredicates(preds)
	h.render(c, t)
}

// ClearFilters resets every predicate but the search term
func (h *LedgerHandler) ClearFilters(c *gin.Context) {
	t := h.table(c)
	t.ClearFilters()
	h.render(c, t)
}

// SetView switches the session table view
func (h *LedgerHandler) SetView(c *gin.Context) {
	var in viewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	view, err := pipeline.ParseView(in.View)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := h.table(c)
	t.SetView(view)
	h.render(c, t)
}

// NextPage moves the session table one page forward
func (h *LedgerHandler) NextPage(c *gin.Context) {
	c.JSON(http.StatusOK, h.table(c).Next(h.store.Snapshot(), h.today()))
}

// PrevPage moves the session table one page back
func (h *LedgerHandler) PrevPage(c *gin.Context) {
	c.JSON(http.StatusOK, h.table(c).Prev(h.store.Snapshot(), h.today()))
}

// GotoPage jumps to a page, clamped to the available pages
func (h *LedgerHandler) GotoPage(c *gin.Context) {
	var in pageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.table(c).Goto(h.store.Snapshot(), h.today(), in.Page))
}

// ToggleDeleteMode enters or leaves delete mode; the selection starts empty
// either way
func (h *LedgerHandler) ToggleDeleteMode(c *gin.Context) {
	t := h.table(c)
	t.ToggleDeleteMode()
	h.render(c, t)
}

// ToggleSelected adds or removes one record from the delete selection
func (h *LedgerHandler) ToggleSelected(c *gin.Context) {
	t := h.table(c)
	if !t.DeleteMode() {
		c.JSON(http.StatusConflict, gin.H{"error": "Delete mode is off"})
		return
	}
	id := c.Param("id")
	if _, err := h.store.Get(id); err != nil {
		respondError(c, err)
		return
	}
	t.ToggleSelected(id)
	h.render(c, t)
}

// SelectAll selects every row of the filtered set, not only the current page
func (h *LedgerHandler) SelectAll(c *gin.Context) {
	var in selectAllInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	t := h.table(c)
	if !t.DeleteMode() {
		c.JSON(http.StatusConflict, gin.H{"error": "Delete mode is off"})
		return
	}
	t.SelectAll(h.store.Snapshot(), h.today(), in.All)
	h.render(c, t)
}

// DeleteSelected removes the selected records. The caller must pass
// confirm=true; without it nothing changes.
func (h *LedgerHandler) DeleteSelected(c *gin.Context) {
	t := h.table(c)
	ids, err := t.Selection()
	if err != nil {
		respondError(c, err)
		return
	}
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "Deletion must be confirmed",
			"selected": ids,
		})
		return
	}

	ctx := c.Request.Context()
	removed := h.store.BulkDelete(ids)
	h.attachments.Release(ctx, removed)
	t.FinishDelete()
	logger.Info(ctx, "contracts deleted", "requested", len(ids), "deleted", len(removed))

	c.JSON(http.StatusOK, gin.H{
		"deleted": len(removed),
		"table":   t.Render(h.store.Snapshot(), h.today()),
	})
}

// Export downloads every filtered row of the caller's table
func (h *LedgerHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.table(c).Render(h.store.Snapshot(), h.today())
	var buf bytes.Buffer
	if err := export.Write(&buf, format, res.Rows); err != nil {
		respondError(c, err)
		return
	}

	name := format.Filename(h.now())
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	logger.Info(c.Request.Context(), "table exported", "format", format, "rows", len(res.Rows))
}
