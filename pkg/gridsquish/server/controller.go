package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/delta"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/models"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/store"
)

// SnapshotStore persists compact sheets per workbook.
type SnapshotStore interface {
	Put(book, sheet string, c models.Compact) error
	Get(book, sheet string) (models.Compact, error)
	Delete(book, sheet string) error
	List(book string) ([]string, error)
	PutSnapshot(book string, snap models.Snapshot) error
	Snapshot(book string) (models.Snapshot, error)
}

// Controller serves the codec over HTTP.
type Controller struct {
	Store   SnapshotStore
	Options gridsquish.Options
}

type SheetEndpointParams struct {
	Book  string `uri:"book" binding:"required"`
	Sheet string `uri:"sheet" binding:"required"`
}

type BookEndpointParams struct {
	Book string `uri:"book" binding:"required"`
}

type CellsBody struct {
	Cells models.Sheet `json:"cells" binding:"required"`
}

type CompactBody struct {
	Compact models.Compact `json:"compact" binding:"required"`
}

type StructureRequest struct {
	Compact models.Compact  `json:"compact" binding:"required"`
	Edit    gridsquish.Edit `json:"edit"`
}

type SquishResponse struct {
	Compact models.Compact   `json:"compact"`
	Stats   gridsquish.Stats `json:"stats"`
}

type SheetListResponse struct {
	Sheets []string `json:"sheets"`
}

func NewController(snapshots SnapshotStore, opts gridsquish.Options) *Controller {
	return &Controller{Store: snapshots, Options: opts}
}

func (api *Controller) SquishAction(c *gin.Context) {
	request := CellsBody{}
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, bindStatus(err), err)
		return
	}

	compact := gridsquish.SquishSheet(request.Cells, api.Options)
	stats, err := gridsquish.ComputeStats(request.Cells, compact)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, SquishResponse{Compact: compact, Stats: stats})
}

func (api *Controller) UnsquishAction(c *gin.Context) {
	request := CompactBody{}
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, bindStatus(err), err)
		return
	}

	sheet, err := gridsquish.UnsquishSheet(request.Compact, api.Options)
	if err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, CellsBody{Cells: sheet})
}

func (api *Controller) StructureAction(c *gin.Context) {
	request := StructureRequest{}
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, bindStatus(err), err)
		return
	}

	adapted, err := gridsquish.ApplyEdit(request.Compact, request.Edit, api.Options)
	if err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, CompactBody{Compact: adapted})
}

func (api *Controller) PutSnapshotAction(c *gin.Context) {
	params := SheetEndpointParams{}
	request := CompactBody{}

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}
	if err != nil {
		abortWithError(c, bindStatus(err), err)
		return
	}

	if _, err := gridsquish.UnsquishSheet(request.Compact, api.Options); err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}
	if err := api.Store.Put(params.Book, params.Sheet, request.Compact); err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (api *Controller) GetSnapshotAction(c *gin.Context) {
	params := SheetEndpointParams{}
	if err := c.ShouldBindUri(&params); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	compact, err := api.Store.Get(params.Book, params.Sheet)
	if err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, CompactBody{Compact: compact})
}

func (api *Controller) GetSnapshotCellsAction(c *gin.Context) {
	params := SheetEndpointParams{}
	if err := c.ShouldBindUri(&params); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	compact, err := api.Store.Get(params.Book, params.Sheet)
	if err == nil {
		var sheet models.Sheet
		if sheet, err = gridsquish.UnsquishSheet(compact, api.Options); err == nil {
			c.JSON(http.StatusOK, CellsBody{Cells: sheet})
			return
		}
	}
	abortWithError(c, errorStatus(err), err)
}

func (api *Controller) DeleteSnapshotAction(c *gin.Context) {
	params := SheetEndpointParams{}
	if err := c.ShouldBindUri(&params); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	if err := api.Store.Delete(params.Book, params.Sheet); err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (api *Controller) ListSnapshotsAction(c *gin.Context) {
	params := BookEndpointParams{}
	if err := c.ShouldBindUri(&params); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	sheets, err := api.Store.List(params.Book)
	if err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, SheetListResponse{Sheets: sheets})
}

func (api *Controller) PutBookAction(c *gin.Context) {
	params := BookEndpointParams{}
	snap := models.Snapshot{}

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&snap)
	}
	if err != nil {
		abortWithError(c, bindStatus(err), err)
		return
	}

	if _, err := gridsquish.UnsquishWorkbook(snap, api.Options); err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}
	if err := api.Store.PutSnapshot(params.Book, snap); err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (api *Controller) GetBookAction(c *gin.Context) {
	params := BookEndpointParams{}
	if err := c.ShouldBindUri(&params); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	snap, err := api.Store.Snapshot(params.Book)
	if err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func abortWithError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// isDataError reports whether err describes malformed compact data.
func isDataError(err error) bool {
	return errors.Is(err, gridsquish.ErrCorruptData) ||
		errors.Is(err, gridsquish.ErrUnsupportedVersion) ||
		errors.Is(err, models.ErrInvalidKey) ||
		errors.Is(err, models.ErrMultiColumnKey) ||
		errors.Is(err, models.ErrInvalidEntry) ||
		errors.Is(err, delta.ErrInvalidCode)
}

func bindStatus(err error) int {
	if isDataError(err) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func errorStatus(err error) int {
	switch {
	case isDataError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gridsquish.ErrInvalidEdit):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
