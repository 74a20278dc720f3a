package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/record-tracker/internal/authz"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/middleware"
	"github.com/iliyamo/record-tracker/internal/model"
	"github.com/iliyamo/record-tracker/internal/service"
)

// RecordHandler serves the caller's own records.
type RecordHandler struct {
	Records *service.Records
	Log     logging.Logger
}

func NewRecordHandler(r *service.Records, log logging.Logger) *RecordHandler {
	return &RecordHandler{Records: r, Log: log}
}

type createRecordReq struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// updateRecordReq uses pointers so absent fields stay untouched.
type updateRecordReq struct {
	Date    *string `json:"date"`
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

type recordResp struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      string    `json:"date"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRecordResp(r *model.Record) recordResp {
	return recordResp{
		ID:        r.ID,
		UserID:    r.UserID,
		Date:      r.Date,
		Content:   r.Content,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

// List returns the caller's records, newest first.
func (h *RecordHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	recs, err := h.Records.List(ctx, middleware.Identity(c))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	out := make([]recordResp, 0, len(recs))
	for _, r := range recs {
		out = append(out, toRecordResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"records": out})
}

// Create adds a pending record.
func (h *RecordHandler) Create(c echo.Context) error {
	var req createRecordReq
	if ok, err := bindGuarded(c, h.Log, h.Records.Gate, authz.CreateRecord, "", &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rec, err := h.Records.Create(ctx, middleware.Identity(c), req.Date, req.Content)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"record": toRecordResp(rec)})
}

// Update applies a partial update; served on both PUT and PATCH.
func (h *RecordHandler) Update(c echo.Context) error {
	var req updateRecordReq
	if ok, err := bindGuarded(c, h.Log, h.Records.Gate, authz.UpdateRecord, c.Param("id"), &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	patch := model.RecordPatch{Date: req.Date, Content: req.Content, Status: req.Status}
	rec, err := h.Records.Update(ctx, middleware.Identity(c), c.Param("id"), patch)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"record": toRecordResp(rec)})
}

// Delete removes one of the caller's records.
func (h *RecordHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Records.Delete(ctx, middleware.Identity(c), c.Param("id")); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
