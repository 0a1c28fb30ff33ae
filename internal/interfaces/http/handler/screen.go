package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/erp/console/internal/application/guard"
	"github.com/erp/console/internal/application/remote"
	"github.com/erp/console/internal/application/screen"
	"github.com/erp/console/internal/application/view"
	"github.com/erp/console/internal/infrastructure/apiclient"
	"github.com/erp/console/internal/interfaces/http/dto"
	"github.com/erp/console/internal/interfaces/http/middleware"
)

// maxUploadBytes bounds the file part of a multipart form
const maxUploadBytes = 8 << 20

// ScreenHandler serves every entity screen registered in a screen.Registry
type ScreenHandler struct {
	BaseHandler
	screens *screen.Registry
	markers *screen.MarkerStore
	prefix  string
}

// NewScreenHandler creates a screen handler. prefix is the API mount
// point, used to build print URLs.
func NewScreenHandler(screens *screen.Registry, markers *screen.MarkerStore, prefix string) *ScreenHandler {
	return &ScreenHandler{screens: screens, markers: markers, prefix: prefix}
}

func (h *ScreenHandler) lookup(c *gin.Context) (screen.Screen, bool) {
	s, ok := h.screens.Get(c.Param("entity"))
	if !ok {
		h.ErrorWithCode(c, dto.ErrCodeUnknownScreen, fmt.Sprintf("Unknown screen %q", c.Param("entity")))
	}
	return s, ok
}

// Navigation lists the screens the current session may open
func (h *ScreenHandler) Navigation(c *gin.Context) {
	s, _ := middleware.GetSession(c)
	out := make([]screen.Meta, 0)
	for _, m := range h.screens.All() {
		if guard.Decide(s, m.Roles).Outcome == guard.Render {
			out = append(out, m)
		}
	}
	h.Success(c, out)
}

// List serves one page of a screen's records. A failed fetch is a 502
// that still carries the page with its inline error.
func (h *ScreenHandler) List(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	page, err := s.List(c.Request.Context(), req.Filter(c.Request.URL.Query()))
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.Response{
			Data:  page,
			Error: &dto.ErrorInfo{Code: dto.ErrCodeUpstream, Message: page.Error, RequestID: middleware.GetRequestID(c)},
		})
		return
	}
	h.Success(c, page)
}

// Detail serves one record. When it cannot be fetched the record comes
// back in the not-found state with its back-to-list target.
func (h *ScreenHandler) Detail(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	rec := s.Detail(c.Request.Context(), c.Param("id"))
	if !rec.Found() {
		c.JSON(http.StatusNotFound, dto.Response{
			Data:  rec,
			Error: &dto.ErrorInfo{Code: dto.ErrCodeNotFound, Message: rec.Error, RequestID: middleware.GetRequestID(c)},
		})
		return
	}
	h.Success(c, rec)
}

// NewForm serves an empty create form with its option lists
func (h *ScreenHandler) NewForm(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	h.Success(c, s.NewForm(c.Request.Context()))
}

// EditForm serves the update form seeded from the record
func (h *ScreenHandler) EditForm(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	fv, out := s.EditForm(c.Request.Context(), c.Param("id"))
	h.Outcome(c, fv, out, http.StatusNotFound)
}

// Create submits a create form
func (h *ScreenHandler) Create(c *gin.Context) {
	h.submit(c, "")
}

// Update submits an update form
func (h *ScreenHandler) Update(c *gin.Context) {
	h.submit(c, c.Param("id"))
}

func (h *ScreenHandler) submit(c *gin.Context, id string) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	draft, file, err := readDraft(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	fv, out := s.Submit(c.Request.Context(), id, draft, file)
	h.Outcome(c, fv, out, http.StatusBadRequest)
}

// readDraft accepts either a JSON draft body or a multipart form with the
// draft as JSON in "draft" and an optional file in "file"
func readDraft(c *gin.Context) (json.RawMessage, *apiclient.File, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, nil, errors.New("Unable to read request body")
		}
		return raw, nil, nil
	}

	draft := json.RawMessage(c.PostForm("draft"))
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return draft, nil, nil
	}
	if err != nil {
		return nil, nil, errors.New("Invalid file upload")
	}
	if header.Size > maxUploadBytes {
		return nil, nil, errors.New("File is too large")
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, errors.New("Invalid file upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, errors.New("Invalid file upload")
	}
	return draft, &apiclient.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Delete removes a record. The caller confirms with ?confirm=true; without
// it nothing is sent and the response says the delete was cancelled.
func (h *ScreenHandler) Delete(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var (
		confirm dto.DeleteRequest
		list    dto.ListRequest
	)
	if err := c.ShouldBindQuery(&confirm); err != nil {
		h.BadRequest(c, "Invalid confirm flag")
		return
	}
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	confirmer := remote.ConfirmFunc(func(_ context.Context, _ string) bool { return confirm.Confirm })
	page, out := s.Delete(c.Request.Context(), c.Param("id"), list.Filter(c.Request.URL.Query()), confirmer)
	c.JSON(deleteStatus(out), dto.FromOutcome(page, out))
}

// deleteStatus passes API refusals such as 404 and 409 through; a failure
// without a client-error answer is a bad gateway
func deleteStatus(out view.Outcome) int {
	switch {
	case out.OK || confirmedCancel(out):
		return http.StatusOK
	case out.Status >= 400 && out.Status < 500:
		return out.Status
	default:
		return http.StatusBadGateway
	}
}

func confirmedCancel(out view.Outcome) bool {
	return out.Toast != nil && out.Toast.Kind == view.ToastInfo
}

// PrintMarker issues a one-shot marker so the next print page load opens
// the print dialog once
func (h *ScreenHandler) PrintMarker(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	meta := s.Meta()
	if meta.Print == "" {
		h.HandleError(c, screen.ErrNotPrintable)
		return
	}
	token := h.markers.Issue(meta.Name, c.Param("id"))
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(
		dto.NewMarkerResponse(h.prefix, meta.Name, c.Param("id"), token)))
}

// Print renders the record's document as HTML. ?print=1 or a valid
// ?marker= embeds the print dialog.
func (h *ScreenHandler) Print(c *gin.Context) {
	h.print(c, false)
}

// PrintPDF renders the record's document as PDF
func (h *ScreenHandler) PrintPDF(c *gin.Context) {
	h.print(c, true)
}

func (h *ScreenHandler) print(c *gin.Context, pdf bool) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	res, err := s.Print(c.Request.Context(), c.Param("id"), screen.PrintOptions{
		Auto:   dto.BoolParam(c.Query("print")),
		Marker: c.Query("marker"),
		PDF:    pdf,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !res.Record.Found() {
		c.JSON(http.StatusNotFound, dto.Response{
			Data:  res.Record,
			Error: &dto.ErrorInfo{Code: dto.ErrCodeNotFound, Message: res.Record.Error, RequestID: middleware.GetRequestID(c)},
		})
		return
	}

	if pdf {
		c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s-%s.pdf"`, s.Meta().Name, c.Param("id")))
		c.Data(http.StatusOK, "application/pdf", res.PDF)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(res.HTML))
}
