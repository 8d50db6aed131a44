package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/internal/service"
	apperrors "github.com/utafrali/devcamper/pkg/errors"
	"github.com/utafrali/devcamper/pkg/httputil"
	"github.com/utafrali/devcamper/pkg/pagination"
)

// multipartOverhead is allowed on top of the photo size for form framing.
const multipartOverhead = 1 << 20

// BootcampHandler handles HTTP requests for bootcamp endpoints.
type BootcampHandler struct {
	service   *service.BootcampService
	maxUpload int64
	logger    *slog.Logger
}

// NewBootcampHandler creates a new bootcamp HTTP handler.
func NewBootcampHandler(svc *service.BootcampService, maxUpload int64, logger *slog.Logger) *BootcampHandler {
	return &BootcampHandler{service: svc, maxUpload: maxUpload, logger: logger}
}

// List handles GET /api/v1/bootcamps.
func (h *BootcampHandler) List(w http.ResponseWriter, r *http.Request) {
	q := &queryParser{r: r}
	params := pagination.FromRequest(r)
	filter := domain.BootcampFilter{
		Careers:          q.list("careers"),
		Housing:          q.boolPtr("housing"),
		JobAssistance:    q.boolPtr("job_assistance"),
		JobGuarantee:     q.boolPtr("job_guarantee"),
		AcceptGI:         q.boolPtr("accept_gi"),
		AverageCostLTE:   q.floatPtr("average_cost_lte"),
		AverageRatingGTE: q.floatPtr("average_rating_gte"),
		Sort:             r.URL.Query().Get("sort"),
		Limit:            params.PerPage,
		Offset:           params.Offset,
	}
	if q.err != nil {
		httputil.WriteError(w, r, q.err, h.logger)
		return
	}

	bootcamps, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page := pagination.NewPage(total, params)
	httputil.WriteList(w, bootcamps, &page)
}

// Get handles GET /api/v1/bootcamps/{bootcampId}.
func (h *BootcampHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "bootcampId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, b)
}

// Create handles POST /api/v1/bootcamps.
func (h *BootcampHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var input service.CreateBootcampInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	b, err := h.service.Create(r.Context(), actor, &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, b)
}

// Update handles PUT /api/v1/bootcamps/{bootcampId}.
func (h *BootcampHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var input service.UpdateBootcampInput
	if err := decodeJSON(r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	b, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "bootcampId"), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, b)
}

// Delete handles DELETE /api/v1/bootcamps/{bootcampId}.
func (h *BootcampHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "bootcampId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, nil)
}

// SearchByRadius handles GET /api/v1/bootcamps/radius/{zipcode}/{distance}.
func (h *BootcampHandler) SearchByRadius(w http.ResponseWriter, r *http.Request) {
	distance, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("distance must be a number"), h.logger)
		return
	}
	unit, ok := domain.ParseDistanceUnit(r.URL.Query().Get("unit"))
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidInput("unit must be mi or km"), h.logger)
		return
	}

	bootcamps, err := h.service.SearchByRadius(r.Context(), chi.URLParam(r, "zipcode"), distance, unit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteList(w, bootcamps, nil)
}

// UploadPhoto handles PUT /api/v1/bootcamps/{bootcampId}/photo (multipart/form-data,
// field "file").
func (h *BootcampHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, r, apperrors.FileTooLarge(r.ContentLength, h.maxUpload), h.logger)
			return
		}
		httputil.WriteError(w, r, apperrors.InvalidInput("please upload a file"), h.logger)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("please upload a file"), h.logger)
		return
	}
	defer file.Close()

	b, err := h.service.UploadPhoto(r.Context(), actor, chi.URLParam(r, "bootcampId"), &service.PhotoUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, b)
}
