package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
)

// RecruitServiceInterface は採用ハンドラーが必要とするサービスインターフェース。
type RecruitServiceInterface interface {
	ListActive(ctx context.Context) ([]*model.JobPosition, error)
	GetByID(ctx context.Context, id int64) (*model.JobPosition, error)
	ListAll(ctx context.Context) ([]*model.JobPosition, error)
	Create(ctx context.Context, in model.JobPositionInput) (*model.JobPosition, error)
	Update(ctx context.Context, id int64, patch model.JobPositionPatch) (*model.JobPosition, error)
	Delete(ctx context.Context, id int64) error
}

// RecruitHandler は採用ポジションのHTTPハンドラー。
type RecruitHandler struct {
	service RecruitServiceInterface
	metrics ContentWriteRecorder
}

// NewRecruitHandler はRecruitHandlerを生成する。metricsはnil可。
func NewRecruitHandler(service RecruitServiceInterface, metrics ContentWriteRecorder) *RecruitHandler {
	return &RecruitHandler{
		service: service,
		metrics: metrics,
	}
}

// jobPositionResponse は採用ポジションのAPIレスポンス。
type jobPositionResponse struct {
	ID           int64     `json:"id"`
	PositionName string    `json:"positionName"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Location     string    `json:"location"`
	Salary       string    `json:"salary"`
	IsActive     int       `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toJobPositionResponse(p *model.JobPosition) jobPositionResponse {
	return jobPositionResponse{
		ID:           p.ID,
		PositionName: p.PositionName,
		Description:  p.Description,
		Requirements: p.Requirements,
		Location:     p.Location,
		Salary:       p.Salary,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toJobPositionResponseList(positions []*model.JobPosition) []jobPositionResponse {
	out := make([]jobPositionResponse, len(positions))
	for i, p := range positions {
		out[i] = toJobPositionResponse(p)
	}
	return out
}

// ListActive は募集中ポジションの一覧を返す。
// GET /api/recruit/positions
func (h *RecruitHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	positions, err := h.service.ListActive(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobPositionResponseList(positions))
}

// GetByID はポジションを1件返す。募集停止中のポジションも返す。
// GET /api/recruit/positions/{id}
func (h *RecruitHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	position, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobPositionResponse(position))
}

// ListAll はアクティブ/非アクティブを問わず全ポジションの一覧を返す。
// GET /api/admin/recruit/positions
func (h *RecruitHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	positions, err := h.service.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobPositionResponseList(positions))
}

// createJobPositionRequest は採用ポジション作成リクエストのボディ。
type createJobPositionRequest struct {
	PositionName string `json:"positionName"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Location     string `json:"location"`
	Salary       string `json:"salary"`
	IsActive     *int   `json:"isActive"`
}

// Create はポジションを作成する。
// POST /api/admin/recruit/positions
func (h *RecruitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createJobPositionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	in := model.JobPositionInput{
		PositionName: req.PositionName,
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		Salary:       req.Salary,
	}
	if req.IsActive != nil {
		in.IsActive = *req.IsActive
	} else {
		in.IsActive = model.FlagOn
	}

	position, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordContentWrite("job_position", "create")
	}

	writeJSON(w, http.StatusCreated, toJobPositionResponse(position))
}

// updateJobPositionRequest は採用ポジション部分更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updateJobPositionRequest struct {
	PositionName *string `json:"positionName"`
	Description  *string `json:"description"`
	Requirements *string `json:"requirements"`
	Location     *string `json:"location"`
	Salary       *string `json:"salary"`
	IsActive     *int    `json:"isActive"`
}

// Update はポジションの指定フィールドのみを更新する。
// PATCH /api/admin/recruit/positions/{id}
func (h *RecruitHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var req updateJobPositionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	patch := model.JobPositionPatch{
		PositionName: req.PositionName,
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		Salary:       req.Salary,
		IsActive:     req.IsActive,
	}

	position, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordContentWrite("job_position", "update")
	}

	writeJSON(w, http.StatusOK, toJobPositionResponse(position))
}

// Delete はポジションを削除する。
// DELETE /api/admin/recruit/positions/{id}
func (h *RecruitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordContentWrite("job_position", "delete")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
