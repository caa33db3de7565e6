package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"manual-assistant/internal/domain"
	"manual-assistant/internal/usecase"
)

type Handler struct {
	askUsecase usecase.AskUsecase
	registry   *domain.ManualRegistry
	jobRepo    domain.IngestJobRepository
	statsRepo  domain.PassageRepository
}

func NewHandler(
	askUsecase usecase.AskUsecase,
	registry *domain.ManualRegistry,
	jobRepo domain.IngestJobRepository,
	statsRepo domain.PassageRepository,
) *Handler {
	return &Handler{
		askUsecase: askUsecase,
		registry:   registry,
		jobRepo:    jobRepo,
		statsRepo:  statsRepo,
	}
}

// Register wires the routes into the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	e.POST("/v1/assistant/query", h.Query)
	e.GET("/v1/manuals", h.ListManuals)
	e.GET("/v1/manuals/stats", h.IndexStats)
	e.POST("/internal/manuals/ingest", h.EnqueueIngest)
}

type conversationState struct {
	LastQuestion string `json:"last_question,omitempty"`
	LastAnswer   string `json:"last_answer,omitempty"`
	LastBrand    string `json:"last_brand,omitempty"`
	LastType     string `json:"last_type,omitempty"`
	LastTitle    string `json:"last_title,omitempty"`
}

type queryRequest struct {
	Question string             `json:"question"`
	Context  *conversationState `json:"context,omitempty"`
	Followup *bool              `json:"followup,omitempty"`
	TopK     int                `json:"top_k,omitempty"`
}

type passageResponse struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
	Title   string  `json:"title,omitempty"`
	Page    int     `json:"page,omitempty"`
	Brand   string  `json:"equipment_brand,omitempty"`
	Type    string  `json:"equipment_type,omitempty"`
}

type queryResponse struct {
	Answer   string            `json:"answer,omitempty"`
	Passages []passageResponse `json:"passages,omitempty"`
	Context  conversationState `json:"context"`
	Followup bool              `json:"followup"`
	Fallback bool              `json:"fallback"`
	Reason   string            `json:"reason,omitempty"`
}

// Query answers one conversational turn.
// (POST /v1/assistant/query)
func (h *Handler) Query(ctx echo.Context) error {
	var req queryRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Question == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	input := usecase.AskInput{
		Question:         req.Question,
		FollowupOverride: req.Followup,
		TopK:             req.TopK,
	}
	if req.Context != nil {
		input.Prior = domain.ConversationContext{
			LastQuestion: req.Context.LastQuestion,
			LastAnswer:   req.Context.LastAnswer,
			LastBrand:    req.Context.LastBrand,
			LastType:     req.Context.LastType,
			LastTitle:    req.Context.LastTitle,
		}
	}

	output, err := h.askUsecase.Execute(ctx.Request().Context(), input)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	passages := make([]passageResponse, 0, len(output.Passages))
	for _, p := range output.Passages {
		passages = append(passages, passageResponse{
			Content: p.Content,
			Score:   p.Score,
			Title:   p.Metadata.Title,
			Page:    p.Metadata.PageNumber,
			Brand:   p.Metadata.EquipmentBrand,
			Type:    p.Metadata.EquipmentType,
		})
	}

	return ctx.JSON(http.StatusOK, queryResponse{
		Answer:   output.Answer,
		Passages: passages,
		Context: conversationState{
			LastQuestion: output.Context.LastQuestion,
			LastAnswer:   output.Context.LastAnswer,
			LastBrand:    output.Context.LastBrand,
			LastType:     output.Context.LastType,
			LastTitle:    output.Context.LastTitle,
		},
		Followup: output.Followup,
		Fallback: output.Fallback,
		Reason:   output.Reason,
	})
}

type manualResponse struct {
	Path           string `json:"path"`
	Title          string `json:"title"`
	EquipmentType  string `json:"equipment_type"`
	EquipmentBrand string `json:"equipment_brand"`
	EquipmentModel string `json:"equipment_model,omitempty"`
	Tier           int    `json:"tier"`
	Available      bool   `json:"available"`
}

// ListManuals reports the registered manuals and whether each file is
// present on disk.
// (GET /v1/manuals)
func (h *Handler) ListManuals(ctx echo.Context) error {
	manuals := make([]manualResponse, 0, len(h.registry.Manuals))
	for _, m := range h.registry.Manuals {
		manuals = append(manuals, manualResponse{
			Path:           m.Path,
			Title:          m.Title,
			EquipmentType:  m.EquipmentType,
			EquipmentBrand: m.EquipmentBrand,
			EquipmentModel: m.EquipmentModel,
			Tier:           m.Tier,
			Available:      m.Exists(),
		})
	}
	return ctx.JSON(http.StatusOK, map[string]interface{}{"manuals": manuals})
}

// IndexStats reports passage counts per manual.
// (GET /v1/manuals/stats)
func (h *Handler) IndexStats(ctx echo.Context) error {
	stats, err := h.statsRepo.Stats(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"passage_count": stats.PassageCount,
		"manuals":       stats.ManualCounts,
	})
}

type ingestRequest struct {
	Path string `json:"path"`
}

// EnqueueIngest queues a registered manual for background ingestion.
// (POST /internal/manuals/ingest)
func (h *Handler) EnqueueIngest(ctx echo.Context) error {
	var req ingestRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Path == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "missing path"})
	}

	var manual *domain.ManualDefinition
	for i := range h.registry.Manuals {
		if h.registry.Manuals[i].Path == req.Path {
			manual = &h.registry.Manuals[i]
			break
		}
	}
	if manual == nil {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "manual not registered"})
	}

	now := time.Now()
	job := &domain.IngestJob{
		ID:        uuid.New(),
		Manual:    *manual,
		Status:    "new",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.jobRepo.Enqueue(ctx.Request().Context(), job); err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(http.StatusAccepted, map[string]string{"job_id": job.ID.String(), "status": "queued"})
}

// Healthz is the liveness endpoint.
// (GET /healthz)
func (h *Handler) Healthz(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
