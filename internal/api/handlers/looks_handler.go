package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopthelook/scout/internal/index"
	"github.com/shopthelook/scout/internal/models"
	"github.com/shopthelook/scout/internal/pipeline"
	"github.com/shopthelook/scout/internal/products"
	"github.com/shopthelook/scout/internal/scouterrors"
)

// PipelineRunner runs the full pipeline for one outfit text.
type PipelineRunner interface {
	Run(ctx context.Context, userText string, opts pipeline.Options) ([]models.ItemLook, error)
}

// LooksHandler serves pipeline runs over HTTP.
type LooksHandler struct {
	runner            PipelineRunner
	defaultTopK       int
	defaultMaxResults int
}

// NewLooksHandler creates a LooksHandler with per-request defaults.
func NewLooksHandler(runner PipelineRunner, defaultTopK, defaultMaxResults int) *LooksHandler {
	return &LooksHandler{
		runner:            runner,
		defaultTopK:       defaultTopK,
		defaultMaxResults: defaultMaxResults,
	}
}

// SearchLooksRequest is the request body for POST /v1/looks/search.
type SearchLooksRequest struct {
	Text            string `json:"text"`
	TopK            int    `json:"topK,omitempty"`
	MaxResults      int    `json:"maxResults,omitempty"`
	ContinueOnError bool   `json:"continueOnError,omitempty"`
}

// ItemLookResponse is one per-item result in the response.
type ItemLookResponse struct {
	Item     models.ClothingItem    `json:"item"`
	Images   []models.ScoredImage   `json:"images"`
	ImageURL string                 `json:"imageUrl,omitempty"`
	Products []models.ProductResult `json:"products,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// SearchLooksResponse is the response body for POST /v1/looks/search.
type SearchLooksResponse struct {
	Looks []ItemLookResponse `json:"looks"`
}

// SearchLooks handles POST /v1/looks/search.
func (h *LooksHandler) SearchLooks(w http.ResponseWriter, r *http.Request) {
	var req SearchLooksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondBadRequest(w, "invalid JSON body")

		return
	}

	if strings.TrimSpace(req.Text) == "" {
		RespondBadRequest(w, "text is required and must be non-empty")

		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = h.defaultTopK
	}

	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = h.defaultMaxResults
	}

	if topK < 1 || maxResults < 1 {
		RespondBadRequest(w, "topK and maxResults must be at least 1")

		return
	}

	looks, err := h.runner.Run(r.Context(), req.Text, pipeline.Options{
		TopK:            topK,
		MaxResults:      maxResults,
		ContinueOnError: req.ContinueOnError,
	})
	if err != nil {
		respondPipelineError(w, err)

		return
	}

	resp := SearchLooksResponse{Looks: make([]ItemLookResponse, len(looks))}
	for i, look := range looks {
		entry := ItemLookResponse{
			Item:     look.Item,
			Images:   look.Retrieval.Images,
			ImageURL: look.ImageURL,
			Products: look.Products,
		}
		if look.Err != nil {
			entry.Error = look.Err.Error()
		}

		resp.Looks[i] = entry
	}

	RespondSuccess(w, http.StatusOK, resp)
}

// respondPipelineError maps the error taxonomy onto HTTP statuses: client
// mistakes are 400, upstream-service failures are 502, the rest 500.
func respondPipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, index.ErrInvalidTopK),
		errors.Is(err, products.ErrInvalidMaxResults):
		RespondBadRequest(w, err.Error())
	case errors.Is(err, scouterrors.ErrConfiguration):
		RespondError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
	case errors.Is(err, scouterrors.ErrParse),
		errors.Is(err, scouterrors.ErrUpload),
		errors.Is(err, scouterrors.ErrSearch):
		RespondError(w, http.StatusBadGateway, "Bad Gateway", err.Error())
	default:
		RespondError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}
