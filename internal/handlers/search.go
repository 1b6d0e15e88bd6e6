// internal/handlers/search.go
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MadeByJay/ai-product-search/internal/models"
	"github.com/MadeByJay/ai-product-search/internal/services"
	"github.com/MadeByJay/ai-product-search/internal/utils"
)

const (
	defaultSimilarLimit = 10
	maxSimilarLimit     = 100

	// StatusClientClosedRequest is logged when the caller hangs up mid-search.
	StatusClientClosedRequest = 499
)

type SearchHandler struct {
	search Searcher
	log    *logrus.Logger
}

func NewSearchHandler(search Searcher, log *logrus.Logger) *SearchHandler {
	return &SearchHandler{search: search, log: log}
}

// searchError keeps the {results, error} shape clients already parse while
// carrying the standard error fields.
type searchError struct {
	utils.APIError
	Results   []models.Product `json:"results"`
	Error     string           `json:"error"`
	Retryable bool             `json:"retryable"`
}

// POST /search
func (h *SearchHandler) Search(c *gin.Context) {
	var req services.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, "Invalid JSON body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	resp, err := h.search.Search(c.Request.Context(), req)
	if err != nil {
		h.respondSearchError(c, err)
		return
	}

	utils.SuccessResponse(c, resp)
}

// GET /similar/:id
func (h *SearchHandler) Similar(c *gin.Context) {
	limit := utils.GetLimitParam(c, defaultSimilarLimit, maxSimilarLimit)

	resp, err := h.search.Similar(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.respondSearchError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"results": resp.Results})
}

func (h *SearchHandler) respondSearchError(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) {
		h.log.WithField("correlation_id", utils.GetCorrelationIDFromContext(c)).Info("Search cancelled by client")
		c.AbortWithStatus(StatusClientClosedRequest)
		return
	}

	status := http.StatusBadGateway
	message := "Search is temporarily unavailable"
	if errors.Is(err, services.ErrSearchTimeout) {
		status = http.StatusServiceUnavailable
		message = "Search timed out"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, searchError{
		APIError: utils.APIError{
			OK:            false,
			Code:          "UPSTREAM_UNAVAILABLE",
			Message:       message,
			CorrelationID: utils.GetCorrelationIDFromContext(c),
		},
		Results:   []models.Product{},
		Error:     message,
		Retryable: true,
	})
}
