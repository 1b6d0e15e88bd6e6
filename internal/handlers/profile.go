// internal/handlers/profile.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MadeByJay/ai-product-search/internal/services"
	"github.com/MadeByJay/ai-product-search/internal/utils"
)

const maxMembershipIDs = 500

type ProfileHandler struct {
	saved SavedItems
	prefs Preferences
}

func NewProfileHandler(saved SavedItems, prefs Preferences) *ProfileHandler {
	return &ProfileHandler{saved: saved, prefs: prefs}
}

func routeUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return userID, true
}

// GET /profile/:userId/saved
func (h *ProfileHandler) ListSaved(c *gin.Context) {
	userID, ok := routeUserID(c)
	if !ok {
		return
	}

	items, err := h.saved.ListSaved(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, items)
}

// POST /profile/:userId/saved
func (h *ProfileHandler) ToggleSaved(c *gin.Context) {
	userID, ok := routeUserID(c)
	if !ok {
		return
	}

	var req services.ToggleSavedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid JSON body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.saved.Toggle(c.Request.Context(), userID, strings.TrimSpace(req.ProductID))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /profile/:userId/saved/check?ids=a,b,c
func (h *ProfileHandler) CheckSaved(c *gin.Context) {
	userID, ok := routeUserID(c)
	if !ok {
		return
	}

	ids := parseIDList(c.Query("ids"))
	if len(ids) > maxMembershipIDs {
		utils.BadRequestResponse(c, "Too many ids", gin.H{"max": maxMembershipIDs})
		return
	}

	saved, err := h.saved.CheckMembership(c.Request.Context(), userID, ids)
	if err != nil {
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{"saved": saved})
}

// GET /profile/:userId/preferences
func (h *ProfileHandler) GetPreferences(c *gin.Context) {
	userID, ok := routeUserID(c)
	if !ok {
		return
	}

	prefs, err := h.prefs.Get(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
		return
	}
	if prefs == nil {
		utils.SuccessResponse(c, gin.H{})
		return
	}

	utils.SuccessResponse(c, prefs)
}

// POST /profile/:userId/preferences
func (h *ProfileHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := routeUserID(c)
	if !ok {
		return
	}

	var req services.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid JSON body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	prefs, err := h.prefs.Upsert(c.Request.Context(), userID, req)
	if err != nil {
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, prefs)
}

// parseIDList splits a comma separated list, dropping blanks and repeats.
func parseIDList(raw string) []string {
	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
