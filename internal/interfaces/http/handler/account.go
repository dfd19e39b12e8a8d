package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/physiomanager/backend/internal/application/identity"
)

// AccountHandler handles account profile and admin endpoints
type AccountHandler struct {
	BaseHandler
	accountService *identity.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *identity.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Me returns the caller's own account
func (h *AccountHandler) Me(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	account, err := h.accountService.GetByID(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// UpdateProfile updates the caller's own profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req identity.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	account, err := h.accountService.UpdateProfile(c.Request.Context(), accountID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// List returns all accounts. Admin only.
func (h *AccountHandler) List(c *gin.Context) {
	var filter identity.AccountListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	accounts, total, err := h.accountService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, accounts, total, page, pageSize)
}

// Get returns an account by ID. Admin only.
func (h *AccountHandler) Get(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	account, err := h.accountService.GetByID(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// SetRole changes another account's role. Admins cannot change their own.
func (h *AccountHandler) SetRole(c *gin.Context) {
	actorID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req identity.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	account, err := h.accountService.SetRole(c.Request.Context(), actorID, targetID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// Delete removes another account. Admins cannot delete themselves.
func (h *AccountHandler) Delete(c *gin.Context) {
	actorID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	if err := h.accountService.Delete(c.Request.Context(), actorID, targetID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
