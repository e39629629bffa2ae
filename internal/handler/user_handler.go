package handler

import (
	"github.com/gin-gonic/gin"

	"cverve/internal/domain"
	"cverve/internal/service"
)

// UserHandler handles user balance endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create handles POST /api/v1/users
// @Summary Create a user
// @Description Register a user id (phone number) with an optional opening balance
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User details"
// @Success 201 {object} Response{data=UserBalanceResponse} "User created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 409 {object} ErrorResponseBody "User already exists"
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var input service.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, toUserBalanceResponse(user))
}

// Lookup handles POST /api/v1/users/lookup
// @Summary Get a user's balance
// @Tags users
// @Accept json
// @Produce json
// @Param request body LookupUserRequest true "User id"
// @Success 200 {object} Response{data=UserBalanceResponse} "User balance"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Router /users/lookup [post]
func (h *UserHandler) Lookup(c *gin.Context) {
	var input service.LookupUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), input.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, toUserBalanceResponse(user))
}

func toUserBalanceResponse(u *domain.UserBalance) UserBalanceResponse {
	return UserBalanceResponse{UserID: u.UserID, Balance: u.Balance}
}
