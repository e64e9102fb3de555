package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studentportal/internal/model"
	"studentportal/internal/service"
)

type UserHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type userView struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email_address"`
	Phone     string `json:"phone_number"`
	FullName  string `json:"full_name"`
}

func newUserView(u *model.User) userView {
	return userView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		FullName:  u.FullName(),
	}
}

type userListItem struct {
	ID               int    `json:"id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email_address"`
	Phone            string `json:"phone_number"`
	RegistrationDate string `json:"registration_date"`
}

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		reqLogger(c, h.logger).Error("ListUsers: failed to fetch users", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgServerError)
		return
	}

	items := make([]userListItem, 0, len(users))
	for _, u := range users {
		items = append(items, userListItem{
			ID:               u.ID,
			FirstName:        u.FirstName,
			LastName:         u.LastName,
			Email:            u.Email,
			Phone:            u.Phone,
			RegistrationDate: u.RegistrationDate.Format(service.TimestampLayout),
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": items})
}

type createUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email_address"`
	Phone     string `json:"phone_number"`
	Password  string `json:"password"`
}

// Create POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	l := reqLogger(c, h.logger)

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn("CreateUser: invalid body", zap.Error(err))
		respondError(c, http.StatusBadRequest, "All fields are required")
		return
	}

	u, err := h.users.Create(c.Request.Context(), service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	switch {
	case errors.Is(err, service.ErrFieldsRequired):
		respondError(c, http.StatusBadRequest, "All fields are required")
		return
	case errors.Is(err, service.ErrInvalidName):
		respondError(c, http.StatusBadRequest, "Names should only contain letters, spaces, and hyphens")
		return
	case errors.Is(err, service.ErrInvalidEmail):
		respondError(c, http.StatusBadRequest, MsgInvalidEmail)
		return
	case errors.Is(err, service.ErrInvalidPhone):
		respondError(c, http.StatusBadRequest, "Please enter a valid phone number")
		return
	case errors.Is(err, service.ErrEmailTaken):
		l.Warn("CreateUser: duplicate email")
		respondError(c, http.StatusBadRequest, "An account with this email already exists")
		return
	case err != nil:
		l.Error("CreateUser: failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgServerError)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User account created successfully",
		"user":    newUserView(u),
	})
}

// Delete DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	l := reqLogger(c, h.logger)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		respondError(c, http.StatusNotFound, MsgEndpointNotFound)
		return
	}

	err = h.users.Delete(c.Request.Context(), id)
	if errors.Is(err, service.ErrUserNotFound) {
		l.Warn("DeleteUser: not found", zap.Int("user_id", id))
		respondError(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		l.Error("DeleteUser: failed", zap.Int("user_id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User account deleted successfully"})
}
