package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"turfbook/internal/domain"
	"turfbook/internal/middleware"
	"turfbook/internal/pkg/response"
	"turfbook/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetNotifications returns the caller's most recent notifications.
// @Summary		List notifications
// @Tags		Notifications
// @Security	BearerAuth
// @Param		limit	query	int	false	"Max items (default 20, max 100)"
// @Success		200	{object}	ListResponse
// @Failure		401	{object}	map[string]interface{}
// @Failure		500	{object}	map[string]interface{}
// @Router		/notifications [GET]
func (h *Handler) GetNotifications(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	limit := DefaultListLimit
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}

	items, unread, err := h.service.List(c.Request.Context(), userID, limit)
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get notifications")
		return
	}

	response.Success(c, http.StatusOK, ListResponse{Notifications: items, UnreadCount: unread})
}

// GetUnreadCount
// @Summary		Unread notification count
// @Tags		Notifications
// @Security	BearerAuth
// @Success		200	{object}	UnreadCountResponse
// @Router		/notifications/unread-count [GET]
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	unread, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get unread count")
		return
	}

	response.Success(c, http.StatusOK, UnreadCountResponse{UnreadCount: unread})
}

// MarkAsRead flips is_read for one of the caller's notifications.
// @Summary		Mark notification as read
// @Tags		Notifications
// @Security	BearerAuth
// @Param		id	path	string	true	"Notification ID"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/notifications/{id}/read [PATCH]
func (h *Handler) MarkAsRead(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
			return
		}
		response.CustomError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark as read")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "read"})
}

// MarkAllAsRead
// @Summary		Mark all notifications as read
// @Tags		Notifications
// @Security	BearerAuth
// @Success		200	{object}	MarkAllResponse
// @Router		/notifications/read-all [POST]
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	updated, err := h.service.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark as read")
		return
	}

	response.Success(c, http.StatusOK, MarkAllResponse{Status: "all_read", Updated: updated})
}

// Create stores a notification for one recipient (admin).
// @Summary		Create notification
// @Tags		Admin
// @Security	BearerAuth
// @Param		body	body	CreateRequest	true	"Notification"
// @Success		201	{object}	domain.Notification
// @Router		/admin/notifications [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid notification", errs)
		return
	}

	n, err := h.service.Create(c.Request.Context(), CreateInput{
		RecipientID: req.RecipientID,
		Type:        domain.NotificationType(req.Type),
		Title:       req.Title,
		Message:     req.Message,
		Link:        req.Link,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, n)
}

// Broadcast sends the same notification to many recipients (admin).
// @Summary		Broadcast notification
// @Tags		Admin
// @Security	BearerAuth
// @Param		body	body	BroadcastRequest	true	"Broadcast"
// @Success		201	{object}	BroadcastResponse
// @Router		/admin/notifications/broadcast [POST]
func (h *Handler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid broadcast", errs)
		return
	}

	created, err := h.service.Broadcast(c.Request.Context(), req.RecipientIDs, req.Title, req.Message, req.Link)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, BroadcastResponse{Created: created})
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidType):
		response.CustomError(c, http.StatusBadRequest, "INVALID_TYPE", err.Error())
	case errors.Is(err, ErrEmptyTitle):
		response.CustomError(c, http.StatusBadRequest, "EMPTY_TITLE", err.Error())
	case errors.Is(err, ErrNoRecipients):
		response.CustomError(c, http.StatusBadRequest, "NO_RECIPIENTS", err.Error())
	default:
		response.CustomError(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create notification")
	}
}
