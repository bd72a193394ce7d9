package push

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"turfbook/internal/middleware"
	"turfbook/internal/pkg/response"
	"turfbook/internal/pkg/validator"
)

// FunctionHandler exposes the fanout as an invokable function endpoint.
// It answers with bare JSON bodies, not the API envelope.
type FunctionHandler struct {
	fanout *FanoutService
}

func NewFunctionHandler(fanout *FanoutService) *FunctionHandler {
	return &FunctionHandler{fanout: fanout}
}

// Handle serves POST /functions/v1/push-fanout.
func (h *FunctionHandler) Handle(c *gin.Context) {
	var req FanoutRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	var rec Record
	if req.Record != nil {
		rec = *req.Record
	}

	res, err := h.fanout.Fanout(c.Request.Context(), rec)
	if err != nil {
		log.Printf("push_fanout_error err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if res.Skipped != "" {
		c.JSON(http.StatusOK, gin.H{"message": res.Skipped})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Sent %d notifications", res.Attempted)})
}

type SubscriptionHandler struct {
	service        *SubscriptionService
	vapidPublicKey string
}

func NewSubscriptionHandler(service *SubscriptionService, vapidPublicKey string) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, vapidPublicKey: vapidPublicKey}
}

// Register stores a push endpoint for the caller.
// @Summary		Register push subscription
// @Tags		Push
// @Security	BearerAuth
// @Param		body	body	RegisterRequest	true	"Browser PushSubscription or FCM token"
// @Success		201	{object}	Subscription
// @Failure		400	{object}	map[string]interface{}
// @Router		/push/subscriptions [POST]
func (h *SubscriptionHandler) Register(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid subscription", errs)
		return
	}

	sub, err := h.service.Register(c.Request.Context(), userID, RegisterInput{
		Kind:     Kind(req.Kind),
		Endpoint: req.Endpoint,
		Keys:     req.Keys,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrUnsupportedKind):
			response.CustomError(c, http.StatusBadRequest, "INVALID_SUBSCRIPTION", err.Error())
		default:
			response.CustomError(c, http.StatusInternalServerError, "REGISTER_FAILED", "Failed to register push subscription")
		}
		return
	}

	response.Success(c, http.StatusCreated, sub)
}

// Unregister removes one of the caller's push endpoints.
// @Summary		Remove push subscription
// @Tags		Push
// @Security	BearerAuth
// @Param		body	body	UnregisterRequest	true	"Endpoint"
// @Router		/push/subscriptions [DELETE]
func (h *SubscriptionHandler) Unregister(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req UnregisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := h.service.Unregister(c.Request.Context(), userID, req.Endpoint); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "Push subscription not found")
		case errors.Is(err, ErrInvalidPayload):
			response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		default:
			response.CustomError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to remove push subscription")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

func (h *SubscriptionHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	subs, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list push subscriptions")
		return
	}
	response.Success(c, http.StatusOK, subs)
}

// VAPIDPublicKey lets browsers subscribe with this server's application server key.
func (h *SubscriptionHandler) VAPIDPublicKey(c *gin.Context) {
	if h.vapidPublicKey == "" {
		response.CustomError(c, http.StatusNotFound, "WEB_PUSH_DISABLED", "Web push is not configured")
		return
	}
	response.Success(c, http.StatusOK, VAPIDKeyResponse{PublicKey: h.vapidPublicKey})
}
