package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"timetable-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription handles the creation or replacement of a subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.UpsertSubscription(c.Request.Context(), &subscription); err != nil {
		h.abortWithStoreError(c, err, "save subscription")
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		h.abortWithStoreError(c, err, "delete subscription")
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam reads key without URL decoding; push endpoints are matched
// exactly as the browser registered them.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription handles the retrieval of a subscription.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	subscription, err := h.store.GetSubscription(c.Request.Context(), raw)
	if err != nil {
		h.abortWithStoreError(c, err, "retrieve subscription")
		return
	}

	c.JSON(http.StatusOK, gin.H{"endpoint": subscription.Endpoint, "created_at": subscription.CreatedAt})
}
