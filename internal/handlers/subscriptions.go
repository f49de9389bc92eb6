package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
)

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore

	// AllowSelfSubscribe permits a channel to subscribe to itself. Off by
	// default because the channel page counters double-count otherwise.
	AllowSelfSubscribe bool
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	channelID := r.PathValue("channelId")
	if err := authz.ValidateID(channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	if !h.AllowSelfSubscribe && channelID == userID {
		respondError(ctx, w, http.StatusBadRequest, "cannot subscribe to your own channel")
		return
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, userID, channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	message := "unsubscribed"
	if subscribed {
		message = "subscribed"
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"subscribed": subscribed}, message)
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId}: the channel's
// subscriber list with each subscriber's own subscriber count.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID := r.PathValue("channelId")
	if err := authz.ValidateID(channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	subscribers, err := h.Subscriptions.Subscribers(ctx, channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}
	if subscribers == nil {
		subscribers = []models.ChannelMember{}
	}

	respondData(ctx, w, http.StatusOK, subscribers, "channel subscribers")
}

// SubscribedChannels handles GET /api/v1/subscriptions/u/{subscriberId}: the
// channels a user is subscribed to.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID := r.PathValue("subscriberId")
	if err := authz.ValidateID(subscriberID); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	if _, err := h.Users.FindByID(ctx, subscriberID); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	channels, err := h.Subscriptions.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	if channels == nil {
		channels = []models.ChannelMember{}
	}

	respondData(ctx, w, http.StatusOK, channels, "subscribed channels")
}
