package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v9"
	"github.com/pkg/errors"
)

// ChangeFeed fans out plant-collection change notifications through Redis
// pub/sub, one channel per owner. Messages carry no payload, they only tell
// subscribers to re-query.
type ChangeFeed struct {
	Redis *redis.Client
}

func plantsChannel(ownerID string) string {
	return "plants:" + ownerID
}

func (f ChangeFeed) PublishPlantsChanged(ctx context.Context, ownerID string) error {
	if err := f.Redis.Publish(ctx, plantsChannel(ownerID), "changed").Err(); err != nil {
		return errors.Wrapf(err, "error publishing to channel: %s", plantsChannel(ownerID))
	}
	return nil
}

func (f ChangeFeed) SubscribePlantsChanged(ctx context.Context, ownerID string) *redis.PubSub {
	return f.Redis.Subscribe(ctx, plantsChannel(ownerID))
}

// plantSubscribe streams the caller's plant collection over SSE. A full
// snapshot is sent on connect and again after every change notification, so
// a client that misses a message only lags one snapshot, never diverges.
func (s Server) plantSubscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("plantSubscribe: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			s.Logger.Errorf("plantSubscribe: ResponseWriter does not support flushing, UserID: %s", uc.user.ID.Hex())
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if s.Feed == nil {
			s.Logger.Errorf("plantSubscribe: ChangeFeed is not configured")
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		sub := s.Feed.SubscribePlantsChanged(r.Context(), uc.user.ID.Hex())
		defer func() {
			if err := sub.Close(); err != nil {
				s.Logger.Errorf("plantSubscribe: Error closing subscription, UserID: %s, err: %v", uc.user.ID.Hex(), err)
			}
		}()

		s.Logger.Debugf("plantSubscribe: UserID: %s subscribed", uc.user.ID.Hex())
		if err = s.writePlantsSnapshot(r.Context(), w, flusher, uc); err != nil {
			s.Logger.Errorf("plantSubscribe: Error writing initial snapshot, UserID: %s, err: %v", uc.user.ID.Hex(), err)
			return
		}

		for {
			select {
			case <-r.Context().Done():
				s.Logger.Debugf("plantSubscribe: UserID: %s disconnected", uc.user.ID.Hex())
				return
			case msg, open := <-sub.Channel():
				if !open {
					s.Logger.Debugf("plantSubscribe: Subscription channel closed, UserID: %s", uc.user.ID.Hex())
					return
				}
				s.Logger.Tracef("plantSubscribe: Change notification on channel: %s, UserID: %s", msg.Channel, uc.user.ID.Hex())
				if err = s.writePlantsSnapshot(r.Context(), w, flusher, uc); err != nil {
					s.Logger.Debugf("plantSubscribe: Error writing snapshot, UserID: %s, err: %v", uc.user.ID.Hex(), err)
					return
				}
			}
		}
	}
}

func (s Server) writePlantsSnapshot(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, uc userContext) error {
	ps, err := s.DB.PlantsFindByOwner(ctx, uc.user.ID)
	if err != nil {
		return errors.Wrapf(err, "error getting all Plants for User with ID: %s", uc.user.ID.Hex())
	}
	snapshot := make([]plantJson, 0, len(ps))
	for _, p := range ps {
		snapshot = append(snapshot, toPlantJson(p))
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrapf(err, "error encoding snapshot for User with ID: %s", uc.user.ID.Hex())
	}
	if _, err = fmt.Fprintf(w, "event: plants\ndata: %s\n\n", data); err != nil {
		return errors.Wrap(err, "error writing SSE event")
	}
	flusher.Flush()
	return nil
}
