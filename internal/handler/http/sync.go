// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-trip-keeper/internal/app"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
	"github.com/MKhiriev/go-trip-keeper/models"
)

type pushResponse struct {
	Pushed []models.Collection `json:"pushed"`
}

type deleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// push replaces every collection in the request body.
func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.push").Msg(app.MsgNoUserIDProvided)
		http.Error(w, app.MsgNoUserIDProvided, http.StatusBadRequest)
		return
	}

	var req models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.push").Msg("invalid JSON was passed")
		http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	pushed, err := h.services.SnapshotService.Push(ctx, userID, req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.push").Int64("user_id", userID).Msg("error pushing snapshot")
		http.Error(w, messageFromError(err), statusFromError(err))
		return
	}

	h.metrics.observePush(pushed)

	if pushed == nil {
		pushed = []models.Collection{}
	}
	utils.WriteJSON(w, pushResponse{Pushed: pushed}, http.StatusOK)
}

// pull returns the user's collections as one JSON object keyed by
// collection name.
func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.pull").Msg(app.MsgNoUserIDProvided)
		http.Error(w, app.MsgNoUserIDProvided, http.StatusBadRequest)
		return
	}

	snapshot, err := h.services.SnapshotService.Pull(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.pull").Int64("user_id", userID).Msg("error pulling snapshot")
		http.Error(w, messageFromError(err), statusFromError(err))
		return
	}

	if snapshot == nil {
		snapshot = models.Snapshot{}
	}
	utils.WriteJSON(w, snapshot, http.StatusOK)
}

// delete removes the listed ids. Deleting unknown ids succeeds.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.delete").Msg(app.MsgNoUserIDProvided)
		http.Error(w, app.MsgNoUserIDProvided, http.StatusBadRequest)
		return
	}

	var req models.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.delete").Msg("invalid JSON was passed")
		http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	deleted, err := h.services.SnapshotService.Delete(ctx, userID, req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.delete").Int64("user_id", userID).Msg("error deleting entities")
		http.Error(w, messageFromError(err), statusFromError(err))
		return
	}

	utils.WriteJSON(w, deleteResponse{Deleted: deleted}, http.StatusOK)
}
