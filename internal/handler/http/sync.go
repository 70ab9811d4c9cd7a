package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-collection-sync/internal/utils"
	"github.com/MKhiriev/go-collection-sync/internal/validators"
	"github.com/MKhiriev/go-collection-sync/models"
)

// decode unmarshals the envelope payload into the method's request type and
// validates it.
func decode[T any](r *http.Request, v validators.Validator, sr *syncRequest) (T, error) {
	var req T
	if err := json.Unmarshal(sr.body, &req); err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if err := v.Validate(r.Context(), req); err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return req, nil
}

// session returns the envelope and the authenticated login of r.
func session(r *http.Request) (*syncRequest, string, error) {
	sr, ok := syncRequestFromContext(r.Context())
	if !ok {
		return nil, "", ErrNoSyncRequest
	}
	login, ok := utils.GetUserLoginFromContext(r.Context())
	if !ok {
		return nil, "", ErrNoUser
	}
	return sr, login, nil
}

func (h *Handler) hostKey(w http.ResponseWriter, r *http.Request) {
	sr, ok := syncRequestFromContext(r.Context())
	if !ok {
		h.writeError(w, r, ErrNoSyncRequest)
		return
	}

	req, err := decode[models.HostKeyRequest](r, h.validator, sr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	key, err := h.services.AuthService.HostKey(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.HostKeyResponse{Key: key.SignedString}, http.StatusOK)
}

func (h *Handler) meta(w http.ResponseWriter, r *http.Request) {
	sr, login, err := session(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := decode[models.MetaRequest](r, h.validator, sr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.SyncVersion == 0 {
		req.SyncVersion = sr.header.SyncVersion
	}
	if req.ClientVersion == "" {
		req.ClientVersion = sr.header.ClientVersion
	}

	meta, err := h.services.SyncServer.Meta(r.Context(), login, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, meta, http.StatusOK)
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	sr, login, err := session(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := decode[models.StartRequest](r, h.validator, sr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	graves, err := h.services.SyncServer.Start(r.Context(), login, sr.header.SessionKey, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, graves, http.StatusOK)
}

func (h *Handler) applyGraves(w http.ResponseWriter, r *http.Request) {
	sr, login, err := session(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := decode[models.ApplyGravesRequest](r, h.validator, sr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err = h.services.SyncServer.ApplyGraves(r.Context(), login, sr.header.SessionKey, req); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, nil, http.StatusOK)
}

func (h *Handler) applyChanges(w http.ResponseWriter, r *http.Request) {
	sr, login, err := session(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := decode[models.ApplyChangesRequest](r, h.validator, sr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	changes, err := h.services.SyncServer.ApplyChanges(r.Context(), login, sr.header.SessionKey, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, changes, http.StatusOK)
}

func (h *Handler) chunk(w http.ResponseWriter, r *http.Request) {
	sr, login, err := session(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	chunk, err := h.services.SyncServer.Chunk(r.Context(), login, sr.header.SessionKey)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, chunk, http.StatusOK)
}

func (h *Handler) applyChunk(w http.ResponseWriter, r *http.Request) {
	sr, login, err := session(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := decode[models.ApplyChunkRequest](r, h.validator, sr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err = h.services.SyncServer.ApplyChunk(r.Context(), login, sr.header.SessionKey, req); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, nil, http.StatusOK)
}

func (h *Handler) sanityCheck(w http.ResponseWriter, r *http.Request) {
	sr, login, err := session(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := decode[models.SanityCheckRequest](r, h.validator, sr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.services.SyncServer.SanityCheck(r.Context(), login, sr.header.SessionKey, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) finish(w http.ResponseWriter, r *http.Request) {
	sr, login, err := session(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	modified, err := h.services.SyncServer.Finish(r.Context(), login, sr.header.SessionKey)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, modified, http.StatusOK)
}

func (h *Handler) abort(w http.ResponseWriter, r *http.Request) {
	sr, login, err := session(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err = h.services.SyncServer.Abort(r.Context(), login, sr.header.SessionKey); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, nil, http.StatusOK)
}

// upload takes the inflated collection file as the request payload.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	sr, login, err := session(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reply, err := h.services.SyncServer.Upload(r.Context(), login, sr.body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, reply, http.StatusOK)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	_, login, err := session(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data, err := h.services.SyncServer.Download(r.Context(), login)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteBytes(w, data, http.StatusOK)
}
