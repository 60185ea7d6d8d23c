package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/finbase/statement-sync/internal/api/middleware"
	"github.com/finbase/statement-sync/internal/domain"
	"github.com/finbase/statement-sync/internal/jobs"
	"github.com/finbase/statement-sync/internal/syncer"
)

// SyncService is the slice of the orchestrator the HTTP layer needs.
type SyncService interface {
	ConnectFolder(ctx context.Context, accountID, folderID string) error
	SyncAccount(ctx context.Context, accountID string) (*domain.SyncResult, error)
	Status(ctx context.Context, accountID string) (*syncer.Status, error)
}

// DriveHandler serves the statement-source endpoints: connect, folder search,
// sync and status.
type DriveHandler struct {
	service   SyncService
	search    syncer.FolderSearcher
	publisher jobs.Publisher
	log       zerolog.Logger
}

func NewDriveHandler(service SyncService, search syncer.FolderSearcher, publisher jobs.Publisher, log zerolog.Logger) *DriveHandler {
	return &DriveHandler{
		service:   service,
		search:    search,
		publisher: publisher,
		log:       log,
	}
}

// Connect handles POST /api/drive/connect/{accountID}. Re-connecting an
// account overwrites the previous folder association.
func (h *DriveHandler) Connect(w http.ResponseWriter, r *http.Request, accountID string) {
	var req struct {
		FolderID string `json:"folderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FolderID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "folderId is required")
		return
	}

	if err := h.service.ConnectFolder(r.Context(), accountID, req.FolderID); err != nil {
		if errors.Is(err, syncer.ErrAccountNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Bank account not found")
			return
		}
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to connect folder")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to connect statement folder")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Bank account connected to statement folder",
	})
}

// SearchFolders handles GET /api/drive/folders/search?query=...
func (h *DriveHandler) SearchFolders(w http.ResponseWriter, r *http.Request) {
	if h.search == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Folder search is not available for this statement source")
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Query parameter required")
		return
	}

	folders, err := h.search.SearchFolders(r.Context(), query)
	if err != nil {
		h.log.Error().Err(err).Str("query", query).Msg("Folder search failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to search folders")
		return
	}
	if folders == nil {
		folders = []domain.RemoteFolder{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"folders": folders,
	})
}

// Sync handles POST /api/drive/sync/{accountID}: a synchronous run returning
// the aggregated result, whatever mix of per-file successes and failures it
// contains.
func (h *DriveHandler) Sync(w http.ResponseWriter, r *http.Request, accountID string) {
	result, err := h.service.SyncAccount(r.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, syncer.ErrAccountNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Bank account not found")
		case errors.Is(err, syncer.ErrFolderNotLinked):
			middleware.WriteError(w, http.StatusBadRequest, "Bank account not connected to a statement folder")
		default:
			h.log.Error().Err(err).Str("account_id", accountID).Msg("Sync failed")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to sync statement folder")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// SyncAsync handles POST /api/drive/sync/{accountID}/async by enqueuing a
// background sync job and returning its ID.
func (h *DriveHandler) SyncAsync(w http.ResponseWriter, r *http.Request, accountID string) {
	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Background sync is not enabled")
		return
	}

	job := &jobs.SyncFolderJob{AccountID: accountID}
	if err := h.publisher.PublishSyncFolder(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to enqueue sync job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue sync job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("account_id", accountID).Msg("Sync job enqueued")
	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":     job.JobID,
		"account_id": accountID,
		"status":     string(job.Status),
	})
}

// Status handles GET /api/drive/status/{accountID}.
func (h *DriveHandler) Status(w http.ResponseWriter, r *http.Request, accountID string) {
	status, err := h.service.Status(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, syncer.ErrAccountNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Bank account not found")
			return
		}
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to get sync status")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get sync status")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"connected": status.Connected,
		"folderId":  status.FolderID,
		"lastSync":  status.LastSyncAt,
	})
}
