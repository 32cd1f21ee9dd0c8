package handlers

import (
	"context"
	"net/http"

	pgrepo "github.com/ivankudzin/matefinder/internal/repo/postgres"
	"github.com/ivankudzin/matefinder/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matefinder/internal/transport/http/errors"
)

type StatsReader interface {
	Get(ctx context.Context) (pgrepo.Stats, error)
}

type StatsHandler struct {
	stats StatsReader
}

func NewStatsHandler(stats StatsReader) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
			Code:    "STATS_UNAVAILABLE",
			Message: "stats reader is unavailable",
		})
		return
	}

	stats, err := h.stats.Get(r.Context())
	if err != nil {
		httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
			Code:    "STATS_QUERY_FAILED",
			Message: "failed to collect statistics",
		})
		return
	}

	httperrors.Write(w, http.StatusOK, dto.StatsResponse{
		TotalUsers:   stats.TotalProfiles,
		ActiveChats:  stats.ActiveChats,
		TotalReports: stats.TotalReports,
	})
}
