package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"chronos-stats/internal/constants"
	"chronos-stats/internal/decode"
	"chronos-stats/internal/domain"
	"chronos-stats/internal/monitoring"

	"github.com/rs/zerolog"
)

type trackResponse struct {
	Success  bool   `json:"success"`
	PlayerID int64  `json:"player_id"`
	ServerID *int64 `json:"server_id"`
	Message  string `json:"message"`
}

type internalErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleTrack is the JSON transport: decode, aggregate, acknowledge.
func (s *TrackerServer) handleTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	logger := zerolog.Ctx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.ObserveReport(monitoring.TransportJSON, monitoring.OutcomeDecodeError, 1)
			errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		s.metrics.ObserveReport(monitoring.TransportJSON, monitoring.OutcomeDecodeError, 1)
		errorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	report, err := decode.DecodeJSON(body)
	if err != nil {
		s.metrics.ObserveReport(monitoring.TransportJSON, monitoring.OutcomeDecodeError, 1)
		logger.Warn().Err(err).Int("body_length", len(body)).Msg("rejected telemetry report")

		var de *domain.DecodeError
		if errors.As(err, &de) {
			errorResponse(w, http.StatusBadRequest, de.Reason)
			return
		}
		errorResponse(w, http.StatusBadRequest, "invalid report")
		return
	}

	result, err := s.ingest.Ingest(r.Context(), monitoring.TransportJSON, report)
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, internalErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to process statistics",
		})
		return
	}

	jsonResponse(w, http.StatusOK, trackResponse{
		Success:  true,
		PlayerID: result.PlayerID,
		ServerID: result.ServerID,
		Message:  "Statistics updated successfully",
	})
}

// legacyUpload runs the steps shared by the serverid-authenticated form
// endpoints: version banner, form parsing, authentication, then base64. It
// writes the response itself and returns ok=false when the request is done.
func (s *TrackerServer) legacyUpload(w http.ResponseWriter, r *http.Request, transport, banner string) ([]byte, *domain.Server, bool) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		textResponse(w, http.StatusMethodNotAllowed, "Method not allowed\n")
		return nil, nil, false
	}

	if r.URL.Query().Has("version") {
		textResponse(w, http.StatusOK, fmt.Sprintf("%s %s", banner, constants.Version))
		return nil, nil, false
	}

	logger := zerolog.Ctx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxBodySize)
	if err := r.ParseForm(); err != nil {
		s.metrics.ObserveReport(transport, monitoring.OutcomeDecodeError, 1)
		textResponse(w, http.StatusBadRequest, "Invalid form data\n")
		return nil, nil, false
	}

	data := r.Form.Get("data")
	serverToken := r.Form.Get("serverid")
	if data == "" || serverToken == "" {
		s.metrics.ObserveReport(transport, monitoring.OutcomeDecodeError, 1)
		textResponse(w, http.StatusBadRequest, "No data sent\n")
		return nil, nil, false
	}

	server, err := s.ingest.AuthenticateServer(r.Context(), serverToken)
	if err != nil {
		if domain.IsAuthError(err) {
			s.metrics.ObserveReport(transport, monitoring.OutcomeAuthError, 1)
			logger.Warn().Str("remote_addr", r.RemoteAddr).Str("transport", transport).Msg("upload with unknown server id")
			textResponse(w, http.StatusForbidden, "Authentication failed\n")
			return nil, nil, false
		}
		s.metrics.ObserveReport(transport, monitoring.OutcomeStoreError, 1)
		textResponse(w, http.StatusInternalServerError, "Internal server error, please retry\n")
		return nil, nil, false
	}

	payload, err := decode.DecodeLegacyData(data)
	if err != nil {
		s.metrics.ObserveReport(transport, monitoring.OutcomeDecodeError, 1)
		logger.Warn().Err(err).Int64("server_id", server.ID).Int("data_length", len(data)).Msg("rejected upload encoding")
		textResponse(w, http.StatusBadRequest, "Invalid data encoding\n")
		return nil, nil, false
	}

	return payload, server, true
}

// handleLegacyImport accepts the form-encoded round upload used by older
// game-side uploaders. Responses are plain text.
func (s *TrackerServer) handleLegacyImport(w http.ResponseWriter, r *http.Request) {
	payload, server, ok := s.legacyUpload(w, r, monitoring.TransportLegacy, "stats_import.php")
	if !ok {
		return
	}

	logger := zerolog.Ctx(r.Context())

	reports, err := s.decodeLegacy(r.Context(), payload, *server)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLegacyUnavailable):
			logger.Warn().Err(err).Int64("server_id", server.ID).Msg("legacy upload refused")
			textResponse(w, http.StatusNotImplemented, "Legacy import unavailable\n")
		case domain.IsDecodeError(err):
			s.metrics.ObserveReport(monitoring.TransportLegacy, monitoring.OutcomeDecodeError, 1)
			logger.Warn().Err(err).Int64("server_id", server.ID).Msg("legacy payload rejected")
			textResponse(w, http.StatusBadRequest, "Invalid report data\n")
		default:
			logger.Error().Err(err).Int64("server_id", server.ID).Msg("legacy decoder failed")
			textResponse(w, http.StatusInternalServerError, "Internal server error, please retry\n")
		}
		return
	}

	if _, err := s.ingest.IngestBatch(r.Context(), monitoring.TransportLegacy, reports); err != nil {
		textResponse(w, http.StatusInternalServerError, "Internal server error, please retry\n")
		return
	}

	textResponse(w, http.StatusOK, fmt.Sprintf("OK %d report(s) imported\n", len(reports)))
}

func (s *TrackerServer) decodeLegacy(ctx context.Context, payload []byte, server domain.Server) ([]domain.TelemetryReport, error) {
	if s.legacy == nil {
		return nil, domain.ErrLegacyUnavailable
	}
	reports, err := s.legacy.Decode(ctx, payload, server)
	if err != nil {
		return nil, err
	}
	return decode.ValidateReports(reports)
}

// handleStatusUpdate takes a live snapshot of an authenticated server:
// name, map, game type and player counts. No round is counted.
func (s *TrackerServer) handleStatusUpdate(w http.ResponseWriter, r *http.Request) {
	payload, server, ok := s.legacyUpload(w, r, monitoring.TransportStatus, "status_update.php")
	if !ok {
		return
	}

	logger := zerolog.Ctx(r.Context())

	snap, err := s.decodeStatus(r.Context(), payload, *server)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLegacyUnavailable):
			logger.Warn().Err(err).Int64("server_id", server.ID).Msg("status update refused")
			textResponse(w, http.StatusNotImplemented, "Status update unavailable\n")
		case domain.IsDecodeError(err):
			s.metrics.ObserveReport(monitoring.TransportStatus, monitoring.OutcomeDecodeError, 1)
			logger.Warn().Err(err).Int64("server_id", server.ID).Msg("status payload rejected")
			textResponse(w, http.StatusBadRequest, "Invalid status data\n")
		default:
			logger.Error().Err(err).Int64("server_id", server.ID).Msg("status decoder failed")
			textResponse(w, http.StatusInternalServerError, "Internal server error, please retry\n")
		}
		return
	}

	if err := s.ingest.UpdateStatus(r.Context(), *server, snap); err != nil {
		textResponse(w, http.StatusInternalServerError, "Internal server error, please retry\n")
		return
	}

	textResponse(w, http.StatusOK, "OK\n")
}

func (s *TrackerServer) decodeStatus(ctx context.Context, payload []byte, server domain.Server) (domain.ServerSnapshot, error) {
	if s.status == nil {
		return domain.ServerSnapshot{}, domain.ErrLegacyUnavailable
	}
	snap, err := s.status.DecodeStatus(ctx, payload, server)
	if err != nil {
		return domain.ServerSnapshot{}, err
	}
	return decode.ValidateSnapshot(snap, server)
}
