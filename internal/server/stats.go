package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"chronos-stats/internal/calc"
	"chronos-stats/internal/domain"

	"github.com/go-chi/chi/v5"
)

type playerResponse struct {
	ID           int64         `json:"id"`
	Hash         string        `json:"hash"`
	Name         string        `json:"name"`
	Kills        int64         `json:"kills"`
	Deaths       int64         `json:"deaths"`
	Suicides     int64         `json:"suicides"`
	Teamkills    int64         `json:"teamkills"`
	Headshots    int64         `json:"headshots"`
	Score        int64         `json:"score"`
	Playtime     int64         `json:"playtime"`
	RoundsPlayed int64         `json:"rounds_played"`
	Wins         int64         `json:"wins"`
	Losses       int64         `json:"losses"`
	KDRatio      float64       `json:"kd_ratio"`
	WinRate      float64       `json:"win_rate"`
	Rating       int64         `json:"rating"`
	Rank         *rankResponse `json:"rank,omitempty"`
	FirstSeen    string        `json:"first_seen"`
	LastSeen     string        `json:"last_seen"`
}

type rankResponse struct {
	Name      string `json:"name"`
	MinRating int64  `json:"min_rating"`
	Icon      string `json:"icon"`
}

type weaponResponse struct {
	Name       string  `json:"name"`
	Users      int64   `json:"users,omitempty"`
	Kills      int64   `json:"kills"`
	Deaths     int64   `json:"deaths"`
	ShotsFired int64   `json:"shots_fired"`
	ShotsHit   int64   `json:"shots_hit"`
	Headshots  int64   `json:"headshots"`
	Accuracy   float64 `json:"accuracy"`
}

type serverResponse struct {
	ID             int64  `json:"id"`
	IP             string `json:"ip"`
	Port           int64  `json:"port"`
	Name           string `json:"name"`
	MapName        string `json:"map"`
	GameType       string `json:"gametype"`
	MaxPlayers     int64  `json:"max_players"`
	CurrentPlayers int64  `json:"current_players"`
	RoundsPlayed   int64  `json:"rounds_played"`
	FirstSeen      string `json:"first_seen"`
	LastSeen       string `json:"last_seen"`
}

type mapResponse struct {
	Name          string `json:"name"`
	Kills         int64  `json:"kills"`
	Deaths        int64  `json:"deaths"`
	Wins          int64  `json:"wins"`
	Losses        int64  `json:"losses"`
	PlayTime      int64  `json:"play_time"`
	TimesPlayed   int64  `json:"times_played"`
	UniquePlayers int64  `json:"unique_players"`
	LastSeen      string `json:"last_seen"`
}

type summaryResponse struct {
	Players    int64 `json:"players"`
	Servers    int64 `json:"servers"`
	Maps       int64 `json:"maps"`
	TotalKills int64 `json:"total_kills"`
}

func (s *TrackerServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.stats.Summary(r.Context())
	if err != nil {
		s.readError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, summaryResponse{
		Players:    summary.Players,
		Servers:    summary.Servers,
		Maps:       summary.Maps,
		TotalKills: summary.TotalKills,
	})
}

func (s *TrackerServer) handleTopPlayers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	players, err := s.stats.TopPlayers(r.Context(), limit, offset)
	if err != nil {
		s.readError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, toPlayerResponses(players))
}

func (s *TrackerServer) handleSearchPlayers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		errorResponse(w, http.StatusBadRequest, "missing search query")
		return
	}

	players, err := s.stats.SearchPlayers(r.Context(), query)
	if err != nil {
		s.readError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, toPlayerResponses(players))
}

func (s *TrackerServer) handlePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}

	player, err := s.stats.Player(r.Context(), id)
	if err != nil {
		s.readError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, toPlayerResponse(*player))
}

func (s *TrackerServer) handlePlayerByHash(w http.ResponseWriter, r *http.Request) {
	hash, ok := pathText(w, r, "playerHash")
	if !ok {
		return
	}

	player, err := s.stats.PlayerByHash(r.Context(), hash)
	if err != nil {
		s.readError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, toPlayerResponse(*player))
}

func (s *TrackerServer) handleRanks(w http.ResponseWriter, r *http.Request) {
	ranks, err := s.stats.Ranks(r.Context())
	if err != nil {
		s.readError(w, err)
		return
	}

	resp := make([]rankResponse, len(ranks))
	for i, rank := range ranks {
		resp[i] = toRankResponse(rank)
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *TrackerServer) handlePlayerWeapons(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}

	weapons, err := s.stats.PlayerWeapons(r.Context(), id)
	if err != nil {
		s.readError(w, err)
		return
	}

	resp := make([]weaponResponse, len(weapons))
	for i, wp := range weapons {
		resp[i] = weaponResponse{
			Name:       wp.Name,
			Kills:      wp.Kills,
			Deaths:     wp.Deaths,
			ShotsFired: wp.ShotsFired,
			ShotsHit:   wp.ShotsHit,
			Headshots:  wp.Headshots,
			Accuracy:   wp.Accuracy,
		}
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *TrackerServer) handleWeapons(w http.ResponseWriter, r *http.Request) {
	totals, err := s.stats.WeaponTotals(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		s.readError(w, err)
		return
	}

	resp := make([]weaponResponse, len(totals))
	for i, wt := range totals {
		resp[i] = weaponResponse{
			Name:       wt.Name,
			Users:      wt.Users,
			Kills:      wt.Kills,
			Deaths:     wt.Deaths,
			ShotsFired: wt.ShotsFired,
			ShotsHit:   wt.ShotsHit,
			Headshots:  wt.Headshots,
			Accuracy:   wt.Accuracy,
		}
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *TrackerServer) handleServers(w http.ResponseWriter, r *http.Request) {
	servers, err := s.stats.Servers(r.Context())
	if err != nil {
		s.readError(w, err)
		return
	}

	resp := make([]serverResponse, len(servers))
	for i, srv := range servers {
		resp[i] = toServerResponse(srv)
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *TrackerServer) handleServer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "serverID")
	if !ok {
		return
	}

	srv, err := s.stats.Server(r.Context(), id)
	if err != nil {
		s.readError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, toServerResponse(*srv))
}

func (s *TrackerServer) handleMaps(w http.ResponseWriter, r *http.Request) {
	maps, err := s.stats.PopularMaps(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		s.readError(w, err)
		return
	}

	resp := make([]mapResponse, len(maps))
	for i, m := range maps {
		resp[i] = toMapResponse(m)
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *TrackerServer) handleMap(w http.ResponseWriter, r *http.Request) {
	name, ok := pathText(w, r, "mapName")
	if !ok {
		return
	}

	m, err := s.stats.Map(r.Context(), name)
	if err != nil {
		s.readError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, toMapResponse(*m))
}

func (s *TrackerServer) readError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		errorResponse(w, http.StatusNotFound, "not found")
		return
	}
	s.logger.Error().Err(err).Msg("read query failed")
	errorResponse(w, http.StatusInternalServerError, "Internal server error")
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		errorResponse(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}

// pathText unescapes a path parameter; map names routinely contain '/'.
func pathText(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	v, err := url.PathUnescape(chi.URLParam(r, param))
	if err != nil || v == "" {
		errorResponse(w, http.StatusBadRequest, "invalid "+param)
		return "", false
	}
	return v, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}

func toPlayerResponses(players []domain.Player) []playerResponse {
	resp := make([]playerResponse, len(players))
	for i, p := range players {
		resp[i] = toPlayerResponse(p)
	}
	return resp
}

func toPlayerResponse(p domain.Player) playerResponse {
	var rank *rankResponse
	if p.Rank != nil {
		r := toRankResponse(*p.Rank)
		rank = &r
	}
	return playerResponse{
		ID:           p.ID,
		Hash:         p.Hash,
		Name:         p.Name,
		Kills:        p.Kills,
		Deaths:       p.Deaths,
		Suicides:     p.Suicides,
		Teamkills:    p.Teamkills,
		Headshots:    p.Headshots,
		Score:        p.Score,
		Playtime:     p.Playtime,
		RoundsPlayed: p.RoundsPlayed,
		Wins:         p.Wins,
		Losses:       p.Losses,
		KDRatio:      p.KDRatio,
		WinRate:      calc.WinRate(p.Wins, p.Losses),
		Rating:       p.Rating,
		Rank:         rank,
		FirstSeen:    p.FirstSeen.Format(time.RFC3339),
		LastSeen:     p.LastSeen.Format(time.RFC3339),
	}
}

func toRankResponse(r domain.Rank) rankResponse {
	return rankResponse{Name: r.Name, MinRating: r.MinRating, Icon: r.Icon}
}

func toServerResponse(s domain.Server) serverResponse {
	return serverResponse{
		ID:             s.ID,
		IP:             s.IP,
		Port:           s.Port,
		Name:           s.Name,
		MapName:        s.MapName,
		GameType:       s.GameType,
		MaxPlayers:     s.MaxPlayers,
		CurrentPlayers: s.CurrentPlayers,
		RoundsPlayed:   s.RoundsPlayed,
		FirstSeen:      s.FirstSeen.Format(time.RFC3339),
		LastSeen:       s.LastSeen.Format(time.RFC3339),
	}
}

func toMapResponse(m domain.Map) mapResponse {
	return mapResponse{
		Name:          m.Name,
		Kills:         m.Kills,
		Deaths:        m.Deaths,
		Wins:          m.Wins,
		Losses:        m.Losses,
		PlayTime:      m.PlayTime,
		TimesPlayed:   m.TimesPlayed,
		UniquePlayers: m.UniquePlayers,
		LastSeen:      m.LastSeen.Format(time.RFC3339),
	}
}
