// Package decode turns inbound transport payloads into domain.TelemetryReport
// values. Nothing in here touches the store.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"chronos-stats/internal/constants"
	"chronos-stats/internal/domain"
)

type trackRequest struct {
	Server  json.RawMessage `json:"server"`
	Player  json.RawMessage `json:"player"`
	Weapons json.RawMessage `json:"weapons"`
}

type serverBody struct {
	Name           text    `json:"name"`
	IP             text    `json:"ip"`
	Port           counter `json:"port"`
	Map            text    `json:"map"`
	GameType       text    `json:"gametype"`
	MaxPlayers     counter `json:"max_players"`
	CurrentPlayers counter `json:"current_players"`
}

type playerBody struct {
	Name      text    `json:"name"`
	Hash      text    `json:"hash"`
	Kills     counter `json:"kills"`
	Deaths    counter `json:"deaths"`
	Suicides  counter `json:"suicides"`
	Teamkills counter `json:"teamkills"`
	Playtime  counter `json:"playtime"`
	Rounds    counter `json:"rounds"`
	Wins      counter `json:"wins"`
	Losses    counter `json:"losses"`
	Score     counter `json:"score"`
	Headshots counter `json:"headshots"`
}

type weaponBody struct {
	Name      text    `json:"name"`
	Kills     counter `json:"kills"`
	Deaths    counter `json:"deaths"`
	Shots     counter `json:"shots"`
	Hits      counter `json:"hits"`
	Headshots counter `json:"headshots"`
}

// DecodeJSON parses the JSON transport body. Only player.name and
// player.hash are required; everything else degrades to a default.
func DecodeJSON(body []byte) (domain.TelemetryReport, error) {
	var report domain.TelemetryReport

	if !utf8.Valid(body) {
		return report, &domain.DecodeError{Reason: "body is not valid UTF-8"}
	}

	var req trackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return report, &domain.DecodeError{Reason: "invalid JSON", Err: err}
	}

	var player playerBody
	if !isObject(req.Player) {
		return report, &domain.DecodeError{Reason: "missing required player data"}
	}
	if err := json.Unmarshal(req.Player, &player); err != nil {
		return report, asDecodeError(err, "invalid player data")
	}
	if player.Name == "" || player.Hash == "" {
		return report, &domain.DecodeError{Reason: "missing required player data"}
	}

	report.Player = domain.PlayerDelta{
		Name:      string(player.Name),
		Hash:      string(player.Hash),
		Kills:     player.Kills.value(0),
		Deaths:    player.Deaths.value(0),
		Suicides:  player.Suicides.value(0),
		Teamkills: player.Teamkills.value(0),
		Headshots: player.Headshots.value(0),
		Score:     player.Score.value(0),
		Playtime:  player.Playtime.value(0),
		// a report without a round count is still one round
		Rounds: player.Rounds.value(1),
		Wins:   player.Wins.value(0),
		Losses: player.Losses.value(0),
	}

	var server serverBody
	if isObject(req.Server) {
		if err := json.Unmarshal(req.Server, &server); err != nil {
			return report, asDecodeError(err, "invalid server data")
		}
		report.Server = &domain.ServerSnapshot{
			Name:           server.Name.or(constants.UnknownServerName),
			IP:             server.IP.or(constants.UnknownServerIP),
			Port:           server.Port.value(0),
			MapName:        string(server.Map),
			GameType:       string(server.GameType),
			MaxPlayers:     server.MaxPlayers.value(0),
			CurrentPlayers: server.CurrentPlayers.value(0),
		}
	}

	weapons, err := decodeWeapons(req.Weapons)
	if err != nil {
		return report, err
	}
	report.Weapons = weapons
	return report, nil
}

func decodeWeapons(raw json.RawMessage) ([]domain.WeaponDelta, error) {
	var entries []json.RawMessage
	if json.Unmarshal(raw, &entries) != nil {
		return nil, nil
	}

	var weapons []domain.WeaponDelta
	for _, entry := range entries {
		if !isObject(entry) {
			continue
		}
		var w weaponBody
		if err := json.Unmarshal(entry, &w); err != nil {
			return nil, asDecodeError(err, "invalid weapon data")
		}
		if w.Name == "" {
			continue
		}
		weapons = append(weapons, domain.WeaponDelta{
			Name:       string(w.Name),
			Kills:      w.Kills.value(0),
			Deaths:     w.Deaths.value(0),
			ShotsFired: w.Shots.value(0),
			ShotsHit:   w.Hits.value(0),
			Headshots:  w.Headshots.value(0),
		})
	}
	return weapons, nil
}

func asDecodeError(err error, reason string) error {
	var de *domain.DecodeError
	if errors.As(err, &de) {
		return de
	}
	return &domain.DecodeError{Reason: reason, Err: err}
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// counter accepts JSON numbers and numeric strings. Anything else counts as
// absent. Fractions are truncated and negatives clamp to zero, since a
// cumulative counter can only grow. Values above constants.MaxCounterDelta
// reject the whole report.
type counter struct {
	n   int64
	set bool
}

func (c *counter) UnmarshalJSON(data []byte) error {
	*c = counter{}

	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return nil
		}
		s = strings.TrimSpace(unquoted)
	}

	f, err := strconv.ParseFloat(s, 64)
	if n, intErr := strconv.ParseInt(s, 10, 64); intErr == nil {
		f, err = float64(n), nil
	}
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil
	}
	if math.IsNaN(f) {
		return nil
	}
	if f > constants.MaxCounterDelta {
		return &domain.DecodeError{Reason: fmt.Sprintf("counter value %s exceeds per-report limit %d", s, constants.MaxCounterDelta)}
	}
	*c = counter{n: int64(max(0, f)), set: true}
	return nil
}

func (c counter) value(fallback int64) int64 {
	if !c.set {
		return fallback
	}
	return c.n
}

// text accepts strings and bare numbers (some mods send numeric hashes).
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	*t = ""

	s := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		*t = text(strings.TrimSpace(v))
	case len(s) > 0 && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9')):
		*t = text(s)
	}
	return nil
}

func (t text) or(fallback string) string {
	if t == "" {
		return fallback
	}
	return string(t)
}
