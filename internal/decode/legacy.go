package decode

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"chronos-stats/internal/constants"
	"chronos-stats/internal/domain"
)

// LegacyDecoder turns a decoded legacy payload into reports. The wire grammar
// belongs to the game-side uploader; implementations are supplied by the
// deployment and must return *domain.DecodeError for payloads they reject.
type LegacyDecoder interface {
	Decode(ctx context.Context, payload []byte, server domain.Server) ([]domain.TelemetryReport, error)
}

// LegacyDecoderFunc adapts a function to LegacyDecoder.
type LegacyDecoderFunc func(ctx context.Context, payload []byte, server domain.Server) ([]domain.TelemetryReport, error)

func (f LegacyDecoderFunc) Decode(ctx context.Context, payload []byte, server domain.Server) ([]domain.TelemetryReport, error) {
	return f(ctx, payload, server)
}

// StatusDecoder turns a decoded status upload into a snapshot of the
// submitting server. Like LegacyDecoder the grammar is deployment supplied.
type StatusDecoder interface {
	DecodeStatus(ctx context.Context, payload []byte, server domain.Server) (domain.ServerSnapshot, error)
}

type StatusDecoderFunc func(ctx context.Context, payload []byte, server domain.Server) (domain.ServerSnapshot, error)

func (f StatusDecoderFunc) DecodeStatus(ctx context.Context, payload []byte, server domain.Server) (domain.ServerSnapshot, error) {
	return f(ctx, payload, server)
}

// DecodeLegacyData undoes the transport encoding of the legacy `data` field.
// Uploaders send the base64 text unescaped in a form body, so '+' arrives as
// ' ' and has to be put back before decoding.
func DecodeLegacyData(field string) ([]byte, error) {
	// spaces are significant here: each one is a '+' mangled by form encoding
	field = strings.Trim(field, "\r\n\t")
	if field == "" {
		return nil, &domain.DecodeError{Reason: "empty data field"}
	}
	field = strings.ReplaceAll(field, " ", "+")

	enc := base64.StdEncoding
	if len(field)%4 != 0 {
		enc = base64.RawStdEncoding
		field = strings.TrimRight(field, "=")
	}

	payload, err := enc.Strict().DecodeString(field)
	if err != nil {
		return nil, &domain.DecodeError{Reason: "invalid base64 data", Err: err}
	}
	return payload, nil
}

// ValidateReports applies the same required-field rules as the JSON transport
// to reports produced by a legacy decoder, dropping nameless weapons.
func ValidateReports(reports []domain.TelemetryReport) ([]domain.TelemetryReport, error) {
	if len(reports) == 0 {
		return nil, &domain.DecodeError{Reason: "payload contained no reports"}
	}

	out := make([]domain.TelemetryReport, 0, len(reports))
	for _, r := range reports {
		r.Player.Name = strings.TrimSpace(r.Player.Name)
		r.Player.Hash = strings.TrimSpace(r.Player.Hash)
		if r.Player.Name == "" || r.Player.Hash == "" {
			return nil, &domain.DecodeError{Reason: "missing required player data"}
		}
		r.Player = clampPlayer(r.Player)
		if err := checkLimit(r.Player.Kills, r.Player.Deaths, r.Player.Suicides, r.Player.Teamkills,
			r.Player.Headshots, r.Player.Score, r.Player.Playtime, r.Player.Rounds, r.Player.Wins, r.Player.Losses); err != nil {
			return nil, err
		}
		if r.Server != nil {
			if err := checkLimit(r.Server.Port, r.Server.MaxPlayers, r.Server.CurrentPlayers); err != nil {
				return nil, err
			}
		}

		weapons := r.Weapons[:0:0]
		for _, w := range r.Weapons {
			if w.Name == "" {
				continue
			}
			w = clampWeapon(w)
			if err := checkLimit(w.Kills, w.Deaths, w.ShotsFired, w.ShotsHit, w.Headshots); err != nil {
				return nil, err
			}
			weapons = append(weapons, w)
		}
		r.Weapons = weapons
		out = append(out, r)
	}
	return out, nil
}

// ValidateSnapshot clamps a decoded status snapshot. The identity of the
// server always comes from the authenticated token, never the payload.
func ValidateSnapshot(snap domain.ServerSnapshot, server domain.Server) (domain.ServerSnapshot, error) {
	snap.MaxPlayers = max(0, snap.MaxPlayers)
	snap.CurrentPlayers = max(0, snap.CurrentPlayers)
	if err := checkLimit(snap.MaxPlayers, snap.CurrentPlayers); err != nil {
		return domain.ServerSnapshot{}, err
	}

	snap.IP = server.IP
	snap.Port = server.Port
	if snap.Name = strings.TrimSpace(snap.Name); snap.Name == "" {
		snap.Name = server.Name
	}
	if snap.MapName = strings.TrimSpace(snap.MapName); snap.MapName == "" {
		snap.MapName = server.MapName
	}
	if snap.GameType = strings.TrimSpace(snap.GameType); snap.GameType == "" {
		snap.GameType = server.GameType
	}
	return snap, nil
}

func checkLimit(values ...int64) error {
	for _, v := range values {
		if v > constants.MaxCounterDelta {
			return &domain.DecodeError{Reason: fmt.Sprintf("counter value %d exceeds per-report limit %d", v, constants.MaxCounterDelta)}
		}
	}
	return nil
}

func clampPlayer(p domain.PlayerDelta) domain.PlayerDelta {
	p.Kills = max(0, p.Kills)
	p.Deaths = max(0, p.Deaths)
	p.Suicides = max(0, p.Suicides)
	p.Teamkills = max(0, p.Teamkills)
	p.Headshots = max(0, p.Headshots)
	p.Score = max(0, p.Score)
	p.Playtime = max(0, p.Playtime)
	p.Rounds = max(0, p.Rounds)
	p.Wins = max(0, p.Wins)
	p.Losses = max(0, p.Losses)
	return p
}

func clampWeapon(w domain.WeaponDelta) domain.WeaponDelta {
	w.Kills = max(0, w.Kills)
	w.Deaths = max(0, w.Deaths)
	w.ShotsFired = max(0, w.ShotsFired)
	w.ShotsHit = max(0, w.ShotsHit)
	w.Headshots = max(0, w.Headshots)
	return w
}
