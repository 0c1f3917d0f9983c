package gameserver

import "github.com/mitchelldurbincs/go2048/internal/config"

// ManagerConfigFromSettings builds a ManagerConfig from the server and players sections
func ManagerConfigFromSettings(c *config.Config) ManagerConfig {
	players := make(map[string]int, len(c.Players))
	for name, p := range c.Players {
		players[name] = p.MaxMoves
	}
	return ManagerConfig{
		MaxGames:        c.Server.GRPC.MaxGames,
		DefaultPlayer:   c.Server.Games.Player,
		Players:         players,
		FinishedTTL:     c.Server.Games.FinishedTTL,
		IdleTimeout:     c.Server.Games.IdleTimeout,
		CleanupInterval: c.Server.Games.CleanupInterval,
	}
}
