package history

import "github.com/mitchelldurbincs/go2048/internal/config"

// ConfigFromSettings builds a StoreConfig from the history and players sections
func ConfigFromSettings(c *config.Config) StoreConfig {
	dirs := make(map[string]string, len(c.Players))
	for name, p := range c.Players {
		dirs[name] = p.HistoryDir
	}
	return StoreConfig{
		Type:       StoreType(c.History.Type),
		BaseDir:    c.History.BaseDir,
		PlayerDirs: dirs,
	}
}
