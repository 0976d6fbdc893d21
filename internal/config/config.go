package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort     string  `mapstructure:"SERVER_PORT"`
	RedisAddr      string  `mapstructure:"REDIS_ADDR"`
	RedisPassword  string  `mapstructure:"REDIS_PASSWORD"`
	JWTSecret      string  `mapstructure:"JWT_SECRET"`
	NearbyRadiusM  float64 `mapstructure:"NEARBY_RADIUS_M"`
	RefreshSeconds int     `mapstructure:"FEED_REFRESH_SECONDS"`
	MaxPosts       int     `mapstructure:"MAX_POSTS"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":5000")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
	viper.SetDefault("NEARBY_RADIUS_M", 5000.0)
	viper.SetDefault("FEED_REFRESH_SECONDS", 30)
	viper.SetDefault("MAX_POSTS", 10000)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

// RefreshInterval is the polling cadence clients use as a backstop for
// missed push events.
func (c Config) RefreshInterval() time.Duration {
	if c.RefreshSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RefreshSeconds) * time.Second
}
