package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Dedup    Dedup
	Log      Log
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Dedup struct {
	WindowMinutes int
	Similarity    float64
}

type Log struct {
	Level  string
	File   string
	Pretty bool
}

// Window is the duplicate-candidate time window as a duration.
func (d Dedup) Window() time.Duration {
	return time.Duration(d.WindowMinutes) * time.Minute
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DEDUP_WINDOW_MINUTES", 7)
	viper.SetDefault("DEDUP_SIMILARITY", 0.92)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("LOG_PRETTY", false)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")

	config.Dedup.WindowMinutes = viper.GetInt("DEDUP_WINDOW_MINUTES")
	config.Dedup.Similarity = viper.GetFloat64("DEDUP_SIMILARITY")

	config.Log.Level = viper.GetString("LOG_LEVEL")
	config.Log.File = viper.GetString("LOG_FILE")
	config.Log.Pretty = viper.GetBool("LOG_PRETTY")

	log.Info().
		Str("server_port", config.Server.Port).
		Str("database_host", config.Database.Host).
		Int("dedup_window_minutes", config.Dedup.WindowMinutes).
		Float64("dedup_similarity", config.Dedup.Similarity).
		Msg("Config loaded")
	return &config, nil
}
