package main

import (
	"log"

	"github.com/spf13/viper"
)

// initConfig installs defaults and then layers an optional config.toml from
// the working directory on top. The PORT environment variable (used by the
// usual PaaS deployments) overrides server.port.
func initConfig() {
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("storage.data_dir", ".")
	viper.SetDefault("storage.static_dir", "static")
	viper.SetDefault("storage.upload_dir", "static/uploads")
	viper.SetDefault("storage.files_dir", "static/files")
	viper.SetDefault("session.ttl_hours", 24)
	viper.SetDefault("limits.login_per_minute", 10)
	viper.SetDefault("upload.max_bytes", 50*1024*1024)

	viper.BindEnv("server.port", "PORT")

	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Failed to read config file: %v", err)
		}
	}
}
