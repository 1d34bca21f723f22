// Package config loads typed configuration from the process environment.
//
// Each package in noticeboard declares its own struct annotated with
// `env:"..."` tags (see github.com/caarlos0/env/v11). Load parses the
// environment into that struct after making sure a .env file in the working
// directory, if any, has been applied through github.com/joho/godotenv.
// Parsed values are cached per type, so repeated calls from different
// packages are cheap and consistent.
//
//	var cfg mongo.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// LoadEnv applies explicit dotenv files (the CLI's --env-file flag), and Reset
// drops the cache so tests can re-read a modified environment.
package config
