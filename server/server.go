// Package server is the post repository API: GET /posts and GET /posts/{id}
// over a static dataset.
package server

import (
	"github.com/diamondburned/postlist/server/db"
	"github.com/diamondburned/postlist/server/http"
	"github.com/pkg/errors"
)

// Config is the API config.
type Config struct {
	db.DBConfig
	http.HTTPConfig
}

func NewConfig() Config {
	return Config{
		DBConfig:   db.NewConfig(),
		HTTPConfig: http.NewConfig(),
	}
}

// Validator is used for configs.
type Validator interface {
	Validate() error
}

func (c *Config) Validate() error {
	var fields = []Validator{
		&c.DBConfig,
		&c.HTTPConfig,
	}

	for _, v := range fields {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type App struct {
	*http.Routes
	Database *db.Database
}

func New(config Config) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	d, err := db.NewDatabase(config.DBConfig)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create database")
	}

	h, err := http.New(d, config.HTTPConfig)
	if err != nil {
		d.Close()
		return nil, errors.Wrap(err, "Failed to create HTTP")
	}

	app := &App{
		Routes:   h,
		Database: d,
	}

	return app, nil
}

// Close closes the database.
func (a *App) Close() error {
	return a.Database.Close()
}
