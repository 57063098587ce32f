package cli

import (
	"github.com/nestora/nestora/internal/app"
)

// App holds the CLI application dependencies.
type App struct {
	Container *app.Container
}

// NewApp creates a new CLI application backed by the container.
func NewApp(container *app.Container) *App {
	return &App{Container: container}
}

// appInstance is the global CLI application instance
var appInstance *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	appInstance = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return appInstance
}
