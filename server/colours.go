package server

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

var methodColors = map[string]*color.Color{
	"GET":    color.New(color.FgGreen),
	"POST":   color.New(color.FgBlue),
	"PUT":    color.New(color.FgCyan),
	"DELETE": color.New(color.FgYellow),
	"PATCH":  color.New(color.FgMagenta),
}

var (
	gray = color.New(color.FgHiBlack)
	red  = color.New(color.FgRed)
)

func displayMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if c, ok := methodColors[method]; ok {
		return c.Sprint(paddedMethod)
	}
	return gray.Sprint(paddedMethod)
}

func logRoute(method, path string) {
	log.Info().Msgf("[%s] %s", displayMethod(method), path)
}

func logError(method, path, error string) {
	log.Warn().Msgf("[%s] %s %s", displayMethod(method), path, red.Sprint(error))
}
