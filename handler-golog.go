//go:build !tinygo

package klogger

import (
	"github.com/kataras/golog"
)

// AttachGolog routes every record g prints to the global console, tagged
// with target. g keeps its own level: only records that pass g.Level reach
// the console. Records are consumed, g does not print them itself.
func AttachGolog(g *golog.Logger, target string) {
	g.Handle(gologHandler(nil, target))
}

// AttachGolog routes every record g prints to this console.
func (c *Console) AttachGolog(g *golog.Logger, target string) {
	g.Handle(gologHandler(c, target))
}

func gologHandler(c *Console, target string) golog.Handler {
	return func(l *golog.Log) bool {
		dst := c
		if dst == nil {
			if dst = Default(); dst == nil {
				return true
			}
		}
		dst.Log(Record{Level: FromGologLevel(l.Level), Target: target, Message: l.Message})
		return true
	}
}

// FromGologLevel maps a golog level onto a Level. Print and Println
// records (golog.DisableLevel) and custom levels map to LevelInfo.
func FromGologLevel(l golog.Level) Level {
	switch l {
	case golog.FatalLevel, golog.ErrorLevel:
		return LevelError
	case golog.WarnLevel:
		return LevelWarn
	case golog.DebugLevel:
		return LevelDebug
	default:
		return LevelInfo
	}
}
