package detect

import (
	"errors"
	"strings"
	"time"

	"cybercommand/internal/config"
	"cybercommand/internal/store"
)

var ErrInvalidWindow = errors.New("detect: window must be positive")

// Engine runs the threat-hunting queries against one published epoch. It is
// read-only: every detection pulls epoch-scoped rows through the store reader
// and computes in process, so the same code path serves ClickHouse and the
// in-memory store.
type Engine struct {
	reader store.Reader
	cfg    config.DetectionConfig

	// now is swappable so tests can pin the analysis window
	now func() time.Time
}

func NewEngine(reader store.Reader, cfg config.DetectionConfig) *Engine {
	return &Engine{
		reader: reader,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock pins the engine's notion of now. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// windowStart returns the start of the trailing daysBack window
func (e *Engine) windowStart(daysBack int) time.Time {
	return e.now().AddDate(0, 0, -daysBack)
}

// isInternalIP reports whether an address belongs to the corporate 10/8 space
func isInternalIP(ip string) bool {
	return strings.HasPrefix(ip, "10.")
}

func (e *Engine) isBusinessHour(t time.Time) bool {
	h := t.UTC().Hour()
	return h >= e.cfg.BusinessHourStart && h < e.cfg.BusinessHourEnd
}
