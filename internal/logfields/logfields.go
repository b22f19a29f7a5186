package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRepo       = "repository"
	KeyPath       = "path"
	KeyBranch     = "branch"
	KeyUser       = "user"
	KeyError      = "error"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyURL        = "url"
	KeyRemoteAddr = "remote_addr"
	KeyUserAgent  = "user_agent"
	KeySubject    = "subject"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Repository(r string) slog.Attr  { return slog.String(KeyRepo, r) }
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func Branch(b string) slog.Attr      { return slog.String(KeyBranch, b) }
func User(u string) slog.Attr        { return slog.String(KeyUser, u) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr          { return slog.Int(KeyCount, n) }
func Method(m string) slog.Attr      { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr      { return slog.Int(KeyStatus, code) }
func URL(u string) slog.Attr         { return slog.String(KeyURL, u) }
func RemoteAddr(a string) slog.Attr  { return slog.String(KeyRemoteAddr, a) }
func UserAgent(a string) slog.Attr   { return slog.String(KeyUserAgent, a) }
func Subject(s string) slog.Attr     { return slog.String(KeySubject, s) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
