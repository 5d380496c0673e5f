// Package cleanup sweeps expired cache entries and prints console reports
// about the caches it visits.
package cleanup

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/types"
)

// tone is an ANSI 24-bit foreground color.
type tone string

const (
	toneAccent tone = "\033[38;2;86;182;194m"
	toneMuted  tone = "\033[38;2;110;118;129m"
	toneFaint  tone = "\033[38;2;75;82;99m"
	toneGood   tone = "\033[38;2;62;130;144m"
	toneWarn   tone = "\033[38;2;229;192;123m"
	toneBad    tone = "\033[38;2;224;108;117m"
	toneText   tone = "\033[38;2;171;178;191m"
	toneLabel  tone = "\033[38;2;198;120;221m"

	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

// Reporter writes short human-readable status lines. A plain reporter emits
// no escape codes.
type Reporter struct {
	out   io.Writer
	plain bool
	now   func() time.Time
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out, now: time.Now}
}

// NewPlainReporter is NewReporter without colors, for log files and tests.
func NewPlainReporter(out io.Writer) *Reporter {
	return &Reporter{out: out, plain: true, now: time.Now}
}

func (r *Reporter) paint(t tone, s string) string {
	if r.plain {
		return s
	}
	return string(t) + s + ansiReset
}

func (r *Reporter) emphasize(t tone, s string) string {
	if r.plain {
		return s
	}
	return ansiBold + string(t) + s + ansiReset
}

func (r *Reporter) line(glyph string, glyphTone tone, text string, textTone tone) {
	fmt.Fprintf(r.out, "%s %s\n", r.emphasize(glyphTone, glyph), r.paint(textTone, text))
}

func (r *Reporter) LogHeader(title string) {
	r.line("✓", toneAccent, strings.ToUpper(title), toneAccent)
}

func (r *Reporter) LogStage(format string, args ...any) {
	r.line("✦", toneGood, fmt.Sprintf(format, args...), toneMuted)
}

func (r *Reporter) LogSuccess(format string, args ...any) {
	r.line("✦", toneGood, fmt.Sprintf(format, args...), toneText)
}

func (r *Reporter) LogError(message string, err error) {
	r.line("✖ ERROR:", toneBad, fmt.Sprintf("%s: %v", message, err), toneMuted)
}

func (r *Reporter) LogWarning(format string, args ...any) {
	r.line("⚠ WARNING:", toneWarn, fmt.Sprintf(format, args...), toneMuted)
}

func (r *Reporter) LogInfo(format string, args ...any) {
	r.line("▶", toneFaint, fmt.Sprintf(format, args...), toneMuted)
}

// WriteStoreReport prints one line per store with its size and counters.
func (r *Reporter) WriteStoreReport(sweepables []interfaces.Sweepable) {
	fmt.Fprint(r.out, r.GenerateStoreReport(sweepables))
}

func (r *Reporter) GenerateStoreReport(sweepables []interfaces.Sweepable) string {
	var b strings.Builder
	stamp := r.now().UTC().Format("2006-01-02 15:04:05 MST")
	fmt.Fprintf(&b, "%s %s\n", r.emphasize(toneAccent, "▓ "+stamp), r.paint(toneText, fmt.Sprintf("| caches: %d", len(sweepables))))

	for _, s := range sweepables {
		b.WriteString(r.storeLine(s.Stats()))
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Reporter) storeLine(stats types.CacheStats) string {
	if stats.Size == 0 {
		return fmt.Sprintf("%s %s %s", r.paint(toneFaint, "○"), r.paint(toneMuted, stats.Name+":"),
			r.paint(toneFaint, fmt.Sprintf("empty (ttl %s)", stats.TTL)))
	}

	field := func(name string, value any) string {
		return r.paint(toneLabel, name+":") + r.paint(toneText, fmt.Sprint(value))
	}
	parts := []string{
		r.paint(toneAccent, "✦"),
		r.paint(toneMuted, stats.Name+":"),
		r.paint(toneAccent, fmt.Sprintf("%d/%d", stats.Size, stats.Capacity)),
		field("hits", stats.Hits),
		field("misses", stats.Misses),
		field("hit-rate", fmt.Sprintf("%.0f%%", stats.HitRate*100)),
	}
	if stats.Evictions > 0 {
		parts = append(parts, field("evicted", stats.Evictions))
	}
	if stats.Expired > 0 {
		parts = append(parts, field("expired", stats.Expired))
	}
	return strings.Join(parts, " ")
}
