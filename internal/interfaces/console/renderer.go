package console

import (
	"fmt"
	"strings"

	"hlsnap/internal/domain/model"
	dsvc "hlsnap/internal/domain/service"
)

// ANSI color codes
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[2m"
)

// Colorize applies ANSI color to a string
func Colorize(s, color string) string {
	return color + s + ansiReset
}

// Renderer 将报告渲染为终端摘要
type Renderer struct {
	color bool
}

func NewRenderer(color bool) *Renderer {
	return &Renderer{color: color}
}

func (r *Renderer) paint(s, color string) string {
	if !r.color {
		return s
	}
	return Colorize(s, color)
}

// directional 正绿负红零黄
func (r *Renderer) directional(v float64, format string) string {
	s := fmt.Sprintf(format, v)
	switch dsvc.Direction(v) {
	case +1:
		return r.paint(s, ansiGreen)
	case -1:
		return r.paint(s, ansiRed)
	default:
		return r.paint(s, ansiYellow)
	}
}

// Render returns one line per section.
func (r *Renderer) Render(runID string, rep *model.Report) string {
	var sb strings.Builder

	sb.WriteString(r.paint("[HLSNAP] ", ansiDim))
	sb.WriteString(rep.TimestampUTC)
	if runID != "" {
		sb.WriteString(r.paint(" run="+runID, ansiDim))
	}
	sb.WriteString("\n")

	section := func(title string, n int, item func(i int) string) {
		sb.WriteString(fmt.Sprintf("  %-18s", title))
		if n == 0 {
			sb.WriteString(r.paint("--", ansiDim))
		}
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteString(r.paint("  |  ", ansiDim))
			}
			sb.WriteString(item(i))
		}
		sb.WriteString("\n")
	}

	pos := rep.FundingRates.TopPositive
	section("funding top +", len(pos), func(i int) string {
		return pos[i].Asset + " " + r.directional(pos[i].Rate, "%+.6f")
	})
	neg := rep.FundingRates.TopNegative
	section("funding top -", len(neg), func(i int) string {
		return neg[i].Asset + " " + r.directional(neg[i].Rate, "%+.6f")
	})
	oi := rep.OpenInterest.TopByUSDValue
	section("open interest", len(oi), func(i int) string {
		return oi[i].Asset + " " + humanUSD(oi[i].OIUSD)
	})
	mv := rep.PriceMovers24h.TopPositiveChange
	section("24h movers", len(mv), func(i int) string {
		return mv[i].Asset + " " + r.directional(mv[i].ChangePct, "%+.2f%%")
	})

	return sb.String()
}

func humanUSD(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.2fK", v/1e3)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}
