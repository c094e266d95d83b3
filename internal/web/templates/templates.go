// Package templates renders the dashboard's HTML as templ components.
//
// Edit the .templ files and run templ generate; the *_templ.go files are
// generated.
package templates

//go:generate templ generate

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/envdash/internal/core"
)

// DashboardParams holds everything the dashboard page shows.
type DashboardParams struct {
	Country    string
	Indicators []string
	View       core.View

	// Loads is nil when load history is disabled.
	Loads []core.LoadEvent
}

// Title returns the page heading.
func (p DashboardParams) Title() string {
	return p.Country + " Environmental Indicators Dashboard"
}

// IndicatorURL returns a URL path with the indicator query set.
func IndicatorURL(path, indicator string, extra ...string) templ.SafeURL {
	q := url.Values{}
	q.Set("indicator", indicator)
	for i := 0; i+1 < len(extra); i += 2 {
		q.Set(extra[i], extra[i+1])
	}
	return templ.URL(path + "?" + q.Encode())
}

func loadedAt(ev core.LoadEvent) string {
	return ev.LoadedAt.Format("2006-01-02 15:04:05")
}

func count(n int) string {
	return strconv.Itoa(n)
}

const stylesheet = `<style>
body{font-family:system-ui,-apple-system,sans-serif;margin:0;color:#1f2937;background:#f9fafb}
.shell{display:flex;min-height:100vh}
aside{width:18rem;padding:1.5rem;background:#fff;border-right:1px solid #e5e7eb}
main{flex:1;padding:1.5rem 2rem}
h1{font-size:1.5rem;margin:0 0 1rem}
h2{font-size:1.1rem;margin:1.5rem 0 .5rem}
select{width:100%;padding:.4rem}
.code{color:#6b7280;font-size:.9rem;margin-top:.5rem}
.metrics{display:flex;gap:1rem}
.metric{flex:1;background:#fff;border:1px solid #e5e7eb;border-radius:.5rem;padding:1rem}
.metric .label{color:#6b7280;font-size:.8rem}
.metric .value{font-size:1.4rem;font-weight:600}
table{border-collapse:collapse;background:#fff}
td,th{border:1px solid #e5e7eb;padding:.3rem .8rem;text-align:right}
.chart img{max-width:100%;background:#fff;border:1px solid #e5e7eb}
.empty{color:#6b7280;font-style:italic}
.error{max-width:40rem;margin:4rem auto;background:#fff;border:1px solid #fecaca;border-radius:.5rem;padding:1.5rem}
.error .code{margin-top:1rem}
.actions a{margin-right:1rem}
</style>`
