package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/stabilizer/internal/logic"
	"github.com/sweeney/stabilizer/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": formatUptime,
	"stateOrUnknown": func(s logic.State) string {
		return status.StateOrUnknown(string(s))
	},
	"stateClass": func(s logic.State) string {
		switch s {
		case logic.StateOn:
			return "on"
		case logic.StateOff:
			return "off"
		default:
			return "unknown"
		}
	},
}).Parse(indexHTML))

func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
	}
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Stabilizer</title>
<style>
body { font: 14px/1.4 monospace; max-width: 40em; margin: 2em auto; padding: 0 1em; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 3px 6px; text-align: left; border-bottom: 1px solid #eee; }
th { width: 45%; font-weight: normal; color: #555; }
.on, .connected { color: #080; font-weight: bold; }
.off { color: #777; }
.unknown { color: #c60; }
.disconnected { color: #c00; }
</style>
</head>
<body>
<h1>Stabilizer</h1>

<h2>Channels</h2>
<table>
{{range .Channels}}<tr><th>{{.Name}}</th><td id="{{.Name}}-state" class="{{stateClass .State}}">{{stateOrUnknown .State}}</td></tr>
{{end}}<tr><th>Ready</th><td>{{if .Baselined}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Topic</th><td>{{.Config.Topic}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
{{range .Channels}}{{$c := index $.Counts .Name}}<tr><th>{{.Name}} ON</th><td>{{$c.On}}</td></tr>
<tr><th>{{.Name}} OFF</th><td>{{$c.Off}}</td></tr>
{{end}}<tr><th>Read errors</th><td>{{.ReadErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Chip</th><td>{{.Config.Chip}}{{if .Config.ActiveLow}} (active low){{end}}</td></tr>
<tr><th>Lines</th><td>{{.Config.Channels}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
