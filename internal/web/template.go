package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/bark-trainer/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
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
	},
	"seconds": func(ms uint32) string {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Bark Trainer</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.warn { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Bark Trainer<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Remote</h2>
<table>
<tr><th>Learned</th><td id="sig-learned" class="{{if .Signature.Learned}}on{{else}}warn{{end}}">{{if .Signature.Learned}}yes{{else}}learning ({{.Signature.Samples}}/3){{end}}</td></tr>
<tr><th>Pulse band</th><td id="sig-band">{{if .Signature.Learned}}{{.Signature.MinPulses}}–{{.Signature.MaxPulses}} (avg {{.Signature.AvgPulses}}){{else}}—{{end}}</td></tr>
</table>

<h2>Schedule</h2>
<table>
<tr><th>Level</th><td id="sched-level">{{.Schedule.Level}} / {{.Config.Levels}}</td></tr>
<tr><th>Successes</th><td id="sched-succ">{{.Schedule.Successes}}</td></tr>
<tr><th>Quiet target</th><td id="sched-quiet">{{seconds .Schedule.QuietTargetMs}}</td></tr>
<tr><th>Pattern cursor</th><td id="sched-cursor">{{.Schedule.PatternCursor}}</td></tr>
<tr><th>Training</th><td id="sched-paused" class="{{if .Schedule.Paused}}warn{{else}}on{{end}}">{{if .Schedule.Paused}}paused{{else}}running{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} — {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Single presses</th><td id="count-singles">{{.Counts.Singles}}</td></tr>
<tr><th>Double presses</th><td id="count-doubles">{{.Counts.Doubles}}</td></tr>
<tr><th>Triple presses</th><td id="count-triples">{{.Counts.Triples}}</td></tr>
<tr><th>Violations</th><td id="count-violations">{{.Counts.Violations}}</td></tr>
<tr><th>Rewards</th><td id="count-rewards">{{.Counts.Rewards}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
<tr><th>Store</th><td>{{.Config.StorePath}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function setText(id, text) {
    document.getElementById(id).textContent = text;
  }

  function apply(msg) {
    var st = msg.status;
    if (!st) return;
    var sig = st.signature;
    setText("sig-learned", sig.learned ? "yes" : "learning (" + sig.samples + "/3)");
    setText("sig-band", sig.learned ? sig.min_pulses + "–" + sig.max_pulses + " (avg " + sig.avg_pulses + ")" : "—");
    var sc = st.schedule;
    setText("sched-level", sc.level + " / " + st.config.levels);
    setText("sched-succ", sc.successes);
    setText("sched-quiet", (sc.quiet_target_ms / 1000).toFixed(1) + "s");
    setText("sched-cursor", sc.pattern_cursor);
    setText("sched-paused", sc.paused ? "paused" : "running");
    var c = st.event_counts;
    setText("count-singles", c.singles);
    setText("count-doubles", c.doubles);
    setText("count-triples", c.triples);
    setText("count-violations", c.violations);
    setText("count-rewards", c.rewards);
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");

    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "disconnected");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try { apply(JSON.parse(ev.data)); } catch (e) {}
    };
  }

  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
