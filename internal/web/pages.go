package web

import "html/template"

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>PC Monitor</title>
  <style>
    body { margin: 0; font-family: system-ui, sans-serif; background: #111; color: #eee; }
    .wrap { max-width: 960px; margin: 0 auto; padding: 1.2rem; }
    h1 { text-align: center; font-weight: 600; }
    .status { text-align: center; margin-bottom: .8rem; font-size: .85rem; color: #888; }
    .grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(150px, 1fr)); gap: .8rem; }
    .card { background: #1d1d1d; border-radius: 10px; padding: .8rem; }
    .label { font-size: .8rem; color: #999; }
    .value { font-size: 1.8rem; font-weight: 600; }
    .weather { margin-top: 1.5rem; background: #1a2230; border-radius: 10px; padding: 1rem; }
    .forecast { display: grid; grid-template-columns: repeat(3, 1fr); gap: .6rem; margin-top: .8rem; }
    .day { background: #223049; border-radius: 8px; padding: .6rem; text-align: center; }
  </style>
  <script>
    const ids = ["cpu","mem","gpu","diskPct","diskMBps","cpuTempF","gpuTempF","freeC","freeD"];
    const fmt = v => (v === null || v === undefined) ? "N/A" : (Math.round(v * 10) / 10);
    const set = (id, text) => { const el = document.getElementById(id); if (el) el.textContent = text; };
    async function refresh() {
      try {
        const res = await fetch("/metrics", {cache: "no-store"});
        const json = await res.json();
        ids.forEach(id => set(id, fmt(json[id])));
        const age = json.dataAgeMs, up = Math.floor(json.uptimeMs / 1000);
        const st = document.getElementById("dataStatus");
        if (age < 0) { st.textContent = "No serial data received yet (uptime: " + up + "s)"; st.style.color = "#f44"; }
        else if (age > 10000) { st.textContent = "Serial data stale: " + Math.floor(age / 1000) + "s ago"; st.style.color = "#fa0"; }
        else { st.textContent = "Serial data: " + (age < 1000 ? "live" : Math.floor(age / 1000) + "s ago"); st.style.color = "#0f0"; }
        const w = json.weather;
        if (!w) { document.getElementById("weather").style.display = "none"; return; }
        set("weatherLocation", w.location || "--");
        set("weatherTemp", w.temperature === null ? "--" : Math.round(w.temperature) + "°");
        set("weatherDesc", w.description || "--");
        set("weatherMeta", "Feels " + fmt(w.feelsLike) + "  Humidity " + fmt(w.humidity) + "%  Wind " + fmt(w.windSpeed));
        (json.forecast || []).forEach(d => {
          set("f" + d.slot + "Day", d.valid ? d.label : "--");
          set("f" + d.slot + "Hi", d.valid && d.high !== null ? Math.round(d.high) : "--");
          set("f" + d.slot + "Lo", d.valid && d.low !== null ? Math.round(d.low) : "--");
          set("f" + d.slot + "Desc", d.valid ? d.description : "--");
        });
      } catch (err) {
        set("dataStatus", "Fetch error: " + err.message);
      }
    }
    setInterval(refresh, 2000);
    window.onload = refresh;
  </script>
</head>
<body>
  <main class="wrap">
    <h1>PC Stats</h1>
    <div class="status"><span id="dataStatus">Waiting for data...</span></div>
    <div class="grid">
      <div class="card"><div class="label">CPU %</div><div id="cpu" class="value">-</div></div>
      <div class="card"><div class="label">MEM %</div><div id="mem" class="value">-</div></div>
      <div class="card"><div class="label">GPU %</div><div id="gpu" class="value">-</div></div>
      <div class="card"><div class="label">Disk %</div><div id="diskPct" class="value">-</div></div>
      <div class="card"><div class="label">Disk MB/s</div><div id="diskMBps" class="value">-</div></div>
      <div class="card"><div class="label">CPU &deg;F</div><div id="cpuTempF" class="value">-</div></div>
      <div class="card"><div class="label">GPU &deg;F</div><div id="gpuTempF" class="value">-</div></div>
      <div class="card"><div class="label">Free C (GB)</div><div id="freeC" class="value">-</div></div>
      <div class="card"><div class="label">Free D (GB)</div><div id="freeD" class="value">-</div></div>
    </div>
    <section class="weather" id="weather">
      <h2 id="weatherLocation">Fetching...</h2>
      <div class="value" id="weatherTemp">--</div>
      <div id="weatherDesc">--</div>
      <div class="label" id="weatherMeta">--</div>
      <div class="forecast">
        <div class="day"><div id="f0Day">--</div><div><span id="f0Hi">--</span> / <span id="f0Lo">--</span></div><div class="label" id="f0Desc">--</div></div>
        <div class="day"><div id="f1Day">--</div><div><span id="f1Hi">--</span> / <span id="f1Lo">--</span></div><div class="label" id="f1Desc">--</div></div>
        <div class="day"><div id="f2Day">--</div><div><span id="f2Hi">--</span> / <span id="f2Lo">--</span></div><div class="label" id="f2Desc">--</div></div>
      </div>
    </section>
  </main>
</body>
</html>
`

type setupPage struct {
	Error string
	Saved bool
	SSID  string
	City  string
	Units string
}

var setupTmpl = template.Must(template.New("setup").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>PC Monitor Setup</title>
  <style>
    body { margin: 0; font-family: system-ui, sans-serif; background: #111; color: #eee; }
    form, .done { max-width: 420px; margin: 2rem auto; background: #1d1d1d; border-radius: 10px; padding: 1.2rem; }
    label { display: block; margin-top: .8rem; font-size: .85rem; color: #aaa; }
    input, select { width: 100%; box-sizing: border-box; padding: .5rem; margin-top: .3rem; background: #2a2a2a; color: #eee; border: 1px solid #444; border-radius: 6px; }
    button { margin-top: 1.2rem; width: 100%; padding: .7rem; background: #2b7; border: 0; border-radius: 6px; color: #fff; font-weight: 600; }
    .err { color: #f66; }
  </style>
</head>
<body>
{{if .Saved}}
  <div class="done"><h1>Settings saved</h1><p>The dashboard will use the new settings on its next refresh.</p></div>
{{else}}
  <form method="post" action="/setup/save">
    <h1>PC Monitor Setup</h1>
    {{if .Error}}<p class="err">{{.Error}}</p>{{end}}
    <label>Network name<input type="text" name="ssid" value="{{.SSID}}" placeholder="Your WiFi name" required></label>
    <label>Network password<input type="password" name="pass" placeholder="WiFi password"></label>
    <label>OpenWeatherMap API key<input type="text" name="apikey" placeholder="Your API key" required></label>
    <label>City<input type="text" name="city" value="{{.City}}" placeholder="e.g., New York" required></label>
    <label>Units
      <select name="units">
        <option value="imperial"{{if eq .Units "imperial"}} selected{{end}}>Imperial (&deg;F)</option>
        <option value="metric"{{if eq .Units "metric"}} selected{{end}}>Metric (&deg;C)</option>
        <option value="standard"{{if eq .Units "standard"}} selected{{end}}>Standard (K)</option>
      </select>
    </label>
    <button type="submit">Save &amp; Connect</button>
  </form>
{{end}}
</body>
</html>
`))
