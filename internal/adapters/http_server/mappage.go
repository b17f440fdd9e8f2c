package httpserver

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

var mapTmpl = template.Must(template.New("map").Parse(mapHTML))

// mapPage serves the embedded map UI. The Maps key is injected server-side
// so it never lives in a static asset.
func (h *Handlers) mapPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct{ MapsKey string }{MapsKey: h.MapsKey}
	if err := mapTmpl.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("failed to render map page")
	}
}

const mapHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Pollen Tracker</title>
<style>
  html, body { height: 100%; margin: 0; font-family: system-ui, sans-serif; }
  #map { height: 100%; }
  #panel {
    position: absolute; top: 10px; left: 10px; z-index: 5;
    background: #fff; padding: 12px; border-radius: 6px;
    box-shadow: 0 1px 4px rgba(0,0,0,.3); max-width: 280px;
  }
  #panel h1 { font-size: 16px; margin: 0 0 8px; }
  #panel label { display: block; font-size: 12px; margin-top: 6px; }
  #panel input, #panel select, #panel textarea { width: 100%; box-sizing: border-box; }
  #panel button { margin-top: 8px; width: 100%; }
  #status { font-size: 12px; margin-top: 6px; color: #555; }
  .legend span { display: inline-block; width: 10px; height: 10px; border-radius: 50%; margin-right: 4px; }
</style>
</head>
<body>
<div id="panel">
  <h1>Pollen Tracker</h1>
  <div class="legend">
    <span style="background:#4caf50"></span>low
    <span style="background:#ff9800"></span>medium
    <span style="background:#f44336"></span>high
  </div>
  <form id="review-form">
    <label>Pollen type
      <input name="pollen_type" placeholder="grass, tree, ragweed..." required>
    </label>
    <label>Severity
      <select name="severity">
        <option>low</option><option>medium</option><option>high</option>
      </select>
    </label>
    <label>Radius (km)
      <input name="radius_km" type="number" value="2" min="0.1" step="0.1">
    </label>
    <label>Symptoms (comma separated)
      <input name="symptoms" placeholder="sneezing, itchy eyes">
    </label>
    <label>Notes
      <textarea name="review_text" rows="2"></textarea>
    </label>
    <button type="submit">Report at map center</button>
  </form>
  <div id="status">Loading reviews...</div>
</div>
<div id="map"></div>
<script>
var map;
var severityColors = { low: "#4caf50", medium: "#ff9800", high: "#f44336" };

function colorFor(sev) { return severityColors[sev] || "#9e9e9e"; }

function drawReview(rv) {
  new google.maps.Circle({
    map: map,
    center: { lat: rv.center_lat, lng: rv.center_lng },
    radius: rv.radius_km * 1000,
    fillColor: colorFor(rv.severity),
    fillOpacity: 0.25,
    strokeColor: colorFor(rv.severity),
    strokeWeight: 1
  });
}

function loadReviews() {
  fetch("/v1/reviews?limit=200")
    .then(function (r) { return r.json(); })
    .then(function (page) {
      (page.items || []).forEach(drawReview);
      document.getElementById("status").textContent =
        (page.items || []).length + " recent reviews shown";
    })
    .catch(function () {
      document.getElementById("status").textContent = "Could not load reviews";
    });
}

function initMap() {
  map = new google.maps.Map(document.getElementById("map"), {
    center: { lat: 40.0, lng: -100.0 },
    zoom: 4
  });
  loadReviews();
}

document.getElementById("review-form").addEventListener("submit", function (ev) {
  ev.preventDefault();
  var f = ev.target;
  var c = map.getCenter();
  var symptoms = f.symptoms.value
    .split(",").map(function (s) { return s.trim(); }).filter(Boolean);
  var body = {
    center_lat: c.lat(),
    center_lng: c.lng(),
    radius_km: parseFloat(f.radius_km.value),
    pollen_type: f.pollen_type.value,
    severity: f.severity.value
  };
  if (symptoms.length) { body.symptoms = symptoms; }
  if (f.review_text.value) { body.review_text = f.review_text.value; }

  fetch("/v1/reviews", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify(body)
  }).then(function (r) {
    if (r.status === 201) {
      document.getElementById("status").textContent = "Review saved";
      return r.json().then(drawReview);
    }
    return r.json().then(function (p) {
      document.getElementById("status").textContent = p.detail || "Submission rejected";
    });
  }).catch(function () {
    document.getElementById("status").textContent = "Submission failed";
  });
});
</script>
<script async src="https://maps.googleapis.com/maps/api/js?key={{.MapsKey}}&callback=initMap"></script>
</body>
</html>`
