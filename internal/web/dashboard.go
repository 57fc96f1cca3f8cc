package web

// indexHTML is the embedded landing page: it fetches the report over
// the JSON API and streams progress over the websocket. Kept as a plain
// constant so the binary stays self-contained.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>cohesort</title>
<style>
body { font-family: -apple-system, sans-serif; margin: 2rem; color: #1a1a1a; }
h1 { font-size: 1.25rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
#progress { color: #555; font-family: monospace; white-space: pre; }
.muted { color: #888; }
</style>
</head>
<body>
<h1>cohesort</h1>
<p class="muted">run: <span id="run">-</span> &middot; <a href="/report">html report</a> &middot; <a href="/api/report">json</a></p>
<div id="progress"></div>
<table id="buckets" hidden>
<thead><tr><th>distribution</th><th>count</th><th>sub-batches</th><th>tour before</th><th>tour after</th></tr></thead>
<tbody></tbody>
</table>
<script>
const stages = {};

function renderProgress() {
  document.getElementById('progress').textContent = Object.entries(stages)
    .map(([name, s]) => name.padEnd(10) + s.done + ' / ' + s.total)
    .join('\n');
}

function renderReport(r) {
  document.getElementById('run').textContent = r.run_id;
  const table = document.getElementById('buckets');
  const body = table.querySelector('tbody');
  body.innerHTML = '';
  for (const b of r.buckets || []) {
    const row = body.insertRow();
    for (const v of [b.distribution, b.count, b.sub_batches, b.tour_length_before || 0, b.tour_length_after || 0]) {
      row.insertCell().textContent = v;
    }
  }
  table.hidden = false;
}

fetch('/api/report').then(r => r.ok ? r.json() : null).then(r => { if (r) renderReport(r); });

const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
ws.onmessage = (msg) => {
  const { type, data } = JSON.parse(msg.data);
  if (type === 'report') {
    renderReport(data);
  } else if (type === 'progress') {
    const s = stages[data.Stage] || (stages[data.Stage] = { done: 0, total: 0 });
    s.done++;
    s.total = data.Total;
    renderProgress();
  }
};
</script>
</body>
</html>
`
