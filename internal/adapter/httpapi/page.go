package httpapi

import (
	"html/template"
	"net/http"
)

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

type pageData struct {
	Title string
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, pageData{Title: "Environmental Sensor Dashboard"}); err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"></script>
<style>
  body { margin: 0; font-family: sans-serif; background: #e6f2ff; }
  header { padding: 16px 24px; background: #2f6690; color: #fff; }
  header h1 { margin: 0; font-size: 22px; }
  #layout { display: flex; }
  #controls { width: 240px; padding: 16px; background: #f2f6fa; min-height: 100vh; }
  #controls label { display: block; margin-top: 12px; font-size: 13px; font-weight: bold; }
  #controls select, #controls input { width: 100%; margin-top: 4px; }
  #content { flex: 1; padding: 16px 24px; }
  #cards { display: flex; gap: 16px; }
  .card { flex: 1; background: #fff; border-radius: 10px; padding: 12px 16px; }
  .card .title { font-size: 13px; color: #555; }
  .card .value { font-size: 24px; font-weight: bold; }
  .chart { height: 420px; background: #fff; border-radius: 10px; margin-top: 16px; }
  #insights { background: #DCEEFB; padding: 12px; border-radius: 10px; margin-top: 16px; }
</style>
</head>
<body>
<header><h1>{{.Title}}</h1></header>
<div id="layout">
  <div id="controls">
    <label for="year">Select Year</label>
    <select id="year"></select>
    <label for="start">Start Date</label>
    <input type="date" id="start">
    <label for="end">End Date</label>
    <input type="date" id="end">
    <label for="region">Select Region</label>
    <select id="region"></select>
    <label>Select Metrics</label>
    <div id="metrics"></div>
    <label for="charttype">Chart Type</label>
    <select id="charttype"></select>
  </div>
  <div id="content">
    <div id="cards"></div>
    <div id="charts"></div>
    <h3>Insights</h3>
    <div id="insights"></div>
  </div>
</div>
<script>
let meta = null;
let instances = [];

function isoDate(d) { return d.toISOString().slice(0, 10); }

function defaultRange(year) {
  const start = new Date(Date.UTC(year, 0, 1));
  const end = new Date(start);
  end.setUTCDate(end.getUTCDate() + meta.default_days - 1);
  return [isoDate(start), isoDate(end)];
}

function fillSelect(el, values, labels, selected) {
  el.innerHTML = '';
  values.forEach((v, i) => {
    const o = document.createElement('option');
    o.value = v;
    o.textContent = labels ? labels[i] : v;
    if (v === selected) o.selected = true;
    el.appendChild(o);
  });
}

async function init() {
  meta = await (await fetch('api/meta')).json();

  fillSelect(document.getElementById('year'),
    meta.years.map(String), null, String(meta.default_year));
  fillSelect(document.getElementById('region'), meta.regions, null, 'All');
  fillSelect(document.getElementById('charttype'),
    meta.chart_types.map(t => t.value), meta.chart_types.map(t => t.label), 'line');

  const metricsDiv = document.getElementById('metrics');
  meta.metrics.forEach(m => {
    const label = document.createElement('label');
    label.style.fontWeight = 'normal';
    const box = document.createElement('input');
    box.type = 'checkbox';
    box.value = m.metric;
    box.checked = true;
    box.addEventListener('change', refresh);
    label.appendChild(box);
    label.appendChild(document.createTextNode(' ' + m.label));
    metricsDiv.appendChild(label);
  });

  resetDates();
  for (const id of ['start', 'end', 'region', 'charttype']) {
    document.getElementById(id).addEventListener('change', refresh);
  }
  document.getElementById('year').addEventListener('change', () => { resetDates(); refresh(); });
  await refresh();
}

function resetDates() {
  const year = Number(document.getElementById('year').value);
  const [start, end] = defaultRange(year);
  document.getElementById('start').value = start;
  document.getElementById('end').value = end;
}

function params() {
  const selected = Array.from(
    document.querySelectorAll('#metrics input:checked')).map(b => b.value);
  return new URLSearchParams({
    year: document.getElementById('year').value,
    start: document.getElementById('start').value,
    end: document.getElementById('end').value,
    region: document.getElementById('region').value,
    type: document.getElementById('charttype').value,
    metrics: selected.join(','),
  });
}

async function refresh() {
  const p = params();
  const summary = await (await fetch('api/summary?' + p)).json();
  renderCards(summary.cards);
  renderInsights(summary.insights);

  if (p.get('metrics') === '') {
    renderCharts({ charts: [] });
    return;
  }
  const charts = await (await fetch('api/charts?' + p)).json();
  renderCharts(charts);
}

function renderCards(cards) {
  const host = document.getElementById('cards');
  host.innerHTML = '';
  cards.forEach(c => {
    const div = document.createElement('div');
    div.className = 'card';
    div.innerHTML = '<div class="title"></div><div class="value"></div>';
    div.querySelector('.title').textContent = c.title;
    div.querySelector('.value').textContent = c.value;
    host.appendChild(div);
  });
}

function renderInsights(insights) {
  const host = document.getElementById('insights');
  host.innerHTML = '';
  if (!insights.length) {
    host.textContent = 'No data in the selected period.';
    return;
  }
  insights.forEach(line => {
    const div = document.createElement('div');
    div.textContent = line;
    host.appendChild(div);
  });
}

function renderCharts(resp) {
  instances.forEach(c => c.dispose());
  instances = [];
  const host = document.getElementById('charts');
  host.innerHTML = '';
  resp.charts.forEach(c => {
    const div = document.createElement('div');
    div.className = 'chart';
    host.appendChild(div);
    const inst = echarts.init(div);
    inst.setOption(c.option ? c.option : heatmapOption(c.grid));
    instances.push(inst);
  });
}

function heatmapOption(g) {
  const data = [];
  g.values.forEach((row, i) => row.forEach((v, j) => data.push([j, i, v])));
  return {
    title: { text: g.label, left: 'center' },
    tooltip: { position: 'top' },
    grid: { top: '12%', bottom: '25%', containLabel: true },
    xAxis: { type: 'category', data: g.dates, splitArea: { show: true },
             axisLabel: { rotate: 45 } },
    yAxis: { type: 'category', data: g.regions, splitArea: { show: true } },
    visualMap: { min: g.min, max: g.max, calculable: true, orient: 'horizontal',
                 left: 'center', bottom: 0,
                 inRange: { color: ['#3b4cc0', '#f7f7f7', '#b40426'] } },
    series: [{ type: 'heatmap', data: data }],
  };
}

window.addEventListener('resize', () => instances.forEach(c => c.resize()));
init();
</script>
</body>
</html>
`
