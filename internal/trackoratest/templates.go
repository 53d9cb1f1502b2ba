package trackoratest

import "html/template"

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Trackora</title>
<style>
body { font-family: sans-serif; margin: 0; }
nav { display: flex; gap: 16px; padding: 12px; background: #1f2937; }
nav a { color: #fff; }
.profile { margin-left: auto; position: relative; }
#profile-menu { position: absolute; right: 0; background: #fff; padding: 8px; }
main { padding: 24px; }
.metrics { display: flex; gap: 16px; }
.metric-card { border: 1px solid #ddd; padding: 16px; min-width: 160px; }
.ant-select-selector { border: 1px solid #ccc; padding: 4px 8px; min-width: 120px; cursor: pointer; }
.ant-select-item-option-content { padding: 4px 8px; cursor: pointer; }
.Toastify__toast-body { background: #fee2e2; padding: 12px; margin: 12px; }
</style>
</head>
<body>
`

const pageFoot = `</body>
</html>
`

const navBlock = `<nav>
<a class="nav-link{{if eq .Nav "dashboard"}} active{{end}}" href="/dashboard">Dashboard</a>
<a class="nav-link" href="/RevenuePanel">Revenue Panel</a>
<a class="nav-link" href="/employees">Employees</a>
<a class="nav-link" href="/timesheet">Timesheet</a>
<a class="nav-link" href="/project">Projects</a>
<div class="profile">
<button type="button" id="profile-toggle" onclick="document.getElementById('profile-menu').style.display='block'">Admin</button>
<div id="profile-menu" style="display:none"><a href="/logout"><strong>Logout</strong></a></div>
</div>
</nav>
`

const loginBody = `<main>
<h2>Sign in to Trackora</h2>
<form method="post" action="/login" id="login-form">
<input id="email" name="email" type="email" placeholder="Email">
<input id="password" name="password" type="password" placeholder="Password">
<button type="submit">Sign in</button>
</form>
{{if .Error}}<div class="Toastify"><div class="Toastify__toast-body">{{.Msg}}</div></div>{{end}}
</main>
`

const dashboardBody = `<div class="ant-spin" id="spinner" style="position:fixed;top:0;left:0;width:100%;height:100%;background:rgba(255,255,255,0.85);z-index:1000"></div>
<main>
<h2>Dashboard</h2>
<div class="view-toggle">
<label><input type="radio" name="view" value="year" checked> Year</label>
<label><input type="radio" name="view" value="week"> Week</label>
</div>
<div class="metrics">
<div class="metric-card"><div class="metric-title">Total Expenses</div><div class="metric-amount">$120,000</div></div>
<div class="metric-card"><div class="metric-title">Total Revenue</div><div class="metric-amount">$180,000</div></div>
<div class="metric-card"><div class="metric-title">Total Profit</div><div class="metric-amount">$60,000</div></div>
</div>
</main>
<script>
const figures = {year: ["$120,000", "$180,000", "$60,000"], week: ["$2,300", "$3,450", "$1,150"]};
document.querySelectorAll("input[name=view]").forEach(function (radio) {
  radio.addEventListener("change", function () {
    const values = figures[radio.value];
    document.querySelectorAll(".metric-amount").forEach(function (el, i) { el.textContent = values[i]; });
  });
});
setTimeout(function () { document.getElementById("spinner").remove(); }, {{.SpinnerMS}});
{{if .Welcome}}setTimeout(function () { alert({{.Message}}); }, 50);{{end}}
</script>
`

const revenueBody = `<main>
<p class="revenue-head">Revenue Panel</p>
<div class="filters">
<div class="filter-section"><label>Department:</label><div class="ant-select"><div class="ant-select-selector" data-menu="dept-menu"><span class="ant-select-selection-item" id="dept-value">All</span></div></div></div>
<div class="filter-section"><label>Year:</label><div class="ant-picker"><input id="year-input" placeholder="Select year" value=""></div></div>
<div class="filter-section"><label>Week:</label><div class="ant-select"><div class="ant-select-selector" data-menu="week-menu"><span class="ant-select-selection-item" id="week-value">All</span></div></div></div>
<button onclick="document.getElementById('dept-value').textContent='All';document.getElementById('week-value').textContent='All';document.getElementById('year-input').value=''">Clear</button>
<button class="export"><span>Export</span></button>
</div>
<div class="ant-select-dropdown" id="dept-menu" style="display:none">
{{range .Departments}}<div class="ant-select-item"><div class="ant-select-item-option-content">{{.}}</div></div>
{{end}}</div>
<div class="ant-select-dropdown" id="week-menu" style="display:none">
{{range .Weeks}}<div class="ant-select-item"><div class="ant-select-item-option-content">week {{.}}</div></div>
{{end}}</div>
<div class="ant-table-wrapper"><table><tbody><tr><td>No data</td></tr></tbody></table></div>
</main>
<script>
document.querySelectorAll(".ant-select-selector").forEach(function (sel) {
  sel.addEventListener("click", function () { document.getElementById(sel.dataset.menu).style.display = "block"; });
});
document.querySelectorAll(".ant-select-dropdown").forEach(function (menu) {
  const target = menu.id === "dept-menu" ? "dept-value" : "week-value";
  menu.querySelectorAll(".ant-select-item-option-content").forEach(function (opt) {
    opt.addEventListener("click", function () {
      document.getElementById(target).textContent = opt.textContent;
      menu.style.display = "none";
    });
  });
});
</script>
`

const sectionBody = `<main>
<span>{{.Title}}</span>
<h1>{{.Title}}</h1>
</main>
`

var (
	loginTemplate     = page("login", loginBody)
	dashboardTemplate = page("dashboard", navBlock+dashboardBody)
	revenueTemplate   = page("revenue", navBlock+revenueBody)
	sectionTemplate   = page("section", navBlock+sectionBody)
)

func page(name, body string) *template.Template {
	return template.Must(template.New(name).Parse(pageHead + body + pageFoot))
}
