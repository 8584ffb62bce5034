package api

import "html/template"

// pageTemplates는 설정/시청 페이지 템플릿입니다.
// 별도 배포 파일 없이 단일 바이너리로 동작하도록 코드에 내장합니다.
var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "index"}}
<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>ARENNA - DVR Connection</title>
  <style>
    :root{color-scheme:dark}
    body{background:#0f1115;color:#eaeaea;font-family:system-ui,Segoe UI,Roboto,Arial;margin:0}
    header{padding:24px 16px;text-align:center;border-bottom:1px solid #222;background:#0b0d12}
    h1{font-size:42px;letter-spacing:4px;margin:0}
    main{max-width:980px;margin:32px auto;padding:0 16px}
    .card{background:#13151b;border:1px solid #1e2230;border-radius:12px;padding:20px}
    label{display:block;margin:12px 0 6px;font-weight:600}
    input,select{width:100%;padding:12px;border-radius:8px;border:1px solid #2a2f40;background:#0f1320;color:#eaeaea;outline:none}
    .row{display:flex;gap:16px;flex-wrap:wrap}
    .col{flex:1 1 300px}
    button{background:#2563eb;border:none;color:white;padding:12px 18px;border-radius:10px;font-weight:700;cursor:pointer}
    .actions{margin-top:18px;display:flex;gap:12px;align-items:center}
    .hint{font-size:13px;color:#9aa3b2}
  </style>
</head>
<body>
  <header><h1>ARENNA</h1></header>
  <main>
    <div class="card">
      <h2 style="margin-top:0">Connect to DVR</h2>
      <form method="post" action="/connect">
        <div class="row">
          <div class="col">
            <label>DVR IP</label>
            <input name="ip" value="{{.IP}}" placeholder="192.168.0.18" required>
          </div>
          <div class="col">
            <label>User</label>
            <input name="user" value="{{.User}}" placeholder="admin" required>
          </div>
          <div class="col">
            <label>Password</label>
            <input name="password" type="password" value="{{.Password}}" required>
          </div>
        </div>
        <div class="row">
          <div class="col">
            <label>Channels (Ctrl/Shift for multiple)</label>
            <select name="channels" multiple size="10">
              {{$sel := .Selected}}
              {{range .AllChannels}}
                <option value="{{.}}" {{if index $sel .}}selected{{end}}>Channel {{.}}</option>
              {{end}}
            </select>
          </div>
          <div class="col">
            <label>Stream quality</label>
            <select name="subtype">
              <option value="0" {{if eq .Subtype 0}}selected{{end}}>Main (HD)</option>
              <option value="1" {{if eq .Subtype 1}}selected{{end}}>Sub (low latency)</option>
            </select>
            <label style="margin-top:14px">Frame height (px)</label>
            <input name="target_height" type="number" min="180" max="1080" step="10" value="{{.TargetHeight}}">
            <div class="hint">Larger means sharper image and more CPU.</div>
          </div>
        </div>
        <div class="actions">
          <button type="submit">Connect</button>
          {{if .Connected}}
          <a href="/view" style="text-decoration:none">
            <button type="button" style="background:#16a34a">Go to viewer</button>
          </a>
          {{end}}
        </div>
      </form>
    </div>
  </main>
</body>
</html>
{{end}}

{{define "view"}}
<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>ARENNA - Viewer</title>
  <style>
    :root{color-scheme:dark}
    body{background:#0f1115;color:#eaeaea;font-family:system-ui,Segoe UI,Roboto,Arial;margin:0}
    header{padding:18px 12px;text-align:center;border-bottom:1px solid #222;background:#0b0d12}
    h1{font-size:36px;letter-spacing:4px;margin:0}
    main{max-width:1280px;margin:24px auto;padding:0 16px}
    .toolbar{display:flex;flex-wrap:wrap;gap:10px;margin-bottom:16px}
    .btn{background:#1f2937;color:#eaeaea;border:1px solid #2a3344;border-radius:10px;padding:8px 12px;text-decoration:none;font-weight:600}
    .grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(320px,1fr));gap:12px}
    .card{background:#13151b;border:1px solid #1e2230;border-radius:12px;padding:12px}
    img{max-width:100%;height:auto;border-radius:8px;border:1px solid #2a2f40}
    .muted{color:#a0a5b0;font-size:14px}
  </style>
</head>
<body>
  <header><h1>ARENNA</h1></header>
  <main>
    <div class="toolbar">
      <a class="btn" href="/view?mode=row">Row mosaic</a>
      <a class="btn" href="/view?mode=grid2">Grid 2x2 (first 4)</a>
      <a class="btn" href="/view?mode=grid4">Grid 4x4 (all)</a>
      <a class="btn" href="/">Reconfigure</a>
    </div>

    {{if eq .Mode "row"}}
      <div class="card">
        <h3>Row mosaic</h3>
        <img src="/mosaic.mjpg?mode=row">
      </div>
    {{else if eq .Mode "grid2"}}
      <div class="card">
        <h3>Grid 2x2 (first 4)</h3>
        <img src="/mosaic.mjpg?mode=grid&cols=2&subset=first4">
      </div>
    {{else if eq .Mode "grid4"}}
      <div class="card">
        <h3>Grid 4x4 (all)</h3>
        <img src="/mosaic.mjpg?mode=grid&cols=4&subset=all">
      </div>
    {{end}}

    <h3 style="margin-top:22px">Individual cameras</h3>
    <div class="grid">
      {{range .Channels}}
        <div class="card">
          <div class="muted" style="margin:4px 0 6px">Channel {{.}}</div>
          <img src="/ch/{{.}}.mjpg">
        </div>
      {{end}}
    </div>
  </main>
</body>
</html>
{{end}}
`))
