package ui

import (
	"bytes"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"path/filepath"

	"vidgrab/internal/manager"
	"vidgrab/internal/utils"
)

// StateSource provides the view state a page is rendered from
type StateSource interface {
	Snapshot() manager.ViewState
}

type TemplateHandler struct {
	source StateSource
	tpl    *template.Template
}

func NewTemplateHandler(source StateSource) *TemplateHandler {
	tpl := template.Must(template.New("page").Funcs(template.FuncMap{
		"base": filepath.Base,
		"q":    url.PathEscape,
	}).Parse(pageTpl))
	return &TemplateHandler{source: source, tpl: tpl}
}

// Render writes the page for state to w
func (th *TemplateHandler) Render(w io.Writer, state manager.ViewState) error {
	return th.tpl.Execute(w, state)
}

func (th *TemplateHandler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	// Render into a buffer so a template error never sends half a page
	var buf bytes.Buffer
	if err := th.Render(&buf, th.source.Snapshot()); err != nil {
		utils.LogError("UI", "Failed to render page: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

const pageTpl = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
{{if .Busy}}<meta http-equiv="refresh" content="1">{{end}}
<title>vidgrab</title>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto,sans-serif;max-width:760px;margin:0 auto;padding:1.5rem;background:#f5f5f7;color:#1d1d1f}
.card{background:#fff;border-radius:12px;padding:1rem 1.25rem;margin-bottom:1rem;box-shadow:0 4px 12px rgba(0,0,0,.06)}
.row{display:flex;gap:.5rem;align-items:center}
input[type=text]{flex:1;padding:.6rem;border:1px solid #ccc;border-radius:8px}
button{padding:.55rem .9rem;border:0;border-radius:8px;background:#5a4fcf;color:#fff;cursor:pointer}
button.secondary{background:#e5e5ea;color:#1d1d1f}
.badge{display:inline-block;margin-top:.5rem;font-size:.85rem;color:#555}
.notice{padding:.6rem .9rem;border-radius:8px;margin-bottom:1rem}
.notice-success{background:#e3f7e8;color:#1b6e33}
.notice-error{background:#fde8e8;color:#9b1c1c}
.thumb{max-width:100%;border-radius:8px}
.quality-item{display:flex;justify-content:space-between;align-items:center;padding:.4rem 0;border-bottom:1px solid #eee}
.quality-meta{color:#777;font-size:.85rem}
.quality-empty{color:#777}
.bar{height:10px;background:#e5e5ea;border-radius:5px;overflow:hidden}
.bar-fill{height:100%;background:#5a4fcf}
.history-item{display:flex;justify-content:space-between;align-items:center;padding:.4rem 0;border-bottom:1px solid #eee}
.history-meta{color:#777;font-size:.8rem}
form.inline{display:inline}
</style>
</head>
<body>
<h1>vidgrab</h1>

{{with .Notice}}<div id="notice" class="notice notice-{{.Level}}">{{.Message}}</div>{{end}}

<div class="card">
  <form method="post" action="/analyze" class="row">
    <input type="text" name="url" placeholder="Paste a video link" value="{{.URL}}" autofocus>
    <button type="submit"{{if eq .AnalyzeState "analyzing"}} disabled{{end}}>Analyze</button>
  </form>
  <div id="platform" class="badge">Platform: {{.Platform}}</div>
</div>

{{with .Analysis}}
<div id="results" class="card">
  {{with .Result.Thumbnail}}<img class="thumb" src="{{.}}" alt="thumbnail">{{end}}
  <h2 id="title">{{.Result.Title}}</h2>
  {{if eq .Result.Kind "single_asset"}}
  {{with .Result.Caption}}<p id="caption">{{.}}</p>{{end}}
  <form method="post" action="/download/asset" class="inline">
    <button id="download-asset" type="submit">Download Reel</button>
  </form>
  {{else}}
  <div id="quality-list">
    {{if .Quality.Empty}}
    <div class="quality-empty">{{.Quality.Message}}</div>
    {{else}}
    {{range .Quality.Rows}}
    <div class="quality-item" data-format="{{.FormatID}}">
      <div>
        <div class="quality-tier">{{.Tier}}</div>
        <div class="quality-meta">{{.SizeLabel}}</div>
      </div>
      <form method="post" action="/download/video" class="inline">
        <input type="hidden" name="format_id" value="{{.FormatID}}">
        <button type="submit">Download</button>
      </form>
    </div>
    {{end}}
    {{end}}
  </div>
  <form method="post" action="/download/audio" class="inline">
    <button id="download-audio" class="secondary" type="submit">Download MP3</button>
  </form>
  {{end}}
</div>
{{end}}

{{if ne .Download.Status "idle"}}
<div id="progress" class="card" data-status="{{.Download.Status}}">
  <div class="bar"><div class="bar-fill" style="width: {{.Download.BarWidth}}%"></div></div>
  <p id="progress-text">{{.Download.Text}}</p>
  {{range .Download.LocalPaths}}<a class="saved-file" href="/files/{{base . | q}}">{{base .}}</a> {{end}}
</div>
{{end}}

<div class="card">
  <div class="row" style="justify-content:space-between">
    <h3>History</h3>
    {{if .History}}<form method="post" action="/history/clear" class="inline"><button class="secondary" type="submit">Clear</button></form>{{end}}
  </div>
  {{if .History}}
  <div id="history">
    {{range .History}}
    <div class="history-item" data-id="{{.ID}}">
      <div>
        <div class="history-title">{{.Title}}</div>
        <div class="history-meta">{{.Type}} • {{.Time}}</div>
      </div>
      <form method="post" action="/history/{{.ID}}/redownload" class="inline">
        <button class="secondary" type="submit">Download again</button>
      </form>
    </div>
    {{end}}
  </div>
  {{else}}
  <p id="history-empty" class="history-empty">{{.HistoryMessage}}</p>
  {{end}}
</div>
</body>
</html>`
