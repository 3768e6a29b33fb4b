package portalhttp

import (
	"html/template"
	"io"
)

const layoutTmpl = `
{{define "head"}}<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/static/portal.css">
<link rel="icon" href="/static/favicon.svg">
<script defer src="/static/portal.js"></script>
</head>
<body data-stream="{{.Stream}}">{{end}}
{{define "foot"}}</body>
</html>{{end}}
`

const registerTmpl = `
{{define "register-status"}}
<div class="status-row"><span class="status-dot{{if .Live}} active{{end}}"></span><span>{{.StatusText}}</span></div>
<p class="waiting" {{if not .Waiting}}hidden{{end}}>Waiting for the admin to open the airlock.</p>
<p class="error" {{if not .Error}}hidden{{end}}>{{.Error}}</p>
<button type="submit" class="primary" {{if not .ButtonEnable}}disabled{{end}}>{{.ButtonText}}</button>
{{end}}

{{define "register-page"}}{{template "head" .}}
<main class="card narrow">
<h1>Board the Ship</h1>
<form data-submit="/register" data-enter="/register/enter">
<label>Name <input name="name" autocomplete="name"></label>
<label>College <input name="college"></label>
<label>System number <input name="system_number"></label>
<label>Phone <input name="phone" autocomplete="tel"></label>
<div data-fragment="/register/status">{{template "register-status" .Screen}}</div>
</form>
</main>
{{template "foot" .}}{{end}}
`

const loginTmpl = `
{{define "login-error"}}<p class="error" {{if not .Error}}hidden{{end}}>{{.Error}}</p>{{end}}

{{define "login-page"}}{{template "head" .}}
<main class="card narrow">
<h1>Admin</h1>
<form data-submit="/admin/login" data-enter="/admin/login">
<label>Password <input type="password" name="password" autofocus></label>
<div data-fragment="/admin/login/error">{{template "login-error" .Screen}}</div>
<button type="submit" class="primary">Log in</button>
</form>
</main>
{{template "foot" .}}{{end}}
`

const adminTmpl = `
{{define "admin-status"}}
<span class="status-dot{{if .Status.Live}} live{{end}}"></span>
<span>{{.Status.Text}}</span>
<span class="muted">{{.Status.Started}}</span>
{{end}}

{{define "admin-stats"}}
<div class="stat"><b>{{.Stats.Total}}</b><span>Participants</span></div>
<div class="stat"><b>{{.Stats.Submitted}}</b><span>Submitted</span></div>
<div class="stat"><b>{{.Stats.Active}}</b><span>Active</span></div>
<div class="stat"><b>{{.Stats.AvgSolved}}</b><span>Avg solved</span></div>
{{end}}

{{define "admin-participants"}}
{{if .ParticipantsEmpty}}<tr><td colspan="8" class="empty-cell">{{.ParticipantsEmpty}}</td></tr>{{end}}
{{range .Participants}}<tr>
<td class="rank-other">{{.Number}}</td>
<td>{{.Name}}</td>
<td>{{.College}}</td>
<td>{{.SystemNumber}}</td>
<td>{{.Phone}}</td>
<td><span class="badge badge-green">{{.Solved}}</span></td>
<td>{{if .Submitted}}<span class="badge badge-orange">Submitted</span>{{else}}<span class="active-text">Active</span>{{end}}</td>
<td>
<button class="action-btn" data-action="/admin/actions/view/{{.ID}}" data-body='{"name":{{json .Name}}}'>View</button>
{{if .CanEnd}}<button class="action-btn danger" data-action="/admin/actions/end/{{.ID}}" data-body='{"name":{{json .Name}}}' data-confirm="{{confirmEnd .Name}}">End Test</button>{{end}}
</td>
</tr>{{end}}
{{end}}

{{define "admin-leaderboard"}}
{{if .LeaderboardEmpty}}<tr><td colspan="7" class="empty-cell">{{.LeaderboardEmpty}}</td></tr>{{end}}
{{range .Leaderboard}}<tr>
<td class="{{.Class}}">{{.Symbol}}</td>
<td>{{.Name}}</td>
<td>{{.College}}</td>
<td>{{.SystemNumber}}</td>
<td><span class="badge badge-green">{{.Solved}}</span></td>
<td class="time-val">{{.Time}}</td>
<td>{{if .HasWrong}}<span class="badge badge-orange">{{.Wrong}}</span>{{else}}<span class="rank-other">{{.Wrong}}</span>{{end}}</td>
</tr>{{end}}
{{end}}

{{define "admin-modal"}}
{{with .Modal}}{{if .Open}}
<div class="modal open">
<div class="modal-box wide">
<div class="modal-head"><h2>{{.Title}}</h2><button class="action-btn" data-action="/admin/actions/close-modal">✕</button></div>
{{if .Message}}<div class="empty-cell">{{.Message}}</div>{{end}}
{{range .Cards}}
<div class="sub-card">
<div class="sub-card-head">
<div class="sub-card-title">{{.ProblemName}}</div>
<span class="badge badge-muted">{{.Language}}</span>
<span class="badge {{if .Solved}}badge-green{{else}}badge-red{{end}}">{{.SolvedText}}</span>
</div>
<div class="stats-row">
<div><span>Time taken: </span>{{.TimeTaken}}</div>
<div><span>Wrong attempts: </span><span class="{{if gt .WrongAttempts 0}}wrong{{end}}">{{.WrongAttempts}}</span></div>
<div><span>Total attempts: </span>{{.TotalAttempts}}</div>
<div><span>Last saved: </span>{{.LastSaved}}</div>
</div>
<pre>{{.Code}}</pre>
</div>
{{end}}
</div>
</div>
{{end}}{{end}}
{{end}}

{{define "admin-page"}}{{template "head" .}}
<header class="bar">
<h1>Mission Control</h1>
<div class="status" data-fragment="/admin/fragments/status">{{template "admin-status" .Screen}}</div>
<div class="controls">
<button class="primary" data-action="/admin/actions/start" data-confirm="{{.ConfirmStart}}">Start contest</button>
<button class="danger" data-action="/admin/actions/stop" data-confirm="{{.ConfirmStop}}">Stop contest</button>
<a class="muted" href="/admin/logout">Log out</a>
</div>
</header>
<section class="stats" data-fragment="/admin/fragments/stats">{{template "admin-stats" .Screen}}</section>
<section class="card">
<h2>Participants</h2>
<table>
<thead><tr><th>#</th><th>Name</th><th>College</th><th>System</th><th>Phone</th><th>Solved</th><th>State</th><th></th></tr></thead>
<tbody data-fragment="/admin/fragments/participants">{{template "admin-participants" .Screen}}</tbody>
</table>
</section>
<section class="card">
<h2>Leaderboard</h2>
<table>
<thead><tr><th>Rank</th><th>Name</th><th>College</th><th>System</th><th>Solved</th><th>Time</th><th>Wrong</th></tr></thead>
<tbody data-fragment="/admin/fragments/leaderboard">{{template "admin-leaderboard" .Screen}}</tbody>
</table>
</section>
<div data-fragment="/admin/fragments/modal">{{template "admin-modal" .Screen}}</div>
{{template "foot" .}}{{end}}
`

const contestTmpl = `
{{define "contest-sidebar"}}
{{range .Sidebar}}
<div class="problem-item{{if .Solved}} solved{{end}}{{if .Active}} active{{end}}" data-action="/contest/select/{{.ID}}">
<div class="problem-num">{{.Number}}</div>
<div class="problem-info"><div class="problem-title-short">{{.Title}}</div><div class="problem-sub">{{.Subtitle}}</div></div>
<div class="tick{{if .Solved}} visible{{end}}">✓</div>
</div>
{{end}}
{{end}}

{{define "contest-problem"}}
{{with .Problem}}
<h2>{{.Title}}</h2>
<div class="prob-subtitle">{{.Subtitle}}</div>
<div class="prob-meta">{{if .Constraints}}<div class="meta-chip">{{trusted .Constraints}}</div>{{end}}</div>
<div class="prob-desc">{{trusted .Description}}</div>
<div class="io-section"><div class="io-label">Input Format</div><div class="io-text">{{.InputFormat}}</div></div>
<div class="io-section"><div class="io-label">Output Format</div><div class="io-text">{{.OutputFormat}}</div></div>
<div class="io-section"><div class="io-label">Sample Test Cases</div>
{{range .Samples}}
<div class="tc-sample">
<div class="tc-sample-label">{{.Label}}</div>
<div>Input: {{.Input}}</div>
<div>Expected: {{.Expected}}</div>
{{if .Explanation}}<div class="tc-sample-expl">{{.Explanation}}</div>{{end}}
</div>
{{end}}
</div>
<div class="prob-notice">{{.Notice}}</div>
{{else}}
<div class="placeholder">Select a task from the list.</div>
{{end}}
{{end}}

{{define "contest-editor"}}
{{with .Editor}}
<div class="editor-bar">
<select name="language" data-change="/contest/language" {{if not .Enabled}}disabled{{end}}>
{{range .Languages}}<option value="{{.ID}}" {{if .Selected}}selected{{end}}>{{.Name}}</option>{{end}}
</select>
<span class="muted editor-file">{{.File}}</span>
</div>
<textarea class="editor" spellcheck="false" data-code="/contest/code" data-revision="{{.Revision}}" data-language="{{.MonacoID}}" {{if not .Enabled}}readonly{{end}}>{{.Code}}</textarea>
{{end}}
{{end}}

{{define "contest-buttons"}}
<button class="secondary" data-action="/contest/run" {{if not .Buttons.RunEnabled}}disabled{{end}}>{{.Buttons.RunText}}</button>
<button class="primary" data-action="/contest/submit" {{if not .Buttons.SubmitEnabled}}disabled{{end}}>{{.Buttons.SubmitText}}</button>
<span class="muted">{{.Autosave}}</span>
{{end}}

{{define "contest-output"}}
{{with .Output}}
<div class="output-panel" style="height: {{.Height}}px">
<div class="tabs">
<button class="tab{{if eq .Tab "testcases"}} active{{end}}" data-event='{"type":"tab","tab":"testcases"}'>Test cases</button>
<button class="tab{{if eq .Tab "raw"}} active{{end}}" data-event='{"type":"tab","tab":"raw"}'>Raw</button>
</div>
<div class="output-content">
{{if .Notice}}<div class="out-line {{.NoticeClass}}">{{if .Spinner}}<span class="spinner"></span>{{end}}{{.Notice}}</div>{{end}}
{{if .Banner}}<div class="out-line banner {{.BannerClass}}">{{.Banner}}</div>{{end}}
{{if eq .Tab "raw"}}<pre>{{.Raw}}</pre>{{else}}
{{range .Results}}
<div class="tc-result">
<div class="tc-status">{{if .Passed}}✅{{else}}❌{{end}}</div>
<div class="tc-details">
<div class="tc-label">{{.Label}}</div>
<div class="tc-val"><span>Expected:</span> {{.Expected}}</div>
<div class="tc-val"><span>Got:</span> <span class="{{if .Passed}}tc-got-pass{{else}}tc-got-fail{{end}}">{{.Got}}</span></div>
{{if .Explanation}}<div class="tc-explain">{{.Explanation}}</div>{{end}}
</div>
</div>
{{end}}
{{end}}
</div>
</div>
{{end}}
{{end}}

{{define "contest-timer"}}
<span class="timer {{.Timer.Class}}">{{.Timer.Text}}</span>
{{if .EndButton}}<button class="danger visible" data-action="/contest/end-modal">End Test</button>{{end}}
{{end}}

{{define "contest-overlay"}}
<div class="tab-warning{{if .Warning.Shown}} show{{end}}" data-focus="{{.Focus}}">
<h2>⚠ Stay on this page</h2>
<p>Leaving the contest window is recorded.</p>
<p class="warn-count">{{.Warning.Text}}</p>
<button class="primary" data-event='{"type":"dismiss_warning"}'>Back to the task</button>
</div>
{{if .EndModalOpen}}
<div class="modal open"><div class="modal-box">
<h2>End your test?</h2>
<p>Your code will be saved and you will not be able to come back.</p>
<button class="secondary" data-action="/contest/end-modal/close">Cancel</button>
<button class="danger" data-action="/contest/end">End Test</button>
</div></div>
{{end}}
{{if .TimesUp.Open}}
<div class="modal open"><div class="modal-box">
<h2>Time's up</h2>
<p>{{.TimesUp.Text}}</p>
<button class="danger" data-action="/contest/force-end">Submit &amp; Exit</button>
</div></div>
{{end}}
{{end}}

{{define "contest-page"}}{{template "head" .}}
<div class="ide" data-contest>
<header class="bar">
<h1>The Skeld</h1>
<div data-fragment="/contest/fragments/timer">{{template "contest-timer" .Screen}}</div>
</header>
<aside class="sidebar" data-fragment="/contest/fragments/sidebar">{{template "contest-sidebar" .Screen}}</aside>
<section class="problem-panel" data-fragment="/contest/fragments/problem">{{template "contest-problem" .Screen}}</section>
<section class="editor-panel">
<div data-fragment="/contest/fragments/editor">{{template "contest-editor" .Screen}}</div>
{{if .EditorURL}}<div class="editor-host" data-monaco="{{.EditorURL}}" hidden></div>{{end}}
<div class="run-bar" data-fragment="/contest/fragments/buttons">{{template "contest-buttons" .Screen}}</div>
<div class="resize-handle" data-resize="/contest/events"></div>
<div data-fragment="/contest/fragments/output">{{template "contest-output" .Screen}}</div>
</section>
</div>
<div data-fragment="/contest/fragments/overlay">{{template "contest-overlay" .Screen}}</div>
{{template "foot" .}}{{end}}
`

const endedTmpl = `
{{define "ended-page"}}{{template "head" .}}
<main class="card narrow">
<h1>Test ended</h1>
<p>Your code has been saved. You may close this window.</p>
</main>
{{template "foot" .}}{{end}}
`

// pageData is what every full page template receives.
type pageData struct {
	Title  string
	Stream string
	Screen any

	EditorURL string

	ConfirmStart string
	ConfirmStop  string
}

func parseTemplates(funcs template.FuncMap) *template.Template {
	t := template.New("portal").Funcs(funcs)
	for _, src := range []string{layoutTmpl, registerTmpl, loginTmpl, adminTmpl, contestTmpl, endedTmpl} {
		template.Must(t.Parse(src))
	}
	return t
}

type renderer struct {
	tmpl *template.Template
}

func (r *renderer) execute(w io.Writer, name string, data any) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}
