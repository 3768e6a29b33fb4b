package portalhttp

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/programme-lv/contest-portal/admin"
	"github.com/programme-lv/contest-portal/adminlogin"
	"github.com/programme-lv/contest-portal/contest"
	"github.com/programme-lv/contest-portal/register"
)

// fragment is a piece of a page that the browser swaps in place. Key
// decides whether the browser copy is current; without it the rendered
// HTML is hashed.
type fragment[S any] struct {
	path string
	tmpl string
	key  func(S) string
}

type renderedFragment struct {
	HTML string `json:"html"`
	Key  string `json:"key"`
}

var registerFragments = []fragment[register.Screen]{
	{path: "/register/status", tmpl: "register-status"},
}

var loginFragments = []fragment[adminlogin.Screen]{
	{path: "/admin/login/error", tmpl: "login-error"},
}

var adminFragments = []fragment[admin.Screen]{
	{path: "/admin/fragments/status", tmpl: "admin-status"},
	{path: "/admin/fragments/stats", tmpl: "admin-stats"},
	{path: "/admin/fragments/participants", tmpl: "admin-participants"},
	{path: "/admin/fragments/leaderboard", tmpl: "admin-leaderboard"},
	{path: "/admin/fragments/modal", tmpl: "admin-modal"},
}

var contestFragments = []fragment[contest.Screen]{
	{path: "/contest/fragments/sidebar", tmpl: "contest-sidebar"},
	{path: "/contest/fragments/problem", tmpl: "contest-problem"},
	{path: "/contest/fragments/editor", tmpl: "contest-editor", key: editorKey},
	{path: "/contest/fragments/buttons", tmpl: "contest-buttons"},
	{path: "/contest/fragments/output", tmpl: "contest-output"},
	{path: "/contest/fragments/timer", tmpl: "contest-timer"},
	{path: "/contest/fragments/overlay", tmpl: "contest-overlay"},
}

// The editor is replaced only when the controller swapped the buffer;
// typed code lives in the browser until then.
func editorKey(s contest.Screen) string {
	return fmt.Sprintf("r%d-%s-%t", s.Editor.Revision, s.Editor.Language, s.Editor.Enabled)
}

func findFragment[S any](frags []fragment[S], path string) (fragment[S], bool) {
	for _, f := range frags {
		if f.path == path {
			return f, true
		}
	}
	return fragment[S]{}, false
}

func renderFragment[S any](r *renderer, f fragment[S], s S) (renderedFragment, error) {
	var buf bytes.Buffer
	if err := r.execute(&buf, f.tmpl, s); err != nil {
		return renderedFragment{}, fmt.Errorf("render %s failed: %w", f.tmpl, err)
	}
	out := renderedFragment{HTML: buf.String()}
	if f.key != nil {
		out.Key = f.key(s)
	} else {
		h := fnv.New64a()
		h.Write(buf.Bytes())
		out.Key = strconv.FormatUint(h.Sum64(), 36)
	}
	return out, nil
}

func renderFragments[S any](r *renderer, frags []fragment[S], s S) (map[string]renderedFragment, error) {
	out := make(map[string]renderedFragment, len(frags))
	for _, f := range frags {
		rf, err := renderFragment(r, f, s)
		if err != nil {
			return nil, err
		}
		out[f.path] = rf
	}
	return out, nil
}

// changedFragments keeps only the fragments whose key differs from seen,
// and records the new keys in seen.
func changedFragments(all map[string]renderedFragment, seen map[string]string) map[string]renderedFragment {
	out := make(map[string]renderedFragment)
	for path, f := range all {
		if seen[path] == f.Key {
			continue
		}
		seen[path] = f.Key
		out[path] = f
	}
	return out
}
