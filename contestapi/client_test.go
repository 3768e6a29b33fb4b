package contestapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/programme-lv/contest-portal/contestapi"
	"github.com/programme-lv/contest-portal/srvcerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, mux *http.ServeMux) *contestapi.Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client, err := contestapi.New(srv.URL+"/", contestapi.WithTimeout(2*time.Second))
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestContestStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/contest_status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"active":      true,
			"start_time":  "2026-10-18T09:00:00.000000+00:00",
			"duration":    3600,
			"force_ended": false,
		})
	})
	client := newBackend(t, mux)

	status, err := client.ContestStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.Equal(t, time.Hour, status.DurationValue())
	start, ok := status.Started()
	require.True(t, ok)
	assert.Equal(t, 9, start.Hour())
}

func TestParticipantsDecodeSQLiteFlags(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/participants", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"name":"Ada","college":"MIT","system_number":"S1","phone":"1","solved_count":2,"submitted":0},
			{"id":2,"name":"Bob","college":"CMU","system_number":"S2","phone":"2","solved_count":6,"submitted":1,"submit_time":null}
		]`))
	})
	client := newBackend(t, mux)

	ps, err := client.Participants(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.False(t, bool(ps[0].Submitted))
	assert.True(t, bool(ps[1].Submitted))
	assert.Equal(t, 6, ps[1].SolvedCount)
}

func TestListEndpointReportsBackendError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	})
	client := newBackend(t, mux)

	_, err := client.Leaderboard(context.Background())
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeBackendError))
	assert.Equal(t, "Unauthorized", err.Error())
}

func TestActionEndpointDecodesFailureBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if body.Password == "secret" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "admin", Path: "/"})
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Wrong password"})
	})
	mux.HandleFunc("/api/admin/stop_contest", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session")
		if err != nil || c.Value != "admin" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	client := newBackend(t, mux)
	ctx := context.Background()

	res, err := client.AdminLogin(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Wrong password", res.Error)

	res, err = client.StopContest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Unauthorized", res.Error)

	res, err = client.AdminLogin(ctx, "secret")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = client.StopContest(ctx)
	require.NoError(t, err)
	assert.True(t, res.Success, "session cookie is replayed")
}

func TestSubmitSendsActiveSeconds(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/submit", func(w http.ResponseWriter, r *http.Request) {
		var req contestapi.SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 4, req.ProblemID)
		assert.Equal(t, "cpp", req.Language)
		assert.InDelta(t, 42.5, req.ActiveSeconds, 0.001)
		writeJSON(w, http.StatusOK, map[string]any{
			"all_passed": true,
			"results":    []map[string]any{{"passed": true, "expected": "RESULT:1", "got": "1"}},
		})
	})
	client := newBackend(t, mux)

	res, err := client.Submit(context.Background(), contestapi.SubmitRequest{
		ProblemID: 4, Language: "cpp", Code: "int f(){}", ActiveSeconds: 42.5,
	})
	require.NoError(t, err)
	assert.True(t, res.AllPassed)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "1", res.Results[0].Got)
}

func TestMalformedAndUnreachable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/problems", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	})
	client := newBackend(t, mux)

	_, err := client.Problems(context.Background())
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeMalformedResponse))

	dead, err := contestapi.New("http://127.0.0.1:1", contestapi.WithTimeout(time.Second))
	require.NoError(t, err)
	_, err = dead.Solved(context.Background())
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNetworkError))
}

func TestFlagDecoding(t *testing.T) {
	var v struct {
		A contestapi.Flag `json:"a"`
		B contestapi.Flag `json:"b"`
		C contestapi.Flag `json:"c"`
		D contestapi.Flag `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":true,"b":1,"c":0,"d":null}`), &v))
	assert.True(t, bool(v.A))
	assert.True(t, bool(v.B))
	assert.False(t, bool(v.C))
	assert.False(t, bool(v.D))

	assert.Error(t, json.Unmarshal([]byte(`{"a":"yes"}`), &v))
}
