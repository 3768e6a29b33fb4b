package adminlogin_test

import (
	"context"
	"testing"

	"github.com/programme-lv/contest-portal/adminlogin"
	"github.com/programme-lv/contest-portal/contestapi"
	"github.com/programme-lv/contest-portal/page"
	"github.com/programme-lv/contest-portal/srvcerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	res   contestapi.ActionResult
	err   error
	calls []string
}

func (f *fakeAPI) AdminLogin(_ context.Context, pw string) (contestapi.ActionResult, error) {
	f.calls = append(f.calls, pw)
	return f.res, f.err
}

func newForm(api *fakeAPI) (*adminlogin.Form, *page.Holder[adminlogin.Screen], *page.Redirect) {
	h := page.NewHolder(adminlogin.Screen{})
	nav := &page.Redirect{}
	return adminlogin.New(api, h, nav), h, nav
}

func TestEmptyPasswordSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	f, h, nav := newForm(api)

	require.NoError(t, f.Submit(context.Background(), ""))
	s, _ := h.Latest()
	assert.Equal(t, adminlogin.TextPasswordRequired, s.Error)
	assert.Empty(t, api.calls)
	assert.Empty(t, nav.Take())
}

func TestSuccessNavigatesToDashboard(t *testing.T) {
	api := &fakeAPI{res: contestapi.ActionResult{Success: true}}
	f, h, nav := newForm(api)

	require.NoError(t, f.Submit(context.Background(), "hunter2"))
	assert.Equal(t, []string{"hunter2"}, api.calls)
	assert.Equal(t, adminlogin.DashboardPath, nav.Take())
	s, gen := h.Latest()
	assert.Empty(t, s.Error)
	assert.Equal(t, uint64(2), gen, "busy then cleared")
}

func TestServerErrorIsShownVerbatim(t *testing.T) {
	f, h, nav := newForm(&fakeAPI{res: contestapi.ActionResult{Error: "Invalid password"}})

	require.NoError(t, f.Submit(context.Background(), "x"))
	s, _ := h.Latest()
	assert.Equal(t, "Invalid password", s.Error)
	assert.False(t, s.Busy)
	assert.Empty(t, nav.Take())
}

func TestFailureWithoutMessage(t *testing.T) {
	f, _, _ := newForm(&fakeAPI{})

	require.NoError(t, f.Submit(context.Background(), "x"))
	assert.Equal(t, adminlogin.TextLoginFailed, f.Snapshot().Error)
}

func TestNetworkError(t *testing.T) {
	f, _, _ := newForm(&fakeAPI{err: srvcerror.ErrNetwork()})

	assert.Error(t, f.Submit(context.Background(), "x"))
	assert.Equal(t, adminlogin.TextNetworkError, f.Snapshot().Error)
}
