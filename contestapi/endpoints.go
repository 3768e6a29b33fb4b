package contestapi

import (
	"context"
	"fmt"
)

func (c *Client) ContestStatus(ctx context.Context) (ContestStatus, error) {
	var s ContestStatus
	err := c.get(ctx, "/api/contest_status", &s)
	return s, err
}

// admin

func (c *Client) AdminLogin(ctx context.Context, password string) (ActionResult, error) {
	var res ActionResult
	err := c.post(ctx, "/admin/login", map[string]string{"password": password}, &res)
	return res, err
}

func (c *Client) Participants(ctx context.Context) ([]Participant, error) {
	var ps []Participant
	err := c.get(ctx, "/api/admin/participants", &ps)
	return ps, err
}

func (c *Client) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := c.get(ctx, "/api/admin/leaderboard", &entries)
	return entries, err
}

func (c *Client) ParticipantDetail(ctx context.Context, participantID int) ([]SubmissionDetail, error) {
	var subs []SubmissionDetail
	err := c.get(ctx, fmt.Sprintf("/api/admin/participant_detail/%d", participantID), &subs)
	return subs, err
}

func (c *Client) StartContest(ctx context.Context) (ActionResult, error) {
	var res ActionResult
	err := c.post(ctx, "/api/admin/start_contest", nil, &res)
	return res, err
}

func (c *Client) StopContest(ctx context.Context) (ActionResult, error) {
	var res ActionResult
	err := c.post(ctx, "/api/admin/stop_contest", nil, &res)
	return res, err
}

func (c *Client) EndParticipant(ctx context.Context, participantID int) (ActionResult, error) {
	var res ActionResult
	err := c.post(ctx, "/api/admin/end_participant", map[string]int{"participant_id": participantID}, &res)
	return res, err
}

// participant

func (c *Client) Register(ctx context.Context, r Registration) (ActionResult, error) {
	var res ActionResult
	err := c.post(ctx, "/register", r, &res)
	return res, err
}

func (c *Client) Problems(ctx context.Context) ([]Problem, error) {
	var ps []Problem
	err := c.get(ctx, "/api/problems", &ps)
	return ps, err
}

func (c *Client) Solved(ctx context.Context) ([]int, error) {
	var ids []int
	err := c.get(ctx, "/api/solved", &ids)
	return ids, err
}

// OpenProblem records that the participant opened a problem for the first
// time. The answer carries nothing the page needs.
func (c *Client) OpenProblem(ctx context.Context, problemID int) error {
	return c.post(ctx, "/api/open_problem", map[string]int{"problem_id": problemID}, nil)
}

func (c *Client) Run(ctx context.Context, req CodeRequest) (RunResult, error) {
	var res RunResult
	err := c.post(ctx, "/api/run", req, &res)
	return res, err
}

func (c *Client) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	var res SubmitResult
	err := c.post(ctx, "/api/submit", req, &res)
	return res, err
}

func (c *Client) SaveCode(ctx context.Context, req CodeRequest) error {
	var ack struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	return c.post(ctx, "/api/save_code", req, &ack)
}

func (c *Client) EndTest(ctx context.Context) (ActionResult, error) {
	var res ActionResult
	err := c.post(ctx, "/api/end_test", struct{}{}, &res)
	return res, err
}
