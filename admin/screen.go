package admin

// Screen is the whole admin dashboard. Every render replaces the previous
// snapshot; slices are never mutated after they were handed to a renderer.
type Screen struct {
	Status StatusView
	Stats  StatsView

	Participants      []ParticipantRow
	ParticipantsEmpty string

	Leaderboard      []LeaderboardRow
	LeaderboardEmpty string

	Modal ModalView
}

type StatusView struct {
	Live    bool
	Text    string
	Started string // empty until the backend reports a start time
}

type StatsView struct {
	Total     int
	Submitted int
	Active    int
	AvgSolved string
}

type ParticipantRow struct {
	Number       int
	ID           int
	Name         string
	College      string
	SystemNumber string
	Phone        string
	Solved       string
	Submitted    bool
}

// CanEnd reports whether the End Test action is offered for the row.
func (r ParticipantRow) CanEnd() bool {
	return !r.Submitted
}

type LeaderboardRow struct {
	Symbol       string
	Class        string
	Name         string
	College      string
	SystemNumber string
	Solved       string
	Time         string
	Wrong        string
	HasWrong     bool
}

type ModalView struct {
	Open    bool
	Title   string
	Loading bool
	Message string // "Loading...", "No submissions yet." or an error
	Cards   []SubmissionCard
}

type SubmissionCard struct {
	ProblemName   string
	Language      string
	Solved        bool
	SolvedText    string
	TimeTaken     string
	WrongAttempts int
	TotalAttempts int
	LastSaved     string
	Code          string
}
