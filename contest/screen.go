package contest

import "github.com/programme-lv/contest-portal/anticheat"

const (
	TabTestCases = "testcases"
	TabRaw       = "raw"
)

// Screen is the contest IDE as a whole.
type Screen struct {
	Sidebar []SidebarItem
	Problem *ProblemView // nil until a problem is selected
	Editor  EditorView
	Output  OutputView
	Buttons ButtonsView
	Timer   TimerView

	EndButton    bool
	EndModalOpen bool
	TimesUp      TimesUpView
	Warning      anticheat.Warning
	Autosave     string

	// Focus bumps whenever the page should grab focus and fullscreen again.
	Focus uint64
}

type SidebarItem struct {
	ID       int
	Number   string
	Title    string
	Subtitle string
	Solved   bool
	Active   bool
}

type ProblemView struct {
	ID       int
	Title    string
	Subtitle string

	// Description and Constraints are backend-authored HTML.
	Description string
	Constraints string

	InputFormat  string
	OutputFormat string
	Samples      []SampleView
	Notice       string
}

type SampleView struct {
	Label       string
	Input       string
	Expected    string
	Explanation string
}

type EditorView struct {
	// Revision changes only when the controller replaces the buffer, so
	// the browser keeps its own edits between revisions.
	Revision  uint64
	Code      string
	Language  string
	MonacoID  string
	File      string
	Languages []LangOption
	Enabled   bool
}

type LangOption struct {
	ID       string
	Name     string
	Selected bool
}

type OutputView struct {
	Tab string

	Notice      string
	NoticeClass string // info, success or error
	Spinner     bool

	Banner      string
	BannerClass string
	Results     []ResultRow
	Raw         string

	Height int
}

type ResultRow struct {
	Label       string
	Passed      bool
	Expected    string
	Got         string
	Explanation string
}

type ButtonsView struct {
	RunText       string
	SubmitText    string
	RunEnabled    bool
	SubmitEnabled bool
}

type TimerView struct {
	Started bool
	Text    string
	Class   string
}

type TimesUpView struct {
	Open   bool
	Text   string
	Reason string
}
