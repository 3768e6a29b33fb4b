// Package planglist lists the programming languages the contest editor
// offers.
package planglist

import "slices"

type ProgrammingLang struct {
	ID          string // the value sent to the backend
	FullName    string
	MonacoID    string
	ProblemFile string // file name the editor shows
}

var langs = []ProgrammingLang{
	{ID: "python", FullName: "Python 3", MonacoID: "python", ProblemFile: "solution.py"},
	{ID: "cpp", FullName: "C++17", MonacoID: "cpp", ProblemFile: "solution.cpp"},
	{ID: "c", FullName: "C", MonacoID: "c", ProblemFile: "solution.c"},
	{ID: "java", FullName: "Java", MonacoID: "java", ProblemFile: "Solution.java"},
}

const Default = "python"

// ListProgrammingLanguages returns the languages in menu order.
func ListProgrammingLanguages() []ProgrammingLang {
	return slices.Clone(langs)
}

// Restrict keeps the languages whose ids are listed, in menu order. An empty
// list keeps all of them.
func Restrict(ids []string) []ProgrammingLang {
	if len(ids) == 0 {
		return ListProgrammingLanguages()
	}
	var out []ProgrammingLang
	for _, l := range langs {
		if slices.Contains(ids, l.ID) {
			out = append(out, l)
		}
	}
	return out
}

func GetProgrammingLanguageById(id string) (*ProgrammingLang, error) {
	for _, l := range langs {
		if l.ID == id {
			l := l
			return &l, nil
		}
	}
	return nil, ErrInvalidProgLang()
}

// MonacoID maps a language id to the editor's language mode; unknown ids get
// plain text.
func MonacoID(id string) string {
	if l, err := GetProgrammingLanguageById(id); err == nil {
		return l.MonacoID
	}
	return "plaintext"
}

// ProblemFile is the file name shown above the editor for a language.
func ProblemFile(id string) string {
	if l, err := GetProgrammingLanguageById(id); err == nil {
		return l.ProblemFile
	}
	return "solution.txt"
}
