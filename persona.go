package analyst

import (
	"fmt"
	"strings"
)

// Persona selects the assistant's fixed system instruction.
type Persona string

const (
	PersonaAnalyst   Persona = "analyst"
	PersonaTimetable Persona = "timetable"
	PersonaSurvey    Persona = "survey"
)

// DefaultPersona is active in a fresh session.
const DefaultPersona = PersonaAnalyst

type personaSpec struct {
	title       string
	instruction string
}

var personaSpecs = map[Persona]personaSpec{
	PersonaAnalyst: {
		title: "Data Analyst",
		instruction: "You are an expert data analyst and academic research assistant. " +
			"You can read and analyze files attached to the conversation, including CSV, PDF, TXT and images. " +
			"Excel uploads are converted to CSV before they reach you; treat the CSV as the original data file. " +
			"Never claim that you cannot read files: analyze the attached data and answer questions about it clearly.",
	},
	PersonaTimetable: {
		title: "Timetable Builder",
		instruction: "You are a senior Python engineer specialised in constraint-satisfaction scheduling. " +
			"Help build a school timetable from the course and lecturer-availability spreadsheets the user provides, " +
			"using pandas. Treat availability as a strict whitelist and never schedule two lessons of the same cohort in parallel.",
	},
	PersonaSurvey: {
		title: "Availability Survey",
		instruction: "You help collect lecturer availability. Ask the user for the academic year and the number of semesters, " +
			"then produce an updated Google Apps Script that builds the availability form for those inputs.",
	},
}

// Personas lists every persona in display order.
func Personas() []Persona {
	return []Persona{PersonaAnalyst, PersonaTimetable, PersonaSurvey}
}

// ParsePersona accepts a persona name case-insensitively.
func ParsePersona(s string) (Persona, error) {
	p := Persona(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPersona, s)
	}
	return p, nil
}

func (p Persona) Valid() bool {
	_, ok := personaSpecs[p]
	return ok
}

func (p Persona) Title() string { return personaSpecs[p].title }

// Instruction is the system instruction used when the persona's
// conversation is created.
func (p Persona) Instruction() string { return personaSpecs[p].instruction }

func (p Persona) String() string { return string(p) }
