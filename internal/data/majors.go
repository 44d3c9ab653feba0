// Package data provides static data definitions for the application.
// These tables feed the record generator and are maintained by hand.
package data

// Course is a catalog course offering with its credit hours.
type Course struct {
	Code  string // e.g., "CS 1428"
	Name  string
	Hours int
}

// Major is one valid (major, college, program) combination.
// Prefix keys the major-specific course pool in MajorCourses.
type Major struct {
	Name    string
	College string
	Program string
	Prefix  string
}

// DefaultUniversityName is used when no university name is configured.
const DefaultUniversityName = "Hachimi University"

// DefaultUniversityLogo is the static logo shipped with the preview page.
const DefaultUniversityLogo = "/university-logo.png"

// AllMajors contains every valid major triple. Majors are always drawn as a whole
// entry; name, college and program are never mixed across entries.
var AllMajors = []Major{
	{"Computer Science", "College of Science and Engineering", "Bachelor of Science", "CS"},
	{"Business Administration", "McCoy College of Business", "Bachelor of Business Admin", "BA"},
	{"Psychology", "College of Liberal Arts", "Bachelor of Arts", "PSY"},
	{"Biology", "College of Science and Engineering", "Bachelor of Science", "BIO"},
	{"Marketing", "McCoy College of Business", "Bachelor of Business Admin", "MKT"},
}

// CommonCourses is the shared general-education pool.
var CommonCourses = []Course{
	{"ENG 1310", "College Writing I", 3},
	{"ENG 1320", "College Writing II", 3},
	{"HIST 1310", "History of US to 1877", 3},
	{"POSI 2310", "Principles of American Govt", 3},
	{"COMM 1310", "Fund. of Human Communication", 3},
	{"PHIL 1305", "Philosophy & Critical Thinking", 3},
	{"ART 2313", "Introduction to Fine Arts", 3},
}

// MajorCourses maps a major prefix to its course pool.
var MajorCourses = map[string][]Course{
	"CS": {
		{"CS 1428", "Foundations of Computer Science I", 4},
		{"CS 2308", "Foundations of Computer Science II", 3},
		{"CS 3358", "Data Structures", 3},
		{"MATH 2471", "Calculus I", 4},
		{"MATH 2358", "Discrete Mathematics I", 3},
	},
	"BA": {
		{"MGT 3303", "Management of Organizations", 3},
		{"MKT 3343", "Principles of Marketing", 3},
		{"ACC 2361", "Intro to Financial Accounting", 3},
		{"ECO 2314", "Principles of Microeconomics", 3},
		{"FIN 3312", "Business Finance", 3},
	},
	"PSY": {
		{"PSY 1300", "Introduction to Psychology", 3},
		{"PSY 3300", "Lifespan Development", 3},
		{"PSY 3322", "Brain and Behavior", 3},
		{"SOC 1310", "Introduction to Sociology", 3},
		{"PSY 3341", "Cognitive Processes", 3},
	},
	"BIO": {
		{"BIO 1330", "Functional Biology", 3},
		{"BIO 1130", "Functional Biology Lab", 1},
		{"CHEM 1341", "General Chemistry I", 3},
		{"CHEM 1141", "General Chemistry I Lab", 1},
		{"BIO 2450", "Genetics", 4},
	},
	"MKT": {
		{"MKT 3350", "Consumer Behavior", 3},
		{"MKT 3358", "Professional Selling", 3},
		{"MKT 4330", "Promotional Strategy", 3},
		{"BLAW 2361", "Legal Environment of Business", 3},
		{"QMST 2333", "Business Statistics", 3},
	},
}

// majorIndex is a lookup map for O(1) major retrieval by name.
// Initialized lazily on first FindMajor call.
var majorIndex map[string]Major

// FindMajor returns the catalog entry for a major name.
func FindMajor(name string) (Major, bool) {
	if majorIndex == nil {
		idx := make(map[string]Major, len(AllMajors))
		for _, m := range AllMajors {
			idx[m.Name] = m
		}
		majorIndex = idx
	}
	m, ok := majorIndex[name]
	return m, ok
}
