package binding

import (
	"strings"
)

// Participant 是参赛成员，SeqNo 决定姓名拼接顺序。
type Participant struct {
	SeqNo int    `json:"seq_no"`
	Name  string `json:"participant_name"`
}

// Record 是渲染时只读的领域记录。
type Record interface {
	Participants() []Participant
	// Field 按字段名取值，字段不存在时 ok=false。
	Field(name string) (value any, ok bool)
}

// Application 是一条获奖申报记录。
type Application struct {
	MatchNo        string         `json:"match_no"`
	Members        []Participant  `json:"participants"`
	SchoolName     string         `json:"school_name"`
	Category       string         `json:"category"`
	Task           string         `json:"task"`
	AwardLevel     string         `json:"award_level"`
	EducationLevel string         `json:"education_level"`
	TeacherName    string         `json:"teacher_name"`
	ContactName    string         `json:"contact_name"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// Participants implements Record.
func (a *Application) Participants() []Participant { return a.Members }

// Field implements Record.
func (a *Application) Field(name string) (any, bool) {
	switch name {
	case "match_no":
		return a.MatchNo, true
	case "school_name":
		return a.SchoolName, true
	case "category":
		return a.Category, true
	case "task":
		return a.Task, true
	case "award_level":
		return a.AwardLevel, true
	case "education_level":
		return a.EducationLevel, true
	case "teacher_name":
		return a.TeacherName, true
	case "contact_name":
		return a.ContactName, true
	case "participant_count":
		return len(a.Members), true
	}
	if v, ok := a.Extra[name]; ok {
		return v, true
	}
	if strings.ContainsAny(name, ".[") {
		return lookupPath(a.Extra, name)
	}
	return nil, false
}

// MapRecord 把任意 JSON 对象当作记录使用，字段名支持 a.b[0] 形式的路径。
// participants 键应为 [{seq_no, participant_name}] 数组。
type MapRecord map[string]any

// Participants implements Record.
func (m MapRecord) Participants() []Participant {
	list, _ := m["participants"].([]any)
	out := make([]Participant, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p := Participant{Name: Text(obj["participant_name"])}
		if p.Name == "" {
			p.Name = Text(obj["name"])
		}
		switch n := obj["seq_no"].(type) {
		case float64:
			p.SeqNo = int(n)
		case int:
			p.SeqNo = n
		}
		out = append(out, p)
	}
	return out
}

// Field implements Record.
func (m MapRecord) Field(name string) (any, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	if strings.ContainsAny(name, ".[") {
		return lookupPath(map[string]any(m), name)
	}
	return nil, false
}
