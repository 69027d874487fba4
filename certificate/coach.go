package certificate

import (
	"strings"

	"github.com/ByLCY/certkit/binding"
	"github.com/ByLCY/certkit/template"
)

// CoachAward 是辅导员证书固定显示的获奖级别。
const CoachAward = template.CoachAwardText

// PrepareCoach 返回用于辅导员证书的记录副本：获奖级别改为“优秀辅导员”，
// 赛别去掉末尾的“赛”字（模板中已印有该字）。
func PrepareCoach(app *binding.Application) *binding.Application {
	if app == nil {
		return nil
	}
	c := *app
	c.Members = append([]binding.Participant(nil), app.Members...)
	c.AwardLevel = CoachAward
	c.Category = strings.TrimSuffix(c.Category, "赛")
	return &c
}

var unsafeFilenameChars = strings.NewReplacer(
	`\`, "_", "/", "_", ":", "_", "*", "_", "?", "_", `"`, "_",
	"<", "_", ">", "_", "|", "_", "\n", "_", "\r", "_", "\t", "_",
)

// SafeFilenamePart 替换文件名中不允许的字符，空值返回 "NA"。
func SafeFilenamePart(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return "NA"
	}
	return unsafeFilenameChars.Replace(s)
}

// ArtifactName 返回证书文件名。选手证书：编号_姓名_赛别_组别_奖项.pdf；
// 辅导员证书：编号_教师_赛别_优秀辅导员.pdf。
func ArtifactName(app *binding.Application, kind template.StampKind) string {
	if kind == template.KindCoach {
		return strings.Join([]string{
			SafeFilenamePart(app.MatchNo),
			SafeFilenamePart(app.TeacherName),
			SafeFilenamePart(app.Category),
			CoachAward,
		}, "_") + ".pdf"
	}
	return strings.Join([]string{
		SafeFilenamePart(app.MatchNo),
		SafeFilenamePart(binding.JoinNames(app.Members)),
		SafeFilenamePart(app.Category),
		SafeFilenamePart(app.EducationLevel),
		SafeFilenamePart(app.AwardLevel),
	}, "_") + ".pdf"
}
