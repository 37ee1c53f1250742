package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"alfredoptarigan/talent-allocator/internal/models"
)

// DefaultCandidateName stands in when no name can be found.
const DefaultCandidateName = "Job Seeker"

const (
	qualityNameMissing = 50
	qualityBase        = 60
	qualityPerField    = 10

	selfEvaluationLimit = 200
	objectiveLimit      = 100
	workLineLimit       = 200
	maxWorkLines        = 10
	maxEducation        = 5

	defaultSkillLevel = "intermediate"
)

const (
	sectionSkills     = "skills"
	sectionEducation  = "education"
	sectionExperience = "experience"
	sectionSummary    = "summary"
	sectionObjective  = "objective"
	sectionOther      = "other"
)

var sectionHeaders = map[string]string{
	sectionSkills:     `technical skills|core skills|skills|个人能力|专业技能|技能特长|技能|技术栈`,
	sectionEducation:  `education|教育背景|教育经历`,
	sectionExperience: `work experience|professional experience|employment history|experience|工作经历|工作经验|实习经历`,
	sectionSummary:    `self[- ]evaluation|professional summary|summary|about me|个人陈述|自我评价|自我介绍|个人总结`,
	sectionObjective:  `career objective|job objective|objective|target position|desired position|applying for|求职意向|应聘职位|意向岗位`,
	sectionOther:      `projects|project experience|项目经历|awards|honors|获奖情况|获奖|certifications|证书|校园经历|languages|interests|hobbies|basic information|personal information|个人信息|基本信息|contact`,
}

var sectionPatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(sectionHeaders))
	for name, alts := range sectionHeaders {
		out[name] = regexp.MustCompile(`(?im)^[ \t]*(?:【(?:` + alts + `)】|(?:` + alts + `)[ \t]*(?:[:：]|$))[ \t]*`)
	}
	return out
}()

var (
	labelledName = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^[ \t]*(?:full name|name)[ \t]*[:：][ \t]*([^\n]+)$`),
		regexp.MustCompile(`姓\s*名[ \t]*[:：]?[ \t]*([^\s,，|]+)`),
		regexp.MustCompile(`名\s*字[ \t]*[:：][ \t]*([^\s,，|]+)`),
	}
	nameSeparator = regexp.MustCompile(`\s{2,}|\t|[|｜,，;；]`)
	titleLines    = regexp.MustCompile(`(?i)^(?:resume|résumé|curriculum vitae|cv|个人简历|简历)$`)
	basicInfoLine = regexp.MustCompile(`基本信息[^\n]*\n([^0-9\n]+)`)

	birthDatePattern = regexp.MustCompile(`(?i)(?:date of birth|birth ?date|birthday|dob|born|生日|出生日期|出生年月|出生)[ \t]*[:：]?[ \t]*(\d{4})[/\-.年](\d{1,2})(?:[/\-.月](\d{1,2}))?`)
	agePattern       = regexp.MustCompile(`(?i)(?:\bage|年龄|年齡)[ \t]*[:：][ \t]*(\d{1,2})`)

	labelledPhone = regexp.MustCompile(`(?i)(?:\b(?:phone|mobile|tel|cell)\b|电话|手机|联系方式)[ \t]*[:：]?[ \t]*(\+?[\d(][\d\- ()]{5,}\d)`)
	mobilePhone   = regexp.MustCompile(`(?:\+?86[- ]?)?1[3-9]\d[- ]?\d{4}[- ]?\d{4}`)

	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	genderPattern = regexp.MustCompile(`(?i)(?:gender|sex|性\s*别)[ \t]*[:：][ \t]*(female|male|woman|man|男|女)`)

	advancedLevel = regexp.MustCompile(`(?i)expert|advanced|proficient|精通|熟练`)
	basicLevel    = regexp.MustCompile(`(?i)basic|beginner|familiar with|了解`)

	schoolKeyword  = regexp.MustCompile(`(?i)university|college|institute|academy|school of|大学|学院|学校`)
	schoolSplitter = regexp.MustCompile(`[,，|｜\t;；]|\s{2,}|\s[-–—]\s`)
	labelledMajor  = regexp.MustCompile(`(?i)(?:major|专业)[ \t]*[:：][ \t]*([^\n,，|]+)`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

type keyword struct {
	name string
	re   *regexp.Regexp
}

func keywords(pairs ...string) []keyword {
	out := make([]keyword, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, keyword{name: pairs[i], re: regexp.MustCompile(pairs[i+1])})
	}
	return out
}

var skillCatalog = keywords(
	"Go", `\bGo\b|(?i:\bgolang\b)`,
	"Python", `(?i)\bpython\b`,
	"Java", `(?i)\bjava\b`,
	"JavaScript", `(?i:\bjavascript\b)|\bJS\b`,
	"TypeScript", `(?i)\btypescript\b`,
	"C++", `(?i)c\+\+|\bcpp\b`,
	"C#", `(?i)\bc#`,
	"Rust", `(?i)\brust\b`,
	"PHP", `(?i)\bphp\b`,
	"Kotlin", `(?i)\bkotlin\b`,
	"SQL", `(?i)\bsql\b`,
	"MySQL", `(?i)\bmysql\b`,
	"PostgreSQL", `(?i)\bpostgres(?:ql)?\b`,
	"MongoDB", `(?i)\bmongo(?:db)?\b`,
	"Redis", `(?i)\bredis\b`,
	"Kafka", `(?i)\bkafka\b`,
	"Docker", `(?i)\bdocker\b`,
	"Kubernetes", `(?i)\bkubernetes\b|\bk8s\b`,
	"Linux", `(?i)\blinux\b`,
	"Git", `(?i)\bgit\b`,
	"CI/CD", `(?i)\bci/cd\b|\bjenkins\b|github actions|gitlab ci`,
	"AWS", `\bAWS\b|(?i:amazon web services)`,
	"Terraform", `(?i)\bterraform\b`,
	"React", `(?i)\breact(?:\.js)?\b`,
	"Vue", `(?i)\bvue(?:\.js)?\b`,
	"Node.js", `(?i)\bnode(?:\.js)?\b`,
	"HTML/CSS", `(?i)\bhtml5?\b|\bcss3?\b`,
	"Spring", `(?i)\bspring(?: ?boot)?\b`,
	"Django", `(?i)\bdjango\b`,
	"Spark", `(?i)\bspark\b`,
	"Pandas", `(?i)\bpandas\b`,
	"PyTorch", `(?i)\bpytorch\b`,
	"TensorFlow", `(?i)\btensorflow\b`,
	"Machine Learning", `(?i)machine learning|机器学习`,
	"Deep Learning", `(?i)deep learning|深度学习`,
	"LLM", `(?i)\bllms?\b|大语言模型|大模型`,
	"Data Visualization", `(?i)data visuali[sz]ation|数据可视化|\btableau\b|power ?bi`,
)

var degreeCatalog = keywords(
	"PhD", `(?i)ph\.?d|doctor|博士`,
	"Master", `(?i)master|\bm\.?sc?\b|\bmba\b|硕士|研究生`,
	"Bachelor", `(?i)bachelor|\bb\.?sc?\b|\bb\.a\.|本科|学士`,
	"Associate", `(?i)associate|大专|专科`,
)

var majorCatalog = keywords(
	"Computer Science", `(?i)computer science|计算机`,
	"Software Engineering", `(?i)software engineering|软件工程|软件`,
	"Data Science", `(?i)data science|数据科学`,
	"Electrical Engineering", `(?i)electrical engineering|electronic|电子|电气`,
	"Information Systems", `(?i)information (?:systems|technology)|信息`,
	"Mathematics", `(?i)mathematics|\bmath\b|数学`,
	"Statistics", `(?i)statistics|统计`,
)

// ProfileExtractor builds a candidate profile from résumé text with fixed patterns only.
type ProfileExtractor struct {
	now func() time.Time
}

func NewProfileExtractor() *ProfileExtractor {
	return &ProfileExtractor{now: time.Now}
}

// Extract never fails. Fields that cannot be found keep their zero value,
// except the name which falls back to DefaultCandidateName.
func (e *ProfileExtractor) Extract(text string) models.CandidateProfile {
	text = normalizeText(text)
	sections := splitSections(text)

	profile := models.CandidateProfile{
		Skills:         []models.Skill{},
		Education:      []models.Education{},
		WorkExperience: []string{},
	}

	profile.Name, profile.NameFound = extractName(text)
	profile.Gender = extractGender(text)
	profile.BirthDate, profile.Age = e.extractAge(text)
	profile.Phone = extractPhone(text)
	profile.Email = extractEmails(text)

	skillScope := sections[sectionSkills]
	if skillScope == "" {
		skillScope = text
	}
	profile.Skills = extractSkills(skillScope)

	eduScope := sections[sectionEducation]
	if eduScope == "" {
		eduScope = text
	}
	profile.Education = extractEducation(eduScope)

	profile.WorkExperience = extractLines(sections[sectionExperience], maxWorkLines, workLineLimit)
	if lines := extractLines(sections[sectionObjective], 1, objectiveLimit); len(lines) > 0 {
		profile.Objective = lines[0]
	}
	profile.SelfEvaluation = truncateRunes(collapseSpace(sections[sectionSummary]), selfEvaluationLimit)

	profile.ExtractionQuality = extractionQuality(profile)
	return profile
}

func normalizeText(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = norm.NFKC.String(text)
	return strings.ReplaceAll(text, "\r\n", "\n")
}

func extractionQuality(p models.CandidateProfile) int {
	if !p.NameFound {
		return qualityNameMissing
	}

	score := qualityBase
	for _, present := range []bool{
		p.Phone != "" || p.Email != "",
		len(p.Skills) > 0,
		len(p.Education) > 0,
		p.SelfEvaluation != "",
	} {
		if present {
			score += qualityPerField
		}
	}
	return models.ClampScore(score)
}

type headerHit struct {
	section    string
	start, end int
}

// splitSections maps each known section to the text between its first header and the next header.
func splitSections(text string) map[string]string {
	var hits []headerHit
	for name, re := range sectionPatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			hits = append(hits, headerHit{section: name, start: loc[0], end: loc[1]})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].start == hits[j].start {
			return hits[i].end > hits[j].end
		}
		return hits[i].start < hits[j].start
	})

	sections := make(map[string]string)
	lastStart := -1
	for i, hit := range hits {
		if hit.start == lastStart {
			continue
		}
		lastStart = hit.start

		end := len(text)
		for _, next := range hits[i+1:] {
			if next.start >= hit.end {
				end = next.start
				break
			}
		}

		if _, seen := sections[hit.section]; !seen && hit.section != sectionOther {
			sections[hit.section] = strings.TrimSpace(text[hit.end:end])
		}
	}

	return sections
}

func extractName(text string) (string, bool) {
	for _, re := range labelledName {
		if m := re.FindStringSubmatch(text); m != nil {
			if name := cleanName(m[1]); name != "" {
				return name, true
			}
		}
	}

	if m := basicInfoLine.FindStringSubmatch(text); m != nil {
		for _, word := range strings.Fields(m[1]) {
			if looksLikeName(word) {
				return word, true
			}
		}
	}

	checked := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "---") || titleLines.MatchString(line) {
			continue
		}
		if looksLikeName(line) {
			return line, true
		}
		if checked++; checked >= 3 {
			break
		}
	}

	return DefaultCandidateName, false
}

func cleanName(raw string) string {
	name := strings.TrimSpace(nameSeparator.Split(strings.TrimSpace(raw), 2)[0])
	if n := len([]rune(name)); n == 0 || n > 50 {
		return ""
	}
	return name
}

func looksLikeName(s string) bool {
	runes := []rune(s)
	if len(runes) < 2 || len(runes) > 40 || len(strings.Fields(s)) > 4 {
		return false
	}
	for _, r := range runes {
		if unicode.IsLetter(r) || r == ' ' || r == '.' || r == '-' || r == '\'' || r == '·' {
			continue
		}
		return false
	}
	for _, re := range sectionPatterns {
		if re.MatchString(s) {
			return false
		}
	}
	return true
}

func extractGender(text string) string {
	m := genderPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	switch strings.ToLower(m[1]) {
	case "male", "man", "男":
		return "male"
	default:
		return "female"
	}
}

func (e *ProfileExtractor) extractAge(text string) (string, *int) {
	now := e.now()

	if m := birthDatePattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day := 1
		if m[3] != "" {
			day, _ = strconv.Atoi(m[3])
		}

		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			age := now.Year() - birth.Year()
			if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
				age--
			}
			date := birth.Format("2006-01-02")
			if plausibleAge(age) {
				return date, &age
			}
			return date, nil
		}
	}

	if m := agePattern.FindStringSubmatch(text); m != nil {
		age, _ := strconv.Atoi(m[1])
		if plausibleAge(age) {
			return "", &age
		}
	}

	return "", nil
}

func plausibleAge(age int) bool {
	return age >= 14 && age <= 80
}

func extractPhone(text string) string {
	if m := labelledPhone.FindStringSubmatch(text); m != nil {
		if phone := normalizePhone(m[1]); phone != "" {
			return phone
		}
	}
	if m := mobilePhone.FindString(text); m != "" {
		return normalizePhone(m)
	}
	return ""
}

func normalizePhone(raw string) string {
	var b strings.Builder
	digits := 0
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	if digits < 7 {
		return ""
	}
	return b.String()
}

func extractEmails(text string) string {
	seen := make(map[string]bool)
	var emails []string
	for _, email := range emailPattern.FindAllString(text, -1) {
		email = strings.TrimRight(email, ".")
		key := strings.ToLower(email)
		if seen[key] {
			continue
		}
		seen[key] = true
		emails = append(emails, email)
	}
	return strings.Join(emails, ", ")
}

func extractSkills(scope string) []models.Skill {
	skills := []models.Skill{}
	for _, kw := range skillCatalog {
		loc := kw.re.FindStringIndex(scope)
		if loc == nil {
			continue
		}
		skills = append(skills, models.Skill{Name: kw.name, Level: skillLevel(lineAround(scope, loc[0]))})
	}
	return skills
}

func skillLevel(line string) string {
	switch {
	case advancedLevel.MatchString(line):
		return "advanced"
	case basicLevel.MatchString(line):
		return "basic"
	default:
		return defaultSkillLevel
	}
}

func lineAround(text string, at int) string {
	start := strings.LastIndex(text[:at], "\n") + 1
	end := strings.Index(text[at:], "\n")
	if end < 0 {
		return text[start:]
	}
	return text[start : at+end]
}

func extractEducation(scope string) []models.Education {
	entries := []models.Education{}
	seen := make(map[string]bool)

	for _, line := range strings.Split(scope, "\n") {
		if !schoolKeyword.MatchString(line) {
			continue
		}

		school := schoolName(line)
		if school == "" || seen[school] {
			continue
		}
		seen[school] = true

		entries = append(entries, models.Education{
			School: school,
			Degree: firstKeyword(degreeCatalog, line, "Other"),
			Major:  majorOf(line),
		})

		if len(entries) == maxEducation {
			break
		}
	}

	return entries
}

func schoolName(line string) string {
	for _, segment := range schoolSplitter.Split(line, -1) {
		segment = strings.TrimSpace(segment)
		if !schoolKeyword.MatchString(segment) {
			continue
		}
		if strings.ContainsFunc(segment, isHan) && strings.Contains(segment, " ") {
			for _, token := range strings.Fields(segment) {
				if schoolKeyword.MatchString(token) {
					return token
				}
			}
		}
		return segment
	}
	return ""
}

func isHan(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

func majorOf(line string) string {
	if m := labelledMajor.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return firstKeyword(majorCatalog, line, "")
}

func firstKeyword(catalog []keyword, text, fallback string) string {
	for _, kw := range catalog {
		if kw.re.MatchString(text) {
			return kw.name
		}
	}
	return fallback
}

func extractLines(section string, limit, width int) []string {
	lines := []string{}
	for _, line := range strings.Split(section, "\n") {
		line = strings.Trim(collapseSpace(line), "•·-* ")
		if line == "" {
			continue
		}
		lines = append(lines, truncateRunes(line, width))
		if len(lines) == limit {
			break
		}
	}
	return lines
}

func collapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
