package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talent-allocator/internal/models"
)

func fixedExtractor() *ProfileExtractor {
	return &ProfileExtractor{now: func() time.Time {
		return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	}}
}

const englishResume = `Ada Lovelace
Email: ada@example.com | Phone: +44 20 7946 0958
Date of Birth: 1990-12-10
Gender: Female

Objective: Data Engineer

Summary
Analytical engineer who enjoys   building data
pipelines.

Skills
Expert in Python and SQL; familiar with Docker.
Go, Kafka

Experience
Senior Data Engineer, Analytical Engines Ltd, 2018-2024
Built streaming pipelines

Education
University of London, B.Sc Mathematics, 2008-2012
`

const chineseResume = `个人简历
基本信息
姓名：张伟
性别：男
出生日期：1998年05月20日
手机：138-1234-5678
邮箱：zhangwei@example.cn
求职意向：数据工程师
【教育背景】
2016.09-2020.06 北京大学 软件工程 本科
【技能】
熟练掌握 Python、MySQL，了解 Docker
【自我评价】
热爱技术，学习能力强。
`

func TestExtractEnglishResume(t *testing.T) {
	p := fixedExtractor().Extract(englishResume)

	assert.Equal(t, "Ada Lovelace", p.Name)
	assert.True(t, p.NameFound)
	assert.Equal(t, "female", p.Gender)
	assert.Equal(t, "1990-12-10", p.BirthDate)
	require.NotNil(t, p.Age)
	assert.Equal(t, 33, *p.Age)
	assert.Equal(t, "+442079460958", p.Phone)
	assert.Equal(t, "ada@example.com", p.Email)
	assert.Equal(t, "Data Engineer", p.Objective)
	assert.Equal(t, "Analytical engineer who enjoys building data pipelines.", p.SelfEvaluation)

	assert.Equal(t, []string{"Go", "Python", "SQL", "Kafka", "Docker"}, p.SkillNames())
	assert.Equal(t, "intermediate", p.Skills[0].Level)
	assert.Equal(t, "advanced", p.Skills[1].Level)

	require.Len(t, p.Education, 1)
	assert.Equal(t, models.Education{School: "University of London", Degree: "Bachelor", Major: "Mathematics"}, p.Education[0])

	assert.Equal(t, []string{"Senior Data Engineer, Analytical Engines Ltd, 2018-2024", "Built streaming pipelines"}, p.WorkExperience)
	assert.Equal(t, 100, p.ExtractionQuality)
}

func TestExtractChineseResume(t *testing.T) {
	p := fixedExtractor().Extract(chineseResume)

	assert.Equal(t, "张伟", p.Name)
	assert.Equal(t, "male", p.Gender)
	assert.Equal(t, "1998-05-20", p.BirthDate)
	require.NotNil(t, p.Age)
	assert.Equal(t, 26, *p.Age)
	assert.Equal(t, "13812345678", p.Phone)
	assert.Equal(t, "zhangwei@example.cn", p.Email)
	assert.Equal(t, "数据工程师", p.Objective)
	assert.Contains(t, p.SelfEvaluation, "热爱技术")

	assert.Equal(t, []string{"Python", "MySQL", "Docker"}, p.SkillNames())
	for _, s := range p.Skills {
		assert.Equal(t, "advanced", s.Level, s.Name)
	}

	require.Len(t, p.Education, 1)
	assert.Equal(t, "北京大学", p.Education[0].School)
	assert.Equal(t, "Bachelor", p.Education[0].Degree)
	assert.Equal(t, "Software Engineering", p.Education[0].Major)
	assert.Equal(t, 100, p.ExtractionQuality)
}

func TestExtractSafeDefaults(t *testing.T) {
	inputs := map[string]string{
		"empty":   "",
		"garbage": "\xff\xfe%%%%\x00",
		"digits":  "12345 67890\n--- Page 1 ---\n2020",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			p := fixedExtractor().Extract(input)
			assert.Equal(t, DefaultCandidateName, p.Name)
			assert.False(t, p.NameFound)
			assert.Equal(t, qualityNameMissing, p.ExtractionQuality)
			assert.NotNil(t, p.Skills)
			assert.NotNil(t, p.Education)
			assert.NotNil(t, p.WorkExperience)
			assert.Nil(t, p.Age)
		})
	}
}

func TestExtractNormalizesCompatibilityForms(t *testing.T) {
	// U+2F63 is the Kangxi radical form PDF extraction often yields instead of 生.
	p := fixedExtractor().Extract("姓名：李娜\n出\u2f63日期：2000/01/02\n")
	assert.Equal(t, "李娜", p.Name)
	assert.Equal(t, "2000-01-02", p.BirthDate)
}

func TestExtractQuality(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "name only", text: "Name: Bob Stone\n", want: 60},
		{name: "name and contact", text: "Name: Bob Stone\nbob@example.org\n", want: 70},
		{name: "name contact skills", text: "Name: Bob Stone\nbob@example.org\nSkills: Rust\n", want: 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fixedExtractor().Extract(tt.text).ExtractionQuality)
		})
	}
}

func TestExtractLabelledAge(t *testing.T) {
	p := fixedExtractor().Extract("Name: Kim Lee\nAge: 29\n")
	require.NotNil(t, p.Age)
	assert.Equal(t, 29, *p.Age)
	assert.Empty(t, p.BirthDate)
}

func TestExtractEmailsDeduplicated(t *testing.T) {
	p := fixedExtractor().Extract("Name: Kim Lee\nkim@a.io, KIM@a.io; lee@b.org.\n")
	assert.Equal(t, "kim@a.io, lee@b.org", p.Email)
}

func TestSplitSections(t *testing.T) {
	sections := splitSections("Skills: Go\nRust\nProjects\nA thing\nEducation:\nMIT")
	assert.Equal(t, "Go\nRust", sections[sectionSkills])
	assert.Equal(t, "MIT", sections[sectionEducation])
	_, hasOther := sections[sectionOther]
	assert.False(t, hasOther)
}
