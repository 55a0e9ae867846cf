package util

import (
	"regexp"
	"strings"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	dangerousChars    = regexp.MustCompile(`[<>'"&]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeText 去除 HTML 标签与危险字符，折叠空白，并截断到 MaxInputLength 个字符
func SanitizeText(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = dangerousChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
	return Truncate(s, MaxInputLength)
}

// SanitizeAnswer 在 SanitizeText 基础上截断到 MaxAnswerLength
func SanitizeAnswer(input string) string {
	return Truncate(SanitizeText(input), MaxAnswerLength)
}

func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

var nonDigits = regexp.MustCompile(`\D`)

// DigitsOnly 电话号码输入只保留数字
func DigitsOnly(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}
