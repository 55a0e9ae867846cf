package util

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldPhone = "phone"
)

var (
	emailPattern      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	fakeEmailPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^test@`),
		regexp.MustCompile(`^example@`),
		regexp.MustCompile(`^fake@`),
		regexp.MustCompile(`^dummy@`),
		regexp.MustCompile(`^sample@`),
		regexp.MustCompile(`@test\.com$`),
		regexp.MustCompile(`@fake\.com$`),
		regexp.MustCompile(`@dummy\.com$`),
		regexp.MustCompile(`@sample\.com$`),
		regexp.MustCompile(`@localhost`),
		regexp.MustCompile(`@\.`),
		regexp.MustCompile(`^[a-z]+@[a-z]+$`),
	}
	keyboardMashPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^[qwertyuiop]+@`),
		regexp.MustCompile(`(?i)^[asdfghjkl]+@`),
		regexp.MustCompile(`(?i)^[zxcvbnm]+@`),
		regexp.MustCompile(`(?i)^[qwerty]+@`),
		regexp.MustCompile(`(?i)^[uiop]+@`),
	}
	vowelPattern        = regexp.MustCompile(`(?i)[aeiou]`)
	longConsonantRun    = regexp.MustCompile(`(?i)[bcdfghjklmnpqrstvwxyz]{6,}`)
	emailSpecialPattern = regexp.MustCompile(`[._%+-]`)
	digitPattern        = regexp.MustCompile(`[0-9]`)

	allDigits    = regexp.MustCompile(`^[0-9]+$`)
	noLetters    = regexp.MustCompile(`^[^a-zA-Z\s]+$`)
	fakeNames    = regexp.MustCompile(`(?i)^(test|example|fake|dummy|sample)$`)
	nameSplitter = regexp.MustCompile(`\s+`)
)

const notRealEmail = "This doesn't look like a real email address. Please provide a valid email."

// ValidateEmail 校验邮箱格式并拒绝明显伪造的地址
func ValidateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return errors.New("Email address is required. Please provide a valid email.")
	}
	if !emailPattern.MatchString(trimmed) {
		return errors.New("Please enter a valid email address (e.g., john.doe@example.com)")
	}

	lower := strings.ToLower(trimmed)
	for _, p := range fakeEmailPatterns {
		if p.MatchString(lower) {
			return errors.New("Please provide a real email address, not a test or example email.")
		}
	}

	if !vowelPattern.MatchString(trimmed) && len(trimmed) > 6 {
		return errors.New("This doesn't look like a real email address. Please provide a valid email with proper formatting.")
	}
	for _, p := range keyboardMashPatterns {
		if p.MatchString(trimmed) {
			return errors.New(notRealEmail)
		}
	}
	if longConsonantRun.MatchString(trimmed) {
		return errors.New(notRealEmail)
	}

	specials := len(emailSpecialPattern.FindAllString(trimmed, -1))
	digits := len(digitPattern.FindAllString(trimmed, -1))
	if specials > 3 || float64(digits) > float64(len(trimmed))*0.7 {
		return errors.New(notRealEmail)
	}
	return nil
}

// ValidatePhone 只接受 10 到 15 位数字
func ValidatePhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return errors.New("Phone number is required. Please provide a valid phone number.")
	}
	if !allDigits.MatchString(phone) {
		return errors.New("Phone number should contain only numbers. Please enter digits only.")
	}
	if len(phone) < 10 {
		return errors.New("Phone number is too short. Please provide a complete phone number.")
	}
	if len(phone) > 15 {
		return errors.New("Phone number is too long. Please provide a valid phone number.")
	}
	if isRepeatedChar(phone) {
		return errors.New("This doesn't look like a real phone number. Please provide a valid phone number.")
	}
	return nil
}

// ValidateName 要求至少包含名和姓，每部分不少于 2 个字符
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("Name is required. Please provide your full name.")
	}
	if utf8.RuneCountInString(trimmed) < 3 {
		return errors.New("Name is too short. Please provide your full name.")
	}
	if allDigits.MatchString(trimmed) || noLetters.MatchString(trimmed) ||
		isRepeatedChar(trimmed) || fakeNames.MatchString(trimmed) {
		return errors.New("Please provide your real name, not a test or example name.")
	}

	parts := nameSplitter.Split(trimmed, -1)
	if len(parts) < 2 {
		return errors.New("Please provide your full name (first and last name).")
	}
	for _, part := range parts {
		if utf8.RuneCountInString(part) < 2 {
			return errors.New("Each part of your name should be at least 2 characters long.")
		}
	}
	return nil
}

// ValidateField 按字段名分派校验，未知字段直接通过
func ValidateField(field, value string) error {
	switch field {
	case FieldName:
		return ValidateName(value)
	case FieldEmail:
		return ValidateEmail(value)
	case FieldPhone:
		return ValidatePhone(value)
	}
	return nil
}

// RE2 没有反向引用，这里手动判断“同一字符重复”
func isRepeatedChar(s string) bool {
	if utf8.RuneCountInString(s) < 2 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	for _, r := range s {
		if r != first {
			return false
		}
	}
	return true
}
