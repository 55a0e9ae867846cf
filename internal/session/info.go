package session

import (
	"interview_backend/internal/model"
	"interview_backend/internal/util"
)

var infoFieldOrder = []string{util.FieldName, util.FieldEmail, util.FieldPhone}

// BeginInfoCollection 用简历字段预填联系信息。缺失或校验失败的字段在对话中逐个询问；
// 没有缺失时直接保存候选人信息，会话即可开始
func (m *Machine) BeginInfoCollection(s State, data model.ResumeData) (State, []Effect, error) {
	if len(s.Questions) > 0 || s.CollectingInfo {
		return s, nil, ErrSessionInProgress
	}
	if s.CandidateInfo != nil {
		return s, nil, nil
	}

	n := s.Clone()
	n.InfoDraft = model.CandidateInfo{
		Name:       util.SanitizeText(data.Name),
		Email:      util.SanitizeText(data.Email),
		Phone:      util.DigitsOnly(data.Phone),
		ResumeText: data.Text,
		ResumeURL:  data.URL,
	}

	var missing []string
	for _, field := range infoFieldOrder {
		if v := draftValue(n.InfoDraft, field); v == "" || util.ValidateField(field, v) != nil {
			setDraftValue(&n.InfoDraft, field, "")
			missing = append(missing, field)
		}
	}

	if len(missing) == 0 {
		return m.completeInfo(n)
	}

	n.CollectingInfo = true
	n.PendingFields = missing
	m.botMessage(&n, "welcome", infoIntroMessage)
	m.askField(&n)
	return n, nil, nil
}

// ProvideInfo 回答当前询问的字段，值无效时在对话中提示并继续询问同一字段
func (m *Machine) ProvideInfo(s State, value string) (State, []Effect, error) {
	if !s.CollectingInfo || len(s.PendingFields) == 0 {
		return s, nil, ErrNotCollectingInfo
	}
	n := s.Clone()
	field := n.PendingFields[0]

	v := util.SanitizeText(value)
	if field == util.FieldPhone {
		v = util.DigitsOnly(v)
	}
	content := v
	if content == "" {
		content = noAnswerText
	}
	n.ChatHistory = append(n.ChatHistory, model.ChatMessage{
		ID:        m.newID("answer"),
		Type:      model.MessageUser,
		Content:   content,
		Timestamp: m.stamp(),
	})

	if err := util.ValidateField(field, v); err != nil {
		m.botMessage(&n, "error-"+field, err.Error()+" Please try again.")
		return n, nil, nil
	}

	setDraftValue(&n.InfoDraft, field, v)
	n.PendingFields = n.PendingFields[1:]
	if len(n.PendingFields) > 0 {
		m.askField(&n)
		return n, nil, nil
	}
	return m.completeInfo(n)
}

// ReadyToStart 联系信息齐全且尚未加载题目
func ReadyToStart(s State) bool {
	return s.CandidateInfo != nil && !s.CollectingInfo && len(s.Questions) == 0 && !s.IsCompleted
}

func (m *Machine) completeInfo(n State) (State, []Effect, error) {
	n, _, err := m.SetCandidateInfo(n, n.InfoDraft)
	if err != nil {
		return n, nil, err
	}
	n.CollectingInfo = false
	n.PendingFields = nil
	m.botMessage(&n, "interview-start", interviewStartText)
	return n, nil, nil
}

func (m *Machine) askField(n *State) {
	field := n.PendingFields[0]
	m.botMessage(n, "ask-"+field, fieldPrompts[field])
}

func (m *Machine) botMessage(n *State, prefix, content string) {
	n.ChatHistory = append(n.ChatHistory, model.ChatMessage{
		ID:        m.newID(prefix),
		Type:      model.MessageBot,
		Content:   content,
		Timestamp: m.stamp(),
	})
}

func draftValue(info model.CandidateInfo, field string) string {
	switch field {
	case util.FieldName:
		return info.Name
	case util.FieldEmail:
		return info.Email
	case util.FieldPhone:
		return info.Phone
	}
	return ""
}

func setDraftValue(info *model.CandidateInfo, field, v string) {
	switch field {
	case util.FieldName:
		info.Name = v
	case util.FieldEmail:
		info.Email = v
	case util.FieldPhone:
		info.Phone = v
	}
}
