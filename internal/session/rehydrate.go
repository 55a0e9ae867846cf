package session

// Rehydrate 整理刚加载的会话，每次加载在 Migrate 之后、其他转换之前运行一次。
//
// 已完成的会话会被规整并重发完成同步，以防之前的写入没有落地；
// 题目全部答完但缺少完成标记的会话标记为完成；
// 其余未完成的会话停在欢迎回来提示，活动时间刷新为当前时间，
// 之后的 Resume 只扣除从此刻起的时间
func (m *Machine) Rehydrate(s State) (State, []Effect) {
	if len(s.Questions) == 0 {
		return s, nil
	}

	if s.IsCompleted {
		n, _, _ := m.MarkCompleted(s)
		n, effects, _ := m.SyncCompleted(n)
		return n, effects
	}

	if !s.IsActive && s.CurrentQuestionIndex >= len(s.Questions) {
		n, _, _ := m.MarkCompleted(s)
		return n, nil
	}

	if s.CurrentQuestionIndex < len(s.Questions) {
		n := s.Clone()
		n.IsActive = false
		n.ShowPauseModal = false
		n.ShowWelcomeBackModal = true
		n.LastActivityTime = m.stamp()
		return n, nil
	}
	return s, nil
}
