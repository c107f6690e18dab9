// Package survey builds the agent-rating prompt sent after a persona
// conversation and acknowledges satisfaction feedback.
package survey

import (
	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
)

const (
	PayloadAgentGood = "SURVEY_AGENT_GOOD"
	PayloadAgentBad  = "SURVEY_AGENT_BAD"
)

// Handler builds survey responses.
type Handler struct {
	tr *i18n.Translator
}

// New creates a survey handler.
func New(tr *i18n.Translator) *Handler {
	return &Handler{tr: tr}
}

// AgentRating asks the user to rate the conversation they just had with
// the named agent persona.
func (h *Handler) AgentRating(agentFirstName string) *messenger.Message {
	return messenger.NewQuickReply(
		h.tr.Get("survey.prompt", map[string]string{"agentFirstName": agentFirstName}),
		[]messenger.QuickReplyOption{
			{Title: h.tr.T("survey.rating.good"), Payload: PayloadAgentGood},
			{Title: h.tr.T("survey.rating.bad"), Payload: PayloadAgentBad},
		},
	)
}

// HandlePayload acknowledges any CSAT payload. Ratings and free-form
// suggestions both land here; there is no branching on the outcome yet.
func (h *Handler) HandlePayload(string) []*messenger.Message {
	return []*messenger.Message{messenger.NewText(h.tr.T("survey.thanks"))}
}
