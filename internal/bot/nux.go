package bot

import (
	"github.com/garyellow/coast-messenger-go/internal/bot/care"
	"github.com/garyellow/coast-messenger-go/internal/bot/curation"
	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
	"github.com/garyellow/coast-messenger-go/internal/user"
)

// NuxMessages is the new-user onboarding sequence: a personal welcome,
// the help hint, and the entry-point menu.
func NuxMessages(tr *i18n.Translator, u *user.User) []*messenger.Message {
	welcome := messenger.NewText(tr.Get("get_started.welcome",
		map[string]string{"userFirstName": u.FirstName}))

	guidance := messenger.NewText(tr.T("get_started.guidance"))

	menu := messenger.NewQuickReply(tr.T("get_started.help"),
		[]messenger.QuickReplyOption{
			{Title: tr.T("menu.suggestion"), Payload: curation.PayloadCuration},
			{Title: tr.T("menu.help"), Payload: care.PayloadHelp},
			{Title: tr.T("menu.product_launch"), Payload: curation.PayloadProductLaunch},
		})

	return []*messenger.Message{welcome, guidance, menu}
}
