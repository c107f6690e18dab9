// Package profile provisions the Messenger page: webhook subscription,
// messenger profile (greeting, get started, persistent menu), personas,
// built-in NLP and domain whitelisting. It is driven by the /profile
// setup route, typically hit once per deployment.
package profile

import (
	"context"
	"fmt"

	"github.com/garyellow/coast-messenger-go/internal/bot/care"
	"github.com/garyellow/coast-messenger-go/internal/bot/curation"
	"github.com/garyellow/coast-messenger-go/internal/bot/order"
	"github.com/garyellow/coast-messenger-go/internal/graph"
	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/logger"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
	"github.com/garyellow/coast-messenger-go/internal/persona"
)

// Setup modes accepted by Run.
const (
	ModeWebhook  = "webhook"
	ModeProfile  = "profile"
	ModePersonas = "personas"
	ModeNLP      = "nlp"
	ModeDomains  = "domains"
	ModeAll      = "all"
)

// GraphAPI is the slice of the Graph client used for page provisioning.
// *graph.Client satisfies this.
type GraphAPI interface {
	SetSubscription(ctx context.Context, callbackURL, verifyToken string) error
	SubscribeApp(ctx context.Context) error
	SetMessengerProfile(ctx context.Context, payload any) error
	ListPersonas(ctx context.Context) ([]graph.Persona, error)
	CreatePersona(ctx context.Context, name, pictureURL string) (string, error)
	EnableBuiltinNLP(ctx context.Context) error
}

// threadSettings is the me/messenger_profile payload. Only the fields
// being set are serialized.
type threadSettings struct {
	GetStarted         *getStarted         `json:"get_started,omitempty"`
	Greeting           []localizedGreeting `json:"greeting,omitempty"`
	PersistentMenu     []persistentMenu    `json:"persistent_menu,omitempty"`
	WhitelistedDomains []string            `json:"whitelisted_domains,omitempty"`
}

type getStarted struct {
	Payload string `json:"payload"`
}

type localizedGreeting struct {
	Locale string `json:"locale"`
	Text   string `json:"text"`
}

type persistentMenu struct {
	Locale                string             `json:"locale"`
	ComposerInputDisabled bool               `json:"composer_input_disabled"`
	CallToActions         []messenger.Button `json:"call_to_actions"`
}

// Config holds the dependencies for a Setup.
type Config struct {
	API        GraphAPI
	Translator *i18n.Translator
	Cache      *Cache
	Logger     *logger.Logger

	AppURL      string
	ShopURL     string
	VerifyToken string
}

// Setup runs page provisioning steps against the Graph API.
type Setup struct {
	api   GraphAPI
	tr    *i18n.Translator
	cache *Cache
	log   *logger.Logger

	appURL      string
	shopURL     string
	verifyToken string
}

// New creates a Setup.
func New(cfg Config) *Setup {
	return &Setup{
		api:         cfg.API,
		tr:          cfg.Translator,
		cache:       cfg.Cache,
		log:         cfg.Logger.WithModule("profile"),
		appURL:      cfg.AppURL,
		shopURL:     cfg.ShopURL,
		verifyToken: cfg.VerifyToken,
	}
}

// Run executes the provisioning steps for mode and returns one status
// line per completed step. ModeAll runs every step in order; the first
// failure stops the run, with the lines completed so far returned
// alongside the error.
func (s *Setup) Run(ctx context.Context, mode string) ([]string, error) {
	type step struct {
		mode string
		fn   func(context.Context) (string, error)
	}
	steps := []step{
		{ModeWebhook, s.setWebhook},
		{ModeProfile, s.setThread},
		{ModePersonas, s.setPersonas},
		{ModeNLP, s.enableNLP},
		{ModeDomains, s.setDomains},
	}

	var lines []string
	matched := false
	for _, st := range steps {
		if mode != ModeAll && mode != st.mode {
			continue
		}
		matched = true

		line, err := st.fn(ctx)
		if err != nil {
			s.log.WithField("mode", st.mode).WithError(err).Error("Profile setup step failed")
			return lines, fmt.Errorf("%s setup failed: %w", st.mode, err)
		}
		s.log.WithField("mode", st.mode).Info("Profile setup step completed")
		lines = append(lines, line)
	}

	if !matched {
		return nil, fmt.Errorf("unknown setup mode %q", mode)
	}
	return lines, nil
}

// setWebhook points the page subscription at this deployment's webhook
// endpoint and subscribes the app to the page's messaging fields.
func (s *Setup) setWebhook(ctx context.Context) (string, error) {
	if err := s.api.SetSubscription(ctx, s.appURL+"/webhook", s.verifyToken); err != nil {
		return "", err
	}
	if err := s.api.SubscribeApp(ctx); err != nil {
		return "", err
	}
	return "✅ Webhook subscription set", nil
}

// setThread applies the greeting, get-started button and persistent
// menu in a single messenger profile call. The greeting relies on the
// platform's {{user_first_name}} placeholder since no profile is
// available before the conversation starts.
func (s *Setup) setThread(ctx context.Context) (string, error) {
	locale := s.tr.Locale()
	greetingLocale := locale
	if locale == i18n.DefaultLocale {
		greetingLocale = "default"
	}

	payload := threadSettings{
		GetStarted: &getStarted{Payload: "GET_STARTED"},
		Greeting: []localizedGreeting{
			{
				Locale: greetingLocale,
				Text:   s.tr.Get("profile.greeting", map[string]string{"userFirstName": "{{user_first_name}}"}),
			},
		},
		PersistentMenu: []persistentMenu{
			{
				Locale:                greetingLocale,
				ComposerInputDisabled: false,
				CallToActions: []messenger.Button{
					{Type: "postback", Title: s.tr.T("menu.order"), Payload: order.PayloadTrack},
					{Type: "postback", Title: s.tr.T("menu.help"), Payload: care.PayloadHelp},
					{Type: "postback", Title: s.tr.T("menu.suggestion"), Payload: curation.PayloadCuration},
					{Type: "web_url", Title: s.tr.T("menu.shop"), URL: s.shopURL, WebviewHeightRatio: "full"},
				},
			},
		},
	}

	if err := s.api.SetMessengerProfile(ctx, payload); err != nil {
		return "", err
	}
	return "✅ Messenger profile set", nil
}

// setPersonas registers any missing personas from the default catalog
// and fills the cache with their page-assigned ids. Personas already
// registered under the same name are reused, so reruns are idempotent.
func (s *Setup) setPersonas(ctx context.Context) (string, error) {
	existing, err := s.api.ListPersonas(ctx)
	if err != nil {
		return "", err
	}

	byName := make(map[string]string, len(existing))
	for _, p := range existing {
		byName[p.Name] = p.ID
	}

	created := 0
	for _, p := range persona.Defaults(s.appURL) {
		id, ok := byName[p.Name]
		if !ok {
			id, err = s.api.CreatePersona(ctx, p.Name, p.ProfilePictureURL)
			if err != nil {
				return "", err
			}
			created++
		}
		p.ID = id
		s.cache.Put(p)
	}

	return fmt.Sprintf("✅ Personas ready (%d created)", created), nil
}

func (s *Setup) enableNLP(ctx context.Context) (string, error) {
	if err := s.api.EnableBuiltinNLP(ctx); err != nil {
		return "", err
	}
	return "✅ Built-in NLP enabled", nil
}

// setDomains whitelists the app and shop domains so webviews and the
// chat plugin can load them.
func (s *Setup) setDomains(ctx context.Context) (string, error) {
	payload := threadSettings{
		WhitelistedDomains: []string{s.appURL, s.shopURL},
	}
	if err := s.api.SetMessengerProfile(ctx, payload); err != nil {
		return "", err
	}
	return "✅ Domains whitelisted", nil
}
