package installer

// Settings is the subset of configuration the wizard writes to .env.
type Settings struct {
	EnableTelegram bool   `env:"FOLIO_ENABLE_TELEGRAM"`
	TelegramToken  string `env:"FOLIO_TELEGRAM_TOKEN"`
	ResendAPIKey   string `env:"FOLIO_RESEND_API_KEY"`
	MailFrom       string `env:"FOLIO_MAIL_FROM"`
	MailTo         string `env:"FOLIO_MAIL_TO"`
	KnowledgePath  string `env:"FOLIO_KNOWLEDGE_PATH"`
	Debug          string `env:"FOLIO_DEBUG"`
}

type InstallState struct {
	Channel  string
	Settings Settings
}

func NewInstallState() *InstallState {
	return &InstallState{}
}
