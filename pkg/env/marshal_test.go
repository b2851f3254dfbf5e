package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settings struct {
	Token    string        `env:"APP_TOKEN,required,notEmpty"`
	From     string        `env:"APP_FROM"`
	Enabled  bool          `env:"APP_ENABLED"`
	Queue    int           `env:"APP_QUEUE"`
	Delay    time.Duration `env:"APP_DELAY"`
	Tags     []string      `env:"APP_TAGS"`
	Untagged string
	hidden   string `env:"APP_HIDDEN"`
}

func TestMarshalEnv(t *testing.T) {
	tests := []struct {
		name string
		in   settings
		want string
	}{
		{
			name: "zero values are omitted",
			in:   settings{},
			want: "",
		},
		{
			name: "field order and formatting",
			in: settings{
				Token:    "123:abc",
				Enabled:  true,
				Queue:    4,
				Delay:    1500 * time.Millisecond,
				Tags:     []string{"go", "sqlite"},
				Untagged: "skip",
				hidden:   "skip",
			},
			want: "APP_TOKEN=123:abc\nAPP_ENABLED=true\nAPP_QUEUE=4\nAPP_DELAY=1.5s\nAPP_TAGS=go,sqlite\n",
		},
		{
			name: "spaces are quoted",
			in:   settings{From: "Folio <onboarding@resend.dev>"},
			want: "APP_FROM=\"Folio <onboarding@resend.dev>\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalEnv(&tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarshalEnv_RoundTripsThroughGodotenv(t *testing.T) {
	in := settings{Token: "t#1", From: `Ada "The Countess" <ada@example.com>`}
	content, err := MarshalEnv(&in)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	got, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, in.Token, got["APP_TOKEN"])
	assert.Equal(t, in.From, got["APP_FROM"])
}

func TestMarshalEnv_RejectsNonStruct(t *testing.T) {
	_, err := MarshalEnv(settings{})
	assert.Error(t, err)

	n := 1
	_, err = MarshalEnv(&n)
	assert.Error(t, err)
}
