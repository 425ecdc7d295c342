package mailer

import (
	"context"
	"testing"

	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/pkg/config"
)

func TestNewSelectsProvider(t *testing.T) {
	_, isLog := New(config.MailConfig{Provider: "sendgrid"}, "School", zap.NewNop()).(*LogMailer)
	assert.True(t, isLog, "sendgrid without key falls back to log mailer")

	_, isSendGrid := New(config.MailConfig{Provider: "sendgrid", SendGridAPIKey: "SG.key"}, "School", nil).(*SendGridMailer)
	assert.True(t, isSendGrid)
}

func TestSendGridMailerBuildsPersonalisedMessage(t *testing.T) {
	m := NewSendGridMailer("SG.key", "Kenya CBC", "School Portal", "no-reply@school.ke")
	var captured *sgmail.SGMailV3
	m.deliver = func(msg *sgmail.SGMailV3) (int, string, error) {
		captured = msg
		return 202, "", nil
	}

	err := m.Send(context.Background(), Message{ToName: "Amina", ToEmail: "amina@school.ke", Subject: "Verify", Text: "click"})
	require.NoError(t, err)
	require.NotNil(t, captured)
	require.Len(t, captured.Personalizations, 1)
	assert.Equal(t, "[Kenya CBC] Verify", captured.Personalizations[0].Subject)
	assert.Equal(t, "amina@school.ke", captured.Personalizations[0].To[0].Address)
	assert.Equal(t, "no-reply@school.ke", captured.From.Address)
	require.Len(t, captured.Content, 1)
}

func TestSendGridMailerSurfacesRejectedStatus(t *testing.T) {
	m := NewSendGridMailer("SG.key", "", "School Portal", "no-reply@school.ke")
	m.deliver = func(*sgmail.SGMailV3) (int, string, error) {
		return 401, `{"errors":[{"message":"bad key"}]}`, nil
	}

	err := m.Send(context.Background(), Message{ToEmail: "amina@school.ke", Subject: "Verify"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestSendGridMailerRequiresRecipient(t *testing.T) {
	m := NewSendGridMailer("SG.key", "", "School Portal", "no-reply@school.ke")
	assert.Error(t, m.Send(context.Background(), Message{Subject: "Verify"}))
}
