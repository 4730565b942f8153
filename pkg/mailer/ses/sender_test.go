package ses

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailhelper/pkg/mailer"
)

type fakeClient struct {
	err   error
	input *sesv2.SendEmailInput
	calls int
}

func (f *fakeClient) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.calls++
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestSender_Send_Simple(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	s := NewWithClient(client, Config{ConfigurationSet: "transactional"})

	err := s.Send(context.Background(), &mailer.Email{
		To:      []string{"alice@example.com"},
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
		Text:    "Hi",
		Headers: []string{
			"From: Team <team@example.com>",
			"Reply-To: support@example.com",
			"CC: c@example.com",
			"BCC: b@example.com",
			"X-Campaign: spring",
		},
		Tags: mailer.Tags{"kind": "welcome"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, client.calls)

	in := client.input
	require.Equal(t, "Team <team@example.com>", aws.ToString(in.FromEmailAddress))
	require.Equal(t, []string{"alice@example.com"}, in.Destination.ToAddresses)
	require.Equal(t, []string{"c@example.com"}, in.Destination.CcAddresses)
	require.Equal(t, []string{"b@example.com"}, in.Destination.BccAddresses)
	require.Equal(t, []string{"support@example.com"}, in.ReplyToAddresses)
	require.Equal(t, "transactional", aws.ToString(in.ConfigurationSetName))

	require.NotNil(t, in.Content.Simple)
	require.Nil(t, in.Content.Raw)
	require.Equal(t, "Hello", aws.ToString(in.Content.Simple.Subject.Data))
	require.Equal(t, "<p>Hi</p>", aws.ToString(in.Content.Simple.Body.Html.Data))
	require.Equal(t, "Hi", aws.ToString(in.Content.Simple.Body.Text.Data))
	require.Equal(t, []types.MessageHeader{{Name: aws.String("X-Campaign"), Value: aws.String("spring")}}, in.Content.Simple.Headers)
	require.Equal(t, []types.MessageTag{{Name: aws.String("kind"), Value: aws.String("welcome")}}, in.EmailTags)
}

func TestSender_Send_TextOnly(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	s := NewWithClient(client, Config{SenderEmail: "team@example.com"})

	err := s.Send(context.Background(), &mailer.Email{
		To:      []string{"alice@example.com"},
		Subject: "Hello",
		Text:    "Hi",
	})
	require.NoError(t, err)

	in := client.input
	require.Equal(t, "team@example.com", aws.ToString(in.FromEmailAddress))
	require.Nil(t, in.Content.Simple.Body.Html)
	require.Nil(t, in.ReplyToAddresses)
	require.Nil(t, in.EmailTags)
}

func TestSender_Send_RawWithAttachments(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	s := NewWithClient(client, Config{})

	err := s.Send(context.Background(), &mailer.Email{
		From:    "team@example.com",
		To:      []string{"alice@example.com"},
		Subject: "Report",
		HTML:    "<p>Attached</p>",
		Attachments: []mailer.Attachment{
			{Filename: "report.txt", ContentType: "text/plain", Content: []byte("numbers")},
		},
	})
	require.NoError(t, err)

	in := client.input
	require.Nil(t, in.Content.Simple)
	require.NotNil(t, in.Content.Raw)
	require.Contains(t, string(in.Content.Raw.Data), "Subject: Report")
	require.Contains(t, string(in.Content.Raw.Data), "report.txt")
}

func TestSender_Send_NoSender(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	s := NewWithClient(client, Config{})

	err := s.Send(context.Background(), &mailer.Email{To: []string{"a@example.com"}, Subject: "S", Text: "T"})
	require.ErrorIs(t, err, ErrNoSender)
	require.Zero(t, client.calls)
}

func TestSender_Send_APIError(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: &smithy.GenericAPIError{Code: "MessageRejected", Message: "Email address is not verified."}}
	s := NewWithClient(client, Config{SenderEmail: "team@example.com"})

	err := s.Send(context.Background(), &mailer.Email{To: []string{"a@example.com"}, Subject: "S", Text: "T"})
	require.ErrorIs(t, err, ErrRejected)
	require.ErrorContains(t, err, "MessageRejected")
}

func TestSender_Send_TransportError(t *testing.T) {
	t.Parallel()

	netErr := errors.New("dial tcp: timeout")
	s := NewWithClient(&fakeClient{err: netErr}, Config{SenderEmail: "team@example.com"})

	err := s.Send(context.Background(), &mailer.Email{To: []string{"a@example.com"}, Subject: "S", Text: "T"})
	require.ErrorIs(t, err, netErr)
	require.NotErrorIs(t, err, ErrRejected)
}

func TestConvertTags(t *testing.T) {
	t.Parallel()

	tags := convertTags(mailer.SimpleTags("a"))
	require.Equal(t, []types.MessageTag{{Name: aws.String("a"), Value: aws.String("true")}}, tags)
	require.Nil(t, convertTags(nil))
}
