package mailer

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/matcornic/hermes/v2"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var product = hermes.Hermes{
	Product: hermes.Product{
		Name:      "Conduit",
		Link:      appURL(),
		Copyright: "Copyright © Conduit. All rights reserved.",
	},
}

func appURL() string {
	if url := os.Getenv("APP_URL"); url != "" {
		return url
	}
	return "http://localhost:3000"
}

// SendResetPassword mails a password reset link built from the one-time token.
func SendResetPassword(toEmail, token string) error {
	link := fmt.Sprintf("%s/password/reset?token=%s", appURL(), token)

	body := hermes.Email{
		Body: hermes.Body{
			Intros: []string{
				"You have received this email because a password reset request for your account was received.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to reset your password:",
					Button: hermes.Button{
						Color: "#DC4D2F",
						Text:  "Reset your password",
						Link:  link,
					},
				},
			},
			Outros: []string{
				"If you did not request a password reset, no further action is required on your part.",
			},
		},
	}
	return send(toEmail, "Reset your Conduit password", body)
}

// SendInvite mails an invitation with a sign-up link carrying the token.
func SendInvite(toEmail, inviterName, token string) error {
	link := fmt.Sprintf("%s/register?invite=%s", appURL(), token)

	body := hermes.Email{
		Body: hermes.Body{
			Intros: []string{
				fmt.Sprintf("%s has invited you to join Conduit.", inviterName),
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to create your account:",
					Button: hermes.Button{
						Color: "#22BC66",
						Text:  "Join Conduit",
						Link:  link,
					},
				},
			},
			Outros: []string{
				"The invitation expires in seven days.",
			},
		},
	}
	return send(toEmail, fmt.Sprintf("%s invited you to Conduit", inviterName), body)
}

func send(toEmail, subject string, body hermes.Email) error {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return errors.New("SENDGRID_API_KEY not set")
	}

	htmlBody, err := product.GenerateHTML(body)
	if err != nil {
		return err
	}
	textBody, err := product.GeneratePlainText(body)
	if err != nil {
		return err
	}

	from := mail.NewEmail("Conduit", fromAddress())
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, textBody, htmlBody)

	response, err := sendgrid.NewSendClient(apiKey).Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected the message: %d %s", response.StatusCode, response.Body)
	}
	return nil
}

func fromAddress() string {
	if from := os.Getenv("SENDGRID_FROM"); from != "" {
		return from
	}
	return "no-reply@conduit.local"
}
