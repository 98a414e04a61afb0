// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/taibuivan/madhouse/internal/platform/mail"
)

const confirmSubject = "Confirm your subscription to MadHouse"

var confirmTemplate = template.Must(template.New("confirm").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
  <h2 style="color: #EB8014;">Confirm Your Subscription</h2>
  <p style="color: #333; line-height: 1.5;">
    Before we send you any emails, we need to confirm your subscription.
  </p>
  <a href="{{.URL}}"
    style="display:inline-block; background:#EB8014; color:white; padding:12px 24px; border-radius:6px; text-decoration:none; font-weight:bold;">
    Confirm Subscription
  </a>
  <p style="margin-top:20px; color:#666; font-size:14px;">
    If you did not subscribe to MadHouse Events, you can safely ignore this email.
  </p>
</div>`))

// confirmMessage renders the double opt-in email.
func confirmMessage(to, confirmURL string) mail.Message {
	var body bytes.Buffer
	_ = confirmTemplate.Execute(&body, struct{ URL string }{URL: confirmURL})

	return mail.Message{To: to, Subject: confirmSubject, HTML: body.String()}
}

var pageTemplate = template.Must(template.New("page").Parse(`<html>
  <head>
    <title>{{.Title}}</title>
    <style>
      body { margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #ffffff; display: flex; justify-content: center; align-items: center; height: 100vh; }
      .container { text-align: center; }
      h1 { font-size: 20px; color: rgb(16, 16, 16); margin-bottom: 16px; }
      a { font-size: 14px; color: rgba(0, 0, 0, 0.48); text-decoration: underline; }
    </style>
  </head>
  <body>
    <div class="container">
      <h1>{{.Heading}}</h1>
      <a href="{{.Link}}">{{.LinkText}}</a>
    </div>
  </body>
</html>`))

type page struct {
	Title    string
	Heading  string
	Link     string
	LinkText string
}

// renderPage executes the confirmation landing page.
func renderPage(content page) string {
	var body bytes.Buffer
	_ = pageTemplate.Execute(&body, content)
	return body.String()
}

// personalize substitutes the recipient placeholders. Values are escaped
// because they land inside admin-authored HTML.
func personalize(content string, contact *Contact) string {
	firstName := contact.FirstName
	if firstName == "" {
		firstName = "Subscriber"
	}

	return strings.NewReplacer(
		"{{firstname}}", html.EscapeString(firstName),
		"{{lastname}}", html.EscapeString(contact.LastName),
		"{{email}}", html.EscapeString(contact.Email),
	).Replace(content)
}
