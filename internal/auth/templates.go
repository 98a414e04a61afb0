// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"bytes"
	"html/template"
	"time"

	"github.com/taibuivan/madhouse/internal/platform/mail"
)

const otpSubject = "MadHouse Admin - Password Reset OTP"

var otpTemplate = template.Must(template.New("otp").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">MadHouse Account One Time Password</h2>
  <p>You have requested to reset your password. Please use the following OTP to proceed:</p>
  <div style="background-color: #f4f4f4; padding: 20px; text-align: center; margin: 20px 0;">
    <h1 style="color: #EB8014; font-size: 32px; letter-spacing: 8px; margin: 0;">{{.Code}}</h1>
  </div>
  <p><strong>This OTP is valid for {{.Minutes}} minutes only.</strong></p>
  <p>If you didn't request this password reset, please ignore this email.</p>
  <hr style="margin: 30px 0;">
  <p style="color: #666; font-size: 12px;">This is an automated message, please do not reply.</p>
</div>`))

// otpMessage renders the recovery email.
func otpMessage(to, code string, validity time.Duration) mail.Message {
	var body bytes.Buffer
	_ = otpTemplate.Execute(&body, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: int(validity / time.Minute)})

	return mail.Message{To: to, Subject: otpSubject, HTML: body.String()}
}
