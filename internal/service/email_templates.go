package service

import "fmt"

// TemporaryPasswordEmail returns the subject and body of the password reset mail
func TemporaryPasswordEmail(appName, loginURL, loginID, tempPassword string) (string, string) {
	subject := fmt.Sprintf("[%s] Temporary password", appName)
	body := fmt.Sprintf(`Hello %s,

A password reset was requested for your account. Your temporary password is:

    %s

Sign in at %s and change it from your account page.

If you didn't request this, contact us right away.

Best,
The %s Team`, loginID, tempPassword, loginURL, appName)

	return subject, body
}

// LoginIDEmail returns the subject and body of the ID reminder mail
func LoginIDEmail(appName, loginURL, loginID string) (string, string) {
	subject := fmt.Sprintf("[%s] Your ID", appName)
	body := fmt.Sprintf(`Hello,

The ID registered with this email address is:

    %s

You can sign in at %s

Best,
The %s Team`, loginID, loginURL, appName)

	return subject, body
}
