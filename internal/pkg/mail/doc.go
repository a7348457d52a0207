// Package mail sends provider-rendered template emails.
//
// Callers build a TemplateMessage naming a template stored at the provider
// plus the merge variables it expects; the Mailer implementation performs the
// single API call. Mandrill's messages/send-template endpoint is implemented
// here.
package mail
