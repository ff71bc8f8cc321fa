// Package delivery packages finished mashups and mails them to the requester.
//
// Package zips the audio file, Service.Deliver composes the message, and a
// Mailer sends it. SMTPMailer speaks SMTP through go-mail and retries
// transient failures with exponential backoff; NoopMailer stands in when mail
// is disabled so the job manager can treat delivery uniformly.
package delivery
