// Package email sends transactional mail for lead events.
package email

import "context"

// Sender delivers the lead-related notification emails. All sends are
// best-effort from the caller's point of view.
type Sender interface {
	// SendLeadAssignedEmail tells an assignee a lead has landed on their desk.
	SendLeadAssignedEmail(ctx context.Context, toEmail, assigneeName, leadName string) error
	// SendLeadAcceptedEmail confirms to a broadcast winner that the lead is theirs.
	SendLeadAcceptedEmail(ctx context.Context, toEmail, agentName, leadName string) error
	// SendFollowUpReminderEmail reminds an agent of a due follow-up.
	SendFollowUpReminderEmail(ctx context.Context, toEmail, agentName, leadName, task string) error
}

// NoopSender is used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendLeadAssignedEmail(context.Context, string, string, string) error {
	return nil
}

func (NoopSender) SendLeadAcceptedEmail(context.Context, string, string, string) error {
	return nil
}

func (NoopSender) SendFollowUpReminderEmail(context.Context, string, string, string, string) error {
	return nil
}
