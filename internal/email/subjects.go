package email

const (
	subjectLeadAssignedFmt     = "New lead assigned: %s"
	subjectLeadAcceptedFmt     = "Lead confirmed: %s"
	subjectFollowUpReminderFmt = "Follow-up reminder: %s"
)
