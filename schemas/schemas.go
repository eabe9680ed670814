package schemas

// Realtime event types. They double as redis channel names, so listeners
// subscribe by prefix ("issue.", "poll.").
const (
	IssueCreated   string = "issue.created"
	IssueUpdated   string = "issue.updated"
	IssueDeleted   string = "issue.deleted"
	IssueCommented string = "issue.commented"
	IssueResponded string = "issue.responded"
	IssueSupported string = "issue.supported"
	IssueModerated string = "issue.moderated"

	PollCreated string = "poll.created"
	PollVoted   string = "poll.voted"

	BillCreated string = "bill.created"
	BillUpdated string = "bill.updated"
	BillVoted   string = "bill.voted"
)
