package domain

import "time"

const (
	RequesterIdCtxKey   = "eg-requesterId"
	RequesterRoleCtxKey = "eg-requesterRole"
)

const (
	// FlagThreshold is the number of distinct flaggers that sends an issue to review.
	FlagThreshold = 3
	// MinClassifyLength is the shortest description the classifier is asked about.
	MinClassifyLength   = 10
	FallbackTitleLength = 30

	IssueCreatedPoints = 50
	PollVotePoints     = 20
	BillVotePoints     = 10
	CitizenStartPoints = 100
	PointsPerLevel     = 500
)

const (
	UploadTimeout    = 10 * time.Second
	DefaultOffice    = "Gabinete Digital"
	FallbackFeedback = "Obrigado por sua contribuição."
)

type Action string

const (
	ActionIssueCreate         Action = "issue.create"
	ActionIssueSupport        Action = "issue.support"
	ActionIssueFlag           Action = "issue.flag"
	ActionIssueComment        Action = "issue.comment"
	ActionIssueRespond        Action = "issue.respond"
	ActionIssueEdit           Action = "issue.edit"
	ActionIssueDelete         Action = "issue.delete"
	ActionIssueModerate       Action = "issue.moderate"
	ActionIssueViewRestricted Action = "issue.view.restricted"
	ActionPollVote            Action = "poll.vote"
	ActionPollManage          Action = "poll.manage"
	ActionBillVote            Action = "bill.vote"
	ActionBillManage          Action = "bill.manage"
	ActionDashboardView       Action = "dashboard.view"
)
