package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/policy"
)

func TestCanPerform(t *testing.T) {
	auth := NewAuthorizer(policy.Default())

	citizen := &domain.User{ID: "u1", Role: domain.RoleCitizen}
	mayor := &domain.User{ID: "u2", Role: domain.RoleExecutive}
	councilor := &domain.User{ID: "u3", Role: domain.RoleLegislative}
	admin := &domain.User{ID: "u4", Role: domain.RoleAdmin}
	issue := &domain.Issue{ID: "ISSUE0001", AuthorID: "u1"}

	assert.True(t, auth.CanPerform(citizen, domain.ActionIssueCreate, nil))
	assert.True(t, auth.CanPerform(citizen, domain.ActionIssueSupport, issue))
	assert.True(t, auth.CanPerform(citizen, domain.ActionIssueFlag, issue))
	assert.False(t, auth.CanPerform(citizen, domain.ActionIssueRespond, issue))
	assert.False(t, auth.CanPerform(citizen, domain.ActionIssueEdit, issue))
	assert.False(t, auth.CanPerform(citizen, domain.ActionIssueDelete, issue))
	assert.False(t, auth.CanPerform(councilor, domain.ActionIssueRespond, issue))

	assert.True(t, auth.CanPerform(mayor, domain.ActionIssueRespond, issue))
	assert.True(t, auth.CanPerform(admin, domain.ActionIssueRespond, issue))
	assert.True(t, auth.CanPerform(admin, domain.ActionIssueModerate, issue))

	assert.True(t, auth.CanPerform(citizen, domain.ActionIssueViewRestricted, issue))
	assert.False(t, auth.CanPerform(&domain.User{ID: "u9", Role: domain.RoleCitizen}, domain.ActionIssueViewRestricted, issue))
	assert.True(t, auth.CanPerform(councilor, domain.ActionIssueViewRestricted, issue))

	assert.True(t, auth.CanPerform(councilor, domain.ActionBillManage, nil))
	assert.False(t, auth.CanPerform(mayor, domain.ActionBillManage, nil))
	assert.True(t, auth.CanPerform(mayor, domain.ActionPollManage, nil))
	assert.False(t, auth.CanPerform(citizen, domain.ActionDashboardView, nil))

	assert.False(t, auth.CanPerform(nil, domain.ActionIssueCreate, nil))
	assert.False(t, auth.CanPerform(&domain.User{}, domain.ActionIssueCreate, nil))
}
