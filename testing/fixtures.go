// Package testing provides test utilities and database setup for testing the shortener
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates an active user with a bcrypt-hashed password
func (tf *TestFixtures) CreateTestUser(netid string) (*models.User, error) {
	if netid == "" {
		netid = fmt.Sprintf("user%06d", rand.Intn(1000000))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := "Test User"
	user := &models.User{
		Netid:        netid,
		PasswordHash: string(hashedPassword),
		DisplayName:  &displayName,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}
	return user, nil
}

// CreateTestLink creates a link owned by the given netid
func (tf *TestFixtures) CreateTestLink(ownerNetid, title, longURL string) (*models.Link, error) {
	if title == "" {
		title = "test link"
	}
	if longURL == "" {
		longURL = "https://example.com/"
	}

	link := &models.Link{
		OwnerNetid: ownerNetid,
		Title:      title,
		LongURL:    longURL,
	}
	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create test link: %w", err)
	}
	return link, nil
}

// CreateTestAlias binds an alias string to a link
func (tf *TestFixtures) CreateTestAlias(linkID uint, alias string) (*models.Alias, error) {
	if alias == "" {
		alias = fmt.Sprintf("a%06d", rand.Intn(1000000))
	}

	row := &models.Alias{
		Alias:        alias,
		ResourceType: models.AliasResourceLink,
		LinkID:       &linkID,
	}
	if err := tf.DB.DB.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create test alias: %w", err)
	}
	return row, nil
}

// CreateTestLinkHub creates a hub owned by the given netid
func (tf *TestFixtures) CreateTestLinkHub(ownerNetid, title string, isPublic bool) (*models.LinkHub, error) {
	if title == "" {
		title = "test hub"
	}

	hub := &models.LinkHub{
		Title:      title,
		OwnerNetid: ownerNetid,
		IsPublic:   isPublic,
	}
	if err := tf.DB.DB.Create(hub).Error; err != nil {
		return nil, fmt.Errorf("failed to create test linkhub: %w", err)
	}
	return hub, nil
}

// CreateTestVisit records a visit for the given link and alias
func (tf *TestFixtures) CreateTestVisit(linkID uint, alias, sourceIP, userAgent, referer string) (*models.Visit, error) {
	visit := &models.Visit{
		LinkID:     linkID,
		Alias:      alias,
		SourceIP:   sourceIP,
		TrackingID: uuid.New(),
	}
	if userAgent != "" {
		visit.UserAgent = &userAgent
	}
	if referer != "" {
		visit.Referer = &referer
	}
	if err := tf.DB.DB.Create(visit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test visit: %w", err)
	}
	return visit, nil
}

// CreateTestOrg creates an organization with one admin member
func (tf *TestFixtures) CreateTestOrg(name, adminNetid string) (*models.Organization, error) {
	if name == "" {
		name = fmt.Sprintf("org%06d", rand.Intn(1000000))
	}

	org := &models.Organization{Name: name}
	if err := tf.DB.DB.Create(org).Error; err != nil {
		return nil, fmt.Errorf("failed to create test organization: %w", err)
	}

	if adminNetid != "" {
		member := &models.OrganizationMember{
			OrganizationID: org.ID,
			Netid:          adminNetid,
			IsAdmin:        true,
		}
		if err := tf.DB.DB.Create(member).Error; err != nil {
			return nil, fmt.Errorf("failed to create test org member: %w", err)
		}
	}
	return org, nil
}

// CreateTestRoleGrant grants a role to an entity
func (tf *TestFixtures) CreateTestRoleGrant(role, entity, grantedBy string) (*models.RoleGrant, error) {
	grant := &models.RoleGrant{
		Role:      role,
		Entity:    entity,
		GrantedBy: grantedBy,
	}
	if err := tf.DB.DB.Create(grant).Error; err != nil {
		return nil, fmt.Errorf("failed to create test role grant: %w", err)
	}
	return grant, nil
}

// CreateTestTicket creates an open ticket for the given creator
func (tf *TestFixtures) CreateTestTicket(createdBy, reason string, entity *string) (*models.Ticket, error) {
	ticket := &models.Ticket{
		Reason:    reason,
		Entity:    entity,
		Comment:   "test ticket",
		CreatedBy: createdBy,
	}
	if err := tf.DB.DB.Create(ticket).Error; err != nil {
		return nil, fmt.Errorf("failed to create test ticket: %w", err)
	}
	return ticket, nil
}
