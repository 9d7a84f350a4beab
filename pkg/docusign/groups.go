package docusign

import (
	"context"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sirosfoundation/go-docusign/pkg/payload"
)

// ListSigningGroups lists the signing groups of the account
func (c *Client) ListSigningGroups(ctx context.Context) (Result, error) {
	path, err := c.accountPath(ctx, "/signing_groups")
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodGet, path, nil, nil, nil)
}

// CreateSigningGroup creates a shared signing group with its members
func (c *Client) CreateSigningGroup(ctx context.Context, name string, users []payload.SigningGroupUser) (Result, error) {
	if err := validation.Validate(name, validation.Required); err != nil {
		return nil, &payload.InputError{Path: "group_name", Err: err}
	}
	if err := payload.ValidateUsers(users); err != nil {
		return nil, err
	}
	path, err := c.accountPath(ctx, "/signing_groups")
	if err != nil {
		return nil, err
	}
	body := payload.SigningGroups{Groups: []payload.SigningGroup{{
		GroupName: name,
		GroupType: payload.SharedSigningGroup,
		Users:     users,
	}}}
	return c.sendJSON(ctx, http.MethodPost, path, nil, body, nil)
}

// DeleteSigningGroups deletes signing groups by id
func (c *Client) DeleteSigningGroups(ctx context.Context, groupIDs ...string) (Result, error) {
	if len(groupIDs) == 0 {
		return nil, &payload.InputError{Path: "signing_group_ids", Err: fmt.Errorf("at least one group id is required")}
	}
	path, err := c.accountPath(ctx, "/signing_groups")
	if err != nil {
		return nil, err
	}
	body := payload.SigningGroups{Groups: make([]payload.SigningGroup, 0, len(groupIDs))}
	for _, id := range groupIDs {
		body.Groups = append(body.Groups, payload.SigningGroup{SigningGroupID: id})
	}
	return c.sendJSON(ctx, http.MethodDelete, path, nil, body, nil)
}

// AddSigningGroupUsers adds members to a signing group
func (c *Client) AddSigningGroupUsers(ctx context.Context, groupID string, users []payload.SigningGroupUser) (Result, error) {
	return c.signingGroupUsers(ctx, http.MethodPut, groupID, users)
}

// DeleteSigningGroupUsers removes members from a signing group
func (c *Client) DeleteSigningGroupUsers(ctx context.Context, groupID string, users []payload.SigningGroupUser) (Result, error) {
	return c.signingGroupUsers(ctx, http.MethodDelete, groupID, users)
}

func (c *Client) signingGroupUsers(ctx context.Context, method, groupID string, users []payload.SigningGroupUser) (Result, error) {
	if len(users) == 0 {
		return nil, &payload.InputError{Path: "users", Err: fmt.Errorf("at least one user is required")}
	}
	if err := payload.ValidateUsers(users); err != nil {
		return nil, err
	}
	path, err := c.accountPath(ctx, "/signing_groups/%s/users", groupID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, method, path, nil, payload.SigningGroupUsers{Users: users}, nil)
}
