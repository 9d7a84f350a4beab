package payload

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// RecipientView requests an embedded signing URL
type RecipientView struct {
	Name         string
	Email        string
	ClientUserID string `mapstructure:"client_user_id"`
	ReturnURL    string `mapstructure:"return_url"`
	// AuthenticationMethod defaults to email
	AuthenticationMethod string `mapstructure:"authentication_method"`
}

// RecipientViewRequest is the wire form of a recipient view request
type RecipientViewRequest struct {
	AuthenticationMethod string `json:"authenticationMethod"`
	ClientUserID         string `json:"clientUserId"`
	Email                string `json:"email"`
	ReturnURL            string `json:"returnUrl"`
	UserName             string `json:"userName"`
}

// BuildRecipientView validates v and fills defaults. The client user id
// defaults to the email, matching signers built with Embedded set.
func BuildRecipientView(v RecipientView) (*RecipientViewRequest, error) {
	err := validation.ValidateStruct(&v,
		validation.Field(&v.Name, validation.Required),
		validation.Field(&v.Email, validation.Required),
		validation.Field(&v.ReturnURL, validation.Required),
	)
	if err != nil {
		return nil, inputError("recipient_view", err)
	}

	req := &RecipientViewRequest{
		AuthenticationMethod: v.AuthenticationMethod,
		ClientUserID:         v.ClientUserID,
		Email:                v.Email,
		ReturnURL:            v.ReturnURL,
		UserName:             v.Name,
	}
	if req.AuthenticationMethod == "" {
		req.AuthenticationMethod = "email"
	}
	if req.ClientUserID == "" {
		req.ClientUserID = v.Email
	}
	return req, nil
}

// ReturnURLRequest is the body of sender and console view requests
type ReturnURLRequest struct {
	EnvelopeID string `json:"envelopeId,omitempty"`
	ReturnURL  string `json:"returnUrl,omitempty"`
}

// SigningGroupUser is a member of a signing group
type SigningGroupUser struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// SigningGroup lets any member sign on behalf of the group
type SigningGroup struct {
	SigningGroupID string             `json:"signingGroupId,omitempty"`
	GroupName      string             `json:"groupName,omitempty"`
	GroupType      string             `json:"groupType,omitempty"`
	Users          []SigningGroupUser `json:"users,omitempty"`
}

// SharedSigningGroup is the group type of groups created by this package
const SharedSigningGroup = "sharedSigningGroup"

// SigningGroups wraps groups for create and delete requests
type SigningGroups struct {
	Groups []SigningGroup `json:"groups"`
}

// SigningGroupUsers wraps users for membership requests
type SigningGroupUsers struct {
	Users []SigningGroupUser `json:"users"`
}

// ValidateUsers requires a user name and email on every member.
func ValidateUsers(users []SigningGroupUser) error {
	for i := range users {
		u := &users[i]
		err := validation.ValidateStruct(u,
			validation.Field(&u.UserName, validation.Required),
			validation.Field(&u.Email, validation.Required),
		)
		if err != nil {
			return inputError(fmt.Sprintf("users[%d]", i), err)
		}
	}
	return nil
}
