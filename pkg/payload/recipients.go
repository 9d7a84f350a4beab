package payload

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"
)

// CarbonCopy describes a recipient who receives a copy, or with
// BuildCertifiedDeliveries one who must acknowledge delivery.
type CarbonCopy struct {
	Email    string
	Name     string
	RoleName string `mapstructure:"role_name"`

	RecipientID  string `mapstructure:"recipient_id"`
	RoutingOrder int    `mapstructure:"routing_order"`

	AccessCode        string             `mapstructure:"access_code"`
	Note              string
	EmailNotification *EmailNotification `mapstructure:"email_notification"`
}

// Validate requires email and name.
func (c CarbonCopy) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required.Error("email is required")),
		validation.Field(&c.Name, validation.Required.Error("name is required")),
	)
}

// RecipientDefinition is the wire form of a carbon copy or certified delivery
type RecipientDefinition struct {
	RecipientID       string             `json:"recipientId"`
	RoutingOrder      string             `json:"routingOrder,omitempty"`
	Email             string             `json:"email"`
	Name              string             `json:"name"`
	RoleName          string             `json:"roleName,omitempty"`
	AccessCode        string             `json:"accessCode,omitempty"`
	Note              string             `json:"note,omitempty"`
	EmailNotification *EmailNotification `json:"emailNotification,omitempty"`
}

// Recipients groups recipient definitions by type
type Recipients struct {
	Signers             []SignerDefinition    `json:"signers,omitempty"`
	CarbonCopies        []RecipientDefinition `json:"carbonCopies,omitempty"`
	CertifiedDeliveries []RecipientDefinition `json:"certifiedDeliveries,omitempty"`
}

// BuildCarbonCopies converts carbon copies whose ids and routing order
// continue after offset earlier recipients. Entries without email or name
// fail with ErrInvalidInput; all of them are reported.
func BuildCarbonCopies(ccs []CarbonCopy, offset int) ([]RecipientDefinition, error) {
	return buildCopies("carbon_copies", ccs, offset)
}

// BuildCertifiedDeliveries is BuildCarbonCopies for certified deliveries
func BuildCertifiedDeliveries(cds []CarbonCopy, offset int) ([]RecipientDefinition, error) {
	return buildCopies("certified_deliveries", cds, offset)
}

func buildCopies(field string, ccs []CarbonCopy, offset int) ([]RecipientDefinition, error) {
	var result *multierror.Error
	defs := make([]RecipientDefinition, 0, len(ccs))

	for i, cc := range ccs {
		if err := cc.Validate(); err != nil {
			result = multierror.Append(result, inputError(fmt.Sprintf("%s[%d]", field, i), err))
			continue
		}
		defs = append(defs, RecipientDefinition{
			RecipientID:       position(cc.RecipientID, offset+i),
			RoutingOrder:      routing(cc.RoutingOrder, offset+i),
			Email:             cc.Email,
			Name:              cc.Name,
			RoleName:          cc.RoleName,
			AccessCode:        cc.AccessCode,
			Note:              cc.Note,
			EmailNotification: cc.EmailNotification,
		})
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return defs, nil
}

// BuildRecipients converts signers, carbon copies and certified deliveries.
// Positional ids run across the three lists in that order.
func BuildRecipients(signers []Signer, ccs, cds []CarbonCopy, opts BuildOptions) (*Recipients, error) {
	var result *multierror.Error
	recipients := &Recipients{}

	var err error
	if recipients.Signers, err = BuildSigners(signers, opts); err != nil {
		result = multierror.Append(result, err)
	}
	if recipients.CarbonCopies, err = BuildCarbonCopies(ccs, len(signers)); err != nil {
		result = multierror.Append(result, err)
	}
	if recipients.CertifiedDeliveries, err = BuildCertifiedDeliveries(cds, len(signers)+len(ccs)); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return recipients, nil
}
