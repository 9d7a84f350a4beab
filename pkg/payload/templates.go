package payload

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-multierror"
)

// TemplateDefinition is the body of a create-template request.
type TemplateDefinition struct {
	EmailBlurb                 string                     `json:"emailBlurb,omitempty"`
	EmailSubject               string                     `json:"emailSubject,omitempty"`
	Documents                  []DocumentDefinition       `json:"documents"`
	Recipients                 *Recipients                `json:"recipients,omitempty"`
	EnvelopeTemplateDefinition EnvelopeTemplateDefinition `json:"envelopeTemplateDefinition"`
}

// EnvelopeTemplateDefinition names a stored template
type EnvelopeTemplateDefinition struct {
	Description string `json:"description"`
	Name        string `json:"name"`
	PageCount   int    `json:"pageCount"`
	Password    string `json:"password"`
	Shared      bool   `json:"shared"`
}

// ServerTemplateDefinition references a stored template within a composite
type ServerTemplateDefinition struct {
	Sequence   string `json:"sequence,omitempty"`
	TemplateID string `json:"templateId"`
}

// InlineTemplateDefinition carries recipients defined at request time
type InlineTemplateDefinition struct {
	Sequence   string      `json:"sequence,omitempty"`
	Recipients *Recipients `json:"recipients,omitempty"`
}

// CompositeTemplateDefinition is one entry of compositeTemplates.
type CompositeTemplateDefinition struct {
	ServerTemplates []ServerTemplateDefinition `json:"serverTemplates,omitempty"`
	InlineTemplates []InlineTemplateDefinition `json:"inlineTemplates,omitempty"`
	Document        *DocumentDefinition        `json:"document,omitempty"`
}

func parseSequence(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("sequence %q is not a positive integer", s)
	}
	return n, nil
}

func increasing(kind string, seqs []string) error {
	prev := 0
	for i, s := range seqs {
		if s == "" {
			continue
		}
		n, err := parseSequence(s)
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
		if n <= prev {
			return fmt.Errorf("%s[%d]: sequence %d does not follow %d", kind, i, n, prev)
		}
		prev = n
	}
	return nil
}

// Validate checks that sequence numbers increase strictly within each list
// and that inline templates do not precede the first server template.
func (c CompositeTemplateDefinition) Validate() error {
	server := make([]string, 0, len(c.ServerTemplates))
	for _, st := range c.ServerTemplates {
		if st.TemplateID == "" {
			return fmt.Errorf("%w: server template without templateId", ErrInvalidInput)
		}
		server = append(server, st.Sequence)
	}
	inline := make([]string, 0, len(c.InlineTemplates))
	for _, it := range c.InlineTemplates {
		inline = append(inline, it.Sequence)
	}

	if err := increasing("serverTemplates", server); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := increasing("inlineTemplates", inline); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if len(server) > 0 && len(inline) > 0 && server[0] != "" && inline[0] != "" {
		first, _ := parseSequence(server[0])
		in, _ := parseSequence(inline[0])
		if in < first {
			return fmt.Errorf("%w: inline template sequence %d precedes server template sequence %d", ErrInvalidInput, in, first)
		}
	}
	return nil
}

// BuildCompositeTemplates makes one composite entry per server template id.
// Entry n (1-based) carries the server template at sequence n, an inline
// template at the same sequence with the signers, and the n-th document
// when one is given.
func BuildCompositeTemplates(serverTemplateIDs []string, signers []Signer, docs []Document, opts BuildOptions) ([]CompositeTemplateDefinition, error) {
	if len(serverTemplateIDs) == 0 {
		return nil, inputError("server_template_ids", fmt.Errorf("at least one server template id is required"))
	}

	inline, err := buildInlineSigners(signers, opts)
	if err != nil {
		return nil, err
	}

	composites := make([]CompositeTemplateDefinition, 0, len(serverTemplateIDs))
	for idx, id := range serverTemplateIDs {
		if id == "" {
			return nil, inputError(fmt.Sprintf("server_template_ids[%d]", idx), fmt.Errorf("template id is empty"))
		}
		seq := strconv.Itoa(idx + 1)

		composite := CompositeTemplateDefinition{
			ServerTemplates: []ServerTemplateDefinition{{Sequence: seq, TemplateID: id}},
		}
		if len(inline) > 0 {
			composite.InlineTemplates = []InlineTemplateDefinition{{
				Sequence:   seq,
				Recipients: &Recipients{Signers: inline},
			}}
		}
		if idx < len(docs) {
			composite.Document = &DocumentDefinition{DocumentID: docs[idx].ID(idx), Name: docs[idx].FileName()}
		}

		if err := composite.Validate(); err != nil {
			return nil, err
		}
		composites = append(composites, composite)
	}
	return composites, nil
}

// buildInlineSigners fills roles of a server template, so tabs carry
// label and value only.
func buildInlineSigners(signers []Signer, opts BuildOptions) ([]SignerDefinition, error) {
	var result *multierror.Error
	defs := make([]SignerDefinition, 0, len(signers))

	for i, signer := range signers {
		def := SignerDefinition{
			RecipientID: position(signer.RecipientID, i),
			Email:       signer.Email,
			Name:        signer.Name,
			RoleName:    signer.RoleName,
		}
		if signer.RoutingOrder > 0 {
			def.RoutingOrder = strconv.Itoa(signer.RoutingOrder)
		}
		// inline signers always carry a client user id, defaulting to the email
		def.ClientUserID = signer.ClientID()
		if len(signer.Tabs) > 0 {
			set := NewTabSet(opts.Generation)
			for kind, tabs := range signer.Tabs {
				if !kind.Known() {
					result = multierror.Append(result, inputError(fmt.Sprintf("signers[%d]", i), fmt.Errorf("unknown tab kind %q", kind)))
					continue
				}
				for j, tab := range tabs {
					tabDef, err := prefillTab(tab)
					if err != nil {
						result = multierror.Append(result, inputError(fmt.Sprintf("signers[%d].tabs.%s[%d]", i, kind, j), err))
						continue
					}
					set.Add(kind, tabDef)
				}
			}
			def.Tabs = set
		}
		defs = append(defs, def)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return defs, nil
}
