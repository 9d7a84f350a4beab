package docusign

import (
	"context"
	"net/http"
	"sort"

	"github.com/sirosfoundation/go-docusign/pkg/payload"
)

// RetrieveTabs returns the tabs of one recipient grouped by collection
func (c *Client) RetrieveTabs(ctx context.Context, envelopeID, recipientID string) (Result, error) {
	path, err := c.accountPath(ctx, "/envelopes/%s/recipients/%s/tabs", envelopeID, recipientID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodGet, path, nil, nil, nil)
}

// ModifyTabs updates existing tabs of one recipient. Tabs are matched by
// tabId.
func (c *Client) ModifyTabs(ctx context.Context, envelopeID, recipientID string, tabs *payload.TabSet) (Result, error) {
	path, err := c.accountPath(ctx, "/envelopes/%s/recipients/%s/tabs", envelopeID, recipientID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodPut, path, nil, tabs, nil)
}

// TabsUpdater edits the tabs of a sent envelope by label.
type TabsUpdater struct {
	client      *Client
	envelopeID  string
	recipientID string

	tabs   map[string]*payload.LabeledTab
	labels []string
}

// NewTabsUpdater loads the recipient's tabs. Collections of unknown kinds
// are ignored.
func (c *Client) NewTabsUpdater(ctx context.Context, envelopeID, recipientID string) (*TabsUpdater, error) {
	result, err := c.RetrieveTabs(ctx, envelopeID, recipientID)
	if err != nil {
		return nil, err
	}

	u := &TabsUpdater{
		client:      c,
		envelopeID:  envelopeID,
		recipientID: recipientID,
		tabs:        make(map[string]*payload.LabeledTab),
	}

	collections := make([]string, 0, len(result))
	for name := range result {
		collections = append(collections, name)
	}
	sort.Strings(collections)

	for _, name := range collections {
		kind, ok := payload.KindFromCollection(name)
		if !ok {
			continue
		}
		items, _ := result[name].([]any)
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			tab := Result(m)
			label := tab.String("tabLabel")
			if _, seen := u.tabs[label]; !seen {
				u.labels = append(u.labels, label)
			}

			lt := &payload.LabeledTab{Kind: kind, ID: tab.String("tabId"), Label: label}
			if kind == payload.TabCheckbox {
				lt.Value = tab.String("selected") == "true"
			} else if v, ok := m["value"]; ok {
				lt.Value = v
			}
			u.tabs[label] = lt
		}
	}
	return u, nil
}

// Get returns the tab with label, nil when there is none
func (u *TabsUpdater) Get(label string) *payload.LabeledTab {
	return u.tabs[label]
}

// Labels lists tab labels in load order
func (u *TabsUpdater) Labels() []string {
	return append([]string(nil), u.labels...)
}

// Set changes the value of the tab with label and marks it for update.
// Unknown labels are ignored and yield nil.
func (u *TabsUpdater) Set(label string, value any) *payload.LabeledTab {
	tab, ok := u.tabs[label]
	if !ok {
		return nil
	}
	tab.Set(value)
	return tab
}

// Execute sends the changed tabs. Nothing is sent when no tab changed, in
// which case the result is nil.
func (u *TabsUpdater) Execute(ctx context.Context) (Result, error) {
	var dirty []*payload.LabeledTab
	for _, label := range u.labels {
		if tab := u.tabs[label]; tab.Dirty() {
			dirty = append(dirty, tab)
		}
	}

	// Only the changed collections are sent, whatever the API version.
	set := payload.GroupTabs(dirty, payload.GenerationV21)
	if set == nil {
		return nil, nil
	}
	return u.client.ModifyTabs(ctx, u.envelopeID, u.recipientID, set)
}
