// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package payload builds DocuSign request bodies from typed descriptions.

Builders are pure functions: they never perform I/O and fail with an error
matching [ErrInvalidInput] before any request is issued when required
input is missing.

# Recipients

Recipient ids and routing order default to the 1-based position in the
input. Carbon copies and certified deliveries continue numbering after
the signers:

	recipients, err := payload.BuildRecipients(signers, carbonCopies, nil, opts)

An embedded signer gets a clientUserId (the explicit client user id, or
the signer's email) so the provider skips the notification email and the
application can request a recipient view.

# Tabs

Tabs are grouped by [TabKind] into collections named after the kind
(sign_here becomes signHereTabs). A tab with an anchor string is placed
relative to that text with offsets in pixels; otherwise xPosition and
yPosition apply. The [Generation] decides how unused collections are sent:

	GenerationV2   every collection present, unused ones null
	GenerationV21  unused collections omitted

# Composite Templates

[BuildCompositeTemplates] pairs each server template with an inline
template at the same sequence. The [Envelope] and [CompositeTemplate]
model types build the same structures from [Recipient] values with
[LabeledTab] prefills.
*/
package payload
