// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package godocusign is a Go client for the DocuSign eSignature REST API.

# Overview

go-docusign sends documents for signature, fills and inspects templates,
tracks envelopes and downloads signed results. It also receives Connect
notifications, the provider's webhook service.

# Package Structure

The library is organized into the following packages:

	github.com/sirosfoundation/go-docusign/pkg/docusign  - Client, one method per remote operation
	github.com/sirosfoundation/go-docusign/pkg/config    - Connection and credential settings
	github.com/sirosfoundation/go-docusign/pkg/auth      - Credential header, bearer token, OAuth grants
	github.com/sirosfoundation/go-docusign/pkg/payload   - Signers, tabs, recipients and envelope bodies
	github.com/sirosfoundation/go-docusign/pkg/mime      - multipart/form-data uploads
	github.com/sirosfoundation/go-docusign/pkg/transport - HTTPS transport with TLS 1.2/1.3
	github.com/sirosfoundation/go-docusign/pkg/calllog   - Redacted record of the last exchange
	github.com/sirosfoundation/go-docusign/pkg/connect   - Connect webhook verification and handler

The docusign command in cmd/docusign exposes the common operations.

# Quick Start

	import (
	    "github.com/sirosfoundation/go-docusign/pkg/config"
	    "github.com/sirosfoundation/go-docusign/pkg/docusign"
	    "github.com/sirosfoundation/go-docusign/pkg/payload"
	)

	client, err := docusign.NewClient(config.Config{
	    Endpoint:      "https://demo.docusign.net/restapi",
	    Username:      "user@example.com",
	    Password:      "secret",
	    IntegratorKey: "key",
	})

	signer := payload.Signer{Email: "a@example.com", Name: "A", Embedded: true}
	signer.AddTabs(payload.TabSignHere, payload.Tab{AnchorString: "/s1/"})

	result, err := client.CreateEnvelopeFromDocument(ctx, docusign.EnvelopeFromDocumentRequest{
	    EmailSubject: "Please sign",
	    Signers:      []payload.Signer{signer},
	    Files:        []payload.Document{{Path: "contract.pdf"}},
	})

# Authentication

  - Credentials: username, password and integrator key in the
    X-DocuSign-Authentication header, as JSON or XML
  - Bearer: an OAuth access token, which takes precedence when both are set
  - OAuth grants: password, refresh and JWT bearer, with a consent URL for
    the JWT flow

# API Versions

The v2 and v2.1 APIs differ in how tab collections are sent. v2 lists every
collection and sends unused ones as null; v2.1 omits them. The client picks
the shape from the configured API version.

# License

BSD-2-Clause License
*/
package godocusign
