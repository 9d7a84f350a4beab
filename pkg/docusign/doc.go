// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package docusign is a client for the DocuSign eSignature REST API.

# Creating a Client

A Client is built from a config.Config layered over the built-in defaults:

	client, err := docusign.NewClient(config.Config{
	    Endpoint:      "https://demo.docusign.net/restapi",
	    Username:      "user@example.com",
	    Password:      "secret",
	    IntegratorKey: "key",
	}, docusign.WithLogger(logger))

An access token takes precedence over username and password. The account
id is read from login information on first use and cached, unless one is
configured.

# Sending Documents

	result, err := client.CreateEnvelopeFromDocument(ctx, docusign.EnvelopeFromDocumentRequest{
	    EmailSubject: "Please sign",
	    Signers: []payload.Signer{{
	        Email: "a@example.com",
	        Name:  "A",
	        Tabs: map[payload.TabKind][]payload.Tab{
	            payload.TabSignHere: {{AnchorString: "/s1/"}},
	        },
	    }},
	    Files: []payload.Document{{Path: "contract.pdf"}},
	})
	envelopeID := result.String("envelopeId")

Requests are validated and files are read before anything is sent. Invalid
input fails with an error matching payload.ErrInvalidInput.

# Results

Calls returning JSON give a Result even when the provider rejects the
request; ErrorCode and Message report the failure. Downloads return the raw
bytes or an *APIError. Network failures and timeouts are returned as
reported by net/http.

LastCall returns the most recent exchange with credentials filtered and
file contents masked.
*/
package docusign
