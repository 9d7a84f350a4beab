// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport implements the HTTPS layer used to reach the eSignature
REST API.

# TLS Configuration

Connections negotiate TLS 1.2 or 1.3 with peer verification enabled:

	config := transport.DefaultHTTPSConfig()
	// MinTLSVersion: TLS 1.2
	// MaxTLSVersion: TLS 1.3

A PEM bundle can be added to the trusted roots with CAFile. A bundle that
cannot be read fails NewHTTPSClient with ErrCAFile. Insecure turns peer
verification off and is meant for test endpoints only.

# Timeouts

OpenTimeout bounds dialing and the TLS handshake, ReadTimeout the wait for
response headers. Keep-alives are disabled, so no connection outlives a
call. There are no retries; IsTimeout identifies timeout errors.

# Requests

	client, err := transport.NewHTTPSClient(config,
	    transport.WithEndpoint("https://demo.docusign.net/restapi", "v2"),
	    transport.WithAuthenticator(auth.Bearer{Token: token}),
	)
	resp, err := client.Do(ctx, &transport.Request{Path: "/login_information"})

Responses are buffered and returned whatever their status code. Callers
decide what a status means.

# Callbacks

HTTPSServer serves an http.Handler, such as the Connect webhook receiver,
over TLS.
*/
package transport
