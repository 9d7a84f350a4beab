// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package auth attaches DocuSign authentication to requests and obtains tokens.

# Header Authentication

Two mutually exclusive modes are supported:

  - [Credentials]: username, password and integrator key in the
    X-DocuSign-Authentication header, rendered as JSON or as the
    <DocuSignCredentials> XML blob
  - [Bearer]: Authorization: Bearer <token>

[FromConfig] picks the mode; a configured access token always wins.

# Tokens

[OAuth] wraps the provider's token endpoints:

	o := auth.NewOAuth(cfg, httpClient)
	tok, err := o.PasswordToken(ctx, username, password)

The JWT user grant signs an assertion with the integration's RSA key:

	key, _ := auth.LoadPrivateKey(afero.NewOsFs(), "private.pem")
	tok, err := o.JWTToken(ctx, key)
	if errors.Is(err, auth.ErrConsentRequired) {
	    fmt.Println("grant consent at", o.ConsentURL())
	}
*/
package auth
