// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package config holds connection and authentication settings for a DocuSign client.

A [Config] is a plain value. Built-in defaults come from [Default]; an
application keeps its own defaults and layers per-client values on top with
[Merge] or [Resolve]. Non-zero fields of the later layer win:

	appDefaults := config.Config{IntegratorKey: "KEY", Username: "u", Password: "p"}
	cfg, err := config.Resolve(appDefaults, config.Config{AccountID: "1234"})

# Authentication Mode

Exactly one mode is active, see [Config.AuthMode]:

  - token: accessToken is set; it takes precedence over credentials
  - credentials: username, password and integratorKey build the
    X-DocuSign-Authentication header (json or xml blob)
  - none: requests are sent unauthenticated

# Configuration File

[Load] reads YAML with ${VAR} expansion:

	endpoint: https://demo.docusign.net/restapi
	apiVersion: v2
	integratorKey: ${DOCUSIGN_INTEGRATOR_KEY}
	username: ${DOCUSIGN_USERNAME}
	password: ${DOCUSIGN_PASSWORD}
	caFile: /etc/ssl/certs/ca-certificates.crt
	openTimeout: 5s
	readTimeout: 60s
	oauth:
	  baseUrl: https://account-d.docusign.com
	  userId: ${DOCUSIGN_USER_ID}
	  privateKeyFile: /etc/docusign/private.pem
*/
package config
